package redis

import (
	"time"

	"github.com/mcoot/wordbomb/internal/storage"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// HistoryTTL is refreshed each time a game is recorded for a room, so
	// history for codes nobody plays in any more expires on its own
	HistoryTTL time.Duration

	// HistoryLimit caps the number of summaries kept per room
	HistoryLimit int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		HistoryTTL:   24 * time.Hour,
		HistoryLimit: storage.DefaultHistoryLimit,
	}
}
