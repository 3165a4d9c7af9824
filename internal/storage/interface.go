package storage

import (
	"context"

	"github.com/mcoot/wordbomb/internal/model"
)

// DefaultHistoryLimit is how many finished games are kept per room code
const DefaultHistoryLimit = 20

// Storage defines the interface for data persistence. Live room state is
// never persisted; only the dictionary cache and finished-game summaries are.
type Storage interface {
	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error

	// Game history operations. History is returned oldest first.
	SaveGameSummary(ctx context.Context, summary *model.GameSummary) error
	GetGameHistory(ctx context.Context, code model.RoomCode) ([]model.GameSummary, error)
	DeleteGameHistory(ctx context.Context, code model.RoomCode) error
}
