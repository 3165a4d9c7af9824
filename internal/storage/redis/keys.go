package redis

import (
	"fmt"

	"github.com/mcoot/wordbomb/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "wordbomb"

// historyKey returns the Redis key for the LIST of finished games in a room
func historyKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, code)
}

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}
