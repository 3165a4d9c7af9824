package memory

import (
	"context"
	"sync"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	historyLimit    int
	history         map[model.RoomCode][]model.GameSummary
	dictionaryWords []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithHistoryLimit(storage.DefaultHistoryLimit)
}

// NewWithHistoryLimit creates an in-memory storage that keeps at most limit
// summaries per room
func NewWithHistoryLimit(limit int) *Storage {
	return &Storage{
		historyLimit: limit,
		history:      make(map[model.RoomCode][]model.GameSummary),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dictionaryWords == nil {
		return nil, model.ErrDictionaryNotLoaded
	}
	result := make([]string, len(s.dictionaryWords))
	copy(result, s.dictionaryWords)
	return result, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = make([]string, len(words))
	copy(s.dictionaryWords, words)
	return nil
}

// Game history operations

func (s *Storage) SaveGameSummary(ctx context.Context, summary *model.GameSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append(s.history[summary.RoomCode], *summary)
	if s.historyLimit > 0 && len(entries) > s.historyLimit {
		entries = entries[len(entries)-s.historyLimit:]
	}
	s.history[summary.RoomCode] = entries
	return nil
}

func (s *Storage) GetGameHistory(ctx context.Context, code model.RoomCode) ([]model.GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[code]
	result := make([]model.GameSummary, len(entries))
	copy(result, entries)
	return result, nil
}

func (s *Storage) DeleteGameHistory(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, code)
	return nil
}
