package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/storage"
)

// MinWordLength is the shortest normalized word the dictionary will hold
const MinWordLength = 3

// Service answers word membership queries against a loaded word list.
// Until a list is loaded every query fails.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	loaded bool
}

// New creates a new dictionary Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "dictionary")),
		words:   make(map[string]struct{}),
	}
}

// Normalize converts a raw word to the game alphabet: upper case, accents
// removed, and anything other than A-Z and Ñ dropped.
func Normalize(raw string) string {
	// Casers keep state, so one per call
	upper := cases.Upper(language.Spanish).String(norm.NFC.String(raw))

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if r == 'Ñ' {
			b.WriteRune(r)
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if d >= 'A' && d <= 'Z' {
				b.WriteRune(d)
			}
		}
	}
	return b.String()
}

// Normalize is a convenience wrapper so callers can depend on the interface
func (s *Service) Normalize(raw string) string {
	return Normalize(raw)
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return fmt.Errorf("no dictionary words in storage: %w", model.ErrDictionaryNotLoaded)
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line) and
// caches the normalized list in storage
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.LoadFromReader(ctx, file)
}

// LoadFromReader loads a line-delimited word list
func (s *Service) LoadFromReader(ctx context.Context, r io.Reader) error {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if word := normalizeEntry(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Save to storage so later processes can start without the file
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	return s.loadWords(words)
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if w := normalizeEntry(word); w != "" {
			set[w] = struct{}{}
		}
	}

	s.mu.Lock()
	s.words = set
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("dictionary loaded", slog.Int("words", len(set)))
	return nil
}

// normalizeEntry returns the normalized form of a list entry, or "" if it is
// too short to be playable
func normalizeEntry(raw string) string {
	w := Normalize(strings.TrimSpace(raw))
	if utf8.RuneCountInString(w) < MinWordLength {
		return ""
	}
	return w
}

// IsValid reports whether the normalized word is in the dictionary. It
// returns false for every word while no list is loaded.
func (s *Service) IsValid(raw string) bool {
	word := Normalize(raw)
	if word == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[word]
	return ok
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// ServiceInterface is the read and load surface of the dictionary
type ServiceInterface interface {
	Normalize(raw string) string
	IsValid(raw string) bool
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadFromReader(ctx context.Context, r io.Reader) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)
