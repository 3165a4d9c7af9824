package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordbomb/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = NewWithHistoryLimit(3)
	s.ctx = context.Background()
}

func summary(code model.RoomCode, seq uint64, winner string) *model.GameSummary {
	return &model.GameSummary{
		RoomCode:    code,
		GameSeq:     seq,
		Winner:      winner,
		WordsPlayed: []string{"ARBOL"},
		EndedAt:     time.Unix(int64(seq), 0),
	}
}

// Dictionary tests

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"ARBOL", "CASA", "PERRO"}

	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.Equal(words, retrieved)
}

func (s *StorageSuite) TestGetDictionaryWordsNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestDictionaryCopiesInput() {
	words := []string{"ARBOL"}
	_ = s.storage.SaveDictionaryWords(s.ctx, words)
	words[0] = "MUTATED"

	retrieved, _ := s.storage.GetDictionaryWords(s.ctx)
	s.Equal([]string{"ARBOL"}, retrieved)
}

// Game history tests

func (s *StorageSuite) TestSaveAndGetGameHistory() {
	_ = s.storage.SaveGameSummary(s.ctx, summary("ABCD", 1, "alice"))
	_ = s.storage.SaveGameSummary(s.ctx, summary("ABCD", 2, "bob"))
	_ = s.storage.SaveGameSummary(s.ctx, summary("WXYZ", 1, "carol"))

	history, err := s.storage.GetGameHistory(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal("alice", history[0].Winner)
	s.Equal("bob", history[1].Winner)
}

func (s *StorageSuite) TestGetGameHistoryEmpty() {
	history, err := s.storage.GetGameHistory(s.ctx, "NONE")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *StorageSuite) TestGameHistoryTrimmedToLimit() {
	for i := uint64(1); i <= 5; i++ {
		_ = s.storage.SaveGameSummary(s.ctx, summary("ABCD", i, "alice"))
	}

	history, err := s.storage.GetGameHistory(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(uint64(3), history[0].GameSeq)
	s.Equal(uint64(5), history[2].GameSeq)
}

func (s *StorageSuite) TestDeleteGameHistory() {
	_ = s.storage.SaveGameSummary(s.ctx, summary("ABCD", 1, "alice"))

	err := s.storage.DeleteGameHistory(s.ctx, "ABCD")
	s.Require().NoError(err)

	history, _ := s.storage.GetGameHistory(s.ctx, "ABCD")
	s.Empty(history)
}
