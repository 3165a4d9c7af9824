package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordbomb/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.HistoryTTL = time.Hour
	cfg.HistoryLimit = 3

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func summary(code model.RoomCode, seq uint64, winner string) *model.GameSummary {
	return &model.GameSummary{
		RoomCode: code,
		GameSeq:  seq,
		Winner:   winner,
		WinnerID: "conn-1",
		Players: []model.PlayerSnapshot{
			{ID: "conn-1", Username: winner, Lives: 1, IsAlive: true},
			{ID: "conn-2", Username: "loser", Lives: 0},
		},
		WordsPlayed: []string{"ARBOL", "CASA"},
		Turns:       4,
		StartedAt:   time.Unix(100, 0).UTC(),
		EndedAt:     time.Unix(200, 0).UTC(),
	}
}

// Dictionary tests

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"ARBOL", "CASA", "NIÑO"}

	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(words, retrieved) // Order may differ (SET)
}

func (s *StorageSuite) TestGetDictionaryWordsNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestSaveDictionaryWordsReplacesExisting() {
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"ARBOL", "CASA"})
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"PERRO", "GATO", "RATON"})

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"PERRO", "GATO", "RATON"}, retrieved)
}

func (s *StorageSuite) TestDictionaryNoTTL() {
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"ARBOL"})

	ttl := s.mini.TTL(dictionaryKey())
	s.Equal(time.Duration(0), ttl, "Dictionary should not have TTL")
}

// Game history tests

func (s *StorageSuite) TestSaveAndGetGameHistory() {
	err := s.storage.SaveGameSummary(s.ctx, summary("ABCD", 1, "alice"))
	s.Require().NoError(err)

	history, err := s.storage.GetGameHistory(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(*summary("ABCD", 1, "alice"), history[0])
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

func (s *StorageSuite) TestGameHistoryTTL() {
	_ = s.storage.SaveGameSummary(s.ctx, summary("ABCD", 1, "alice"))

	ttl := s.mini.TTL(historyKey("ABCD"))
	s.True(ttl > 0, "History should have TTL")

	s.mini.FastForward(2 * time.Hour)
	history, err := s.storage.GetGameHistory(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *StorageSuite) TestDeleteGameHistory() {
	_ = s.storage.SaveGameSummary(s.ctx, summary("ABCD", 1, "alice"))

	err := s.storage.DeleteGameHistory(s.ctx, "ABCD")
	s.Require().NoError(err)

	s.False(s.mini.Exists(historyKey("ABCD")))
}
