package response

import (
	"time"

	"github.com/mcoot/wordbomb/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
	Lives    int    `json:"lives"`
	IsAlive  bool   `json:"is_alive"`
}

// PlayerFromModel converts a model.PlayerSnapshot to a response Player
func PlayerFromModel(p model.PlayerSnapshot) Player {
	return Player{
		ID:       string(p.ID),
		Username: p.Username,
		IsHost:   p.IsHost,
		Lives:    p.Lives,
		IsAlive:  p.IsAlive,
	}
}

// Settings represents room settings
type Settings struct {
	RoundTimeSeconds int `json:"round_time_seconds"`
	StartingLives    int `json:"starting_lives"`
	MaxPlayers       int `json:"max_players"`
}

// SettingsFromModel converts model.Settings
func SettingsFromModel(s model.Settings) Settings {
	return Settings{
		RoundTimeSeconds: s.RoundTimeSeconds,
		StartingLives:    s.StartingLives,
		MaxPlayers:       s.MaxPlayers,
	}
}

// RoomSummary is one entry of the room listing
type RoomSummary struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// RoomSummaryFromModel converts model.RoomSummary
func RoomSummaryFromModel(s model.RoomSummary) RoomSummary {
	return RoomSummary{
		Code:        string(s.Code),
		State:       string(s.State),
		PlayerCount: s.PlayerCount,
		MaxPlayers:  s.MaxPlayers,
	}
}

// RoomList is the response for the room listing
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Room represents a room in API responses
type Room struct {
	Code           string    `json:"code"`
	State          string    `json:"state"`
	HostID         string    `json:"host_id"`
	Settings       Settings  `json:"settings"`
	Players        []Player  `json:"players"`
	ActivePlayerID string    `json:"active_player_id,omitempty"`
	Constraint     string    `json:"constraint,omitempty"`
	UsedWords      []string  `json:"used_words,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RoomFromModel converts model.RoomSnapshot
func RoomFromModel(r *model.RoomSnapshot) Room {
	players := make([]Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerFromModel(p)
	}
	return Room{
		Code:           string(r.Code),
		State:          string(r.State),
		HostID:         string(r.HostID),
		Settings:       SettingsFromModel(r.Settings),
		Players:        players,
		ActivePlayerID: string(r.ActivePlayerID),
		Constraint:     r.Constraint,
		UsedWords:      r.UsedWords,
		CreatedAt:      r.CreatedAt,
	}
}

// GameSummary represents a finished game
type GameSummary struct {
	Winner      string    `json:"winner"`
	WinnerID    *string   `json:"winner_id"`
	Players     []Player  `json:"players"`
	WordsPlayed []string  `json:"words_played"`
	Turns       int       `json:"turns"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

// GameSummaryFromModel converts model.GameSummary
func GameSummaryFromModel(g model.GameSummary) GameSummary {
	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		players[i] = PlayerFromModel(p)
	}
	var winnerID *string
	if g.WinnerID != "" {
		w := string(g.WinnerID)
		winnerID = &w
	}
	words := g.WordsPlayed
	if words == nil {
		words = []string{}
	}
	return GameSummary{
		Winner:      g.Winner,
		WinnerID:    winnerID,
		Players:     players,
		WordsPlayed: words,
		Turns:       g.Turns,
		StartedAt:   g.StartedAt,
		EndedAt:     g.EndedAt,
	}
}

// History is the response for a room's game history
type History struct {
	Code  string        `json:"code"`
	Games []GameSummary `json:"games"`
}

// Health is the response for the health check
type Health struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionary_loaded"`
	DictionaryWords  int    `json:"dictionary_words"`
	ActiveRooms      int    `json:"active_rooms"`
}

// WordCheck is the response for a dictionary probe
type WordCheck struct {
	Word       string `json:"word"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
}
