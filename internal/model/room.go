package model

import (
	"strings"
	"time"
)

// RoomCode is the short human-readable identifier players use to join a room
type RoomCode string

// RoomCodeLength is the number of characters in a generated room code
const RoomCodeLength = 4

// RoomCodeAlphabet is the set of characters room codes are drawn from
const RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ParseRoomCode canonicalizes user input into a room code, rejecting
// anything that could never have been generated
func ParseRoomCode(raw string) (RoomCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != RoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	for _, r := range code {
		if !strings.ContainsRune(RoomCodeAlphabet, r) {
			return "", ErrInvalidRoomCode
		}
	}
	return RoomCode(code), nil
}

// RoomState represents the current phase of a room
type RoomState string

const (
	RoomStateLobby   RoomState = "LOBBY"   // Waiting for the host to start
	RoomStatePlaying RoomState = "PLAYING" // Turns are being played
	RoomStateEnded   RoomState = "ENDED"   // Game over, cooling down before returning to lobby
)

// Settings holds the host-configurable rules for games in a room
type Settings struct {
	RoundTimeSeconds int `json:"roundTime"`
	StartingLives    int `json:"startingLives"`
	MaxPlayers       int `json:"maxPlayers"`
}

// Bounds applied when the host changes settings
const (
	MaxRoundTimeSeconds = 120
	MaxStartingLives    = 10
	MinMaxPlayers       = 2
	MaxMaxPlayers       = 16
)

// DefaultSettings returns the settings every new room starts with
func DefaultSettings() Settings {
	return Settings{
		RoundTimeSeconds: 10,
		StartingLives:    3,
		MaxPlayers:       12,
	}
}

// Room is one instance of the game. It is owned exclusively by the room
// registry and must only be mutated while the registry's per-room lock is held.
type Room struct {
	Code     RoomCode
	State    RoomState
	Players  []*Player // Insertion order defines turn order and host succession
	HostID   ConnID
	Settings Settings

	// Turn state, meaningful only while State is PLAYING
	TurnOrder   []ConnID
	ActiveIndex int
	Constraint  string
	UsedWords   map[string]struct{}
	WordLog     []string // UsedWords in the order they were accepted
	TurnSeq     uint64   // Incremented every time a turn starts
	GameSeq     uint64   // Incremented every time a game starts
	Turns       int      // Turns started in the current game
	GameStarted time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates an empty room in the lobby state with default settings
func NewRoom(code RoomCode, now time.Time) *Room {
	return &Room{
		Code:      code,
		State:     RoomStateLobby,
		Settings:  DefaultSettings(),
		UsedWords: make(map[string]struct{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetPlayer returns the player with the given connection ID, or nil if absent
func (r *Room) GetPlayer(id ConnID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// HasPlayer reports whether the connection is a member of the room
func (r *Room) HasPlayer(id ConnID) bool {
	return r.GetPlayer(id) != nil
}

// IsFull reports whether the room has reached its player limit
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.Settings.MaxPlayers
}

// IsEmpty reports whether the room has no players left
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// AddPlayer appends a player to the end of the room's ordering
func (r *Room) AddPlayer(p *Player) {
	r.Players = append(r.Players, p)
}

// RemovePlayer removes the player with the given ID, preserving the order of
// the others. Returns the removed player or nil if not present.
func (r *Room) RemovePlayer(id ConnID) *Player {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return p
		}
	}
	return nil
}

// SetHost makes the given player the host, keeping HostID and every player's
// IsHost flag in step
func (r *Room) SetHost(id ConnID) {
	r.HostID = id
	for _, p := range r.Players {
		p.IsHost = p.ID == id
	}
}

// ActivePlayerID returns the connection whose turn it is, or "" outside a game
func (r *Room) ActivePlayerID() ConnID {
	if r.State != RoomStatePlaying || len(r.TurnOrder) == 0 {
		return ""
	}
	return r.TurnOrder[r.ActiveIndex]
}

// AlivePlayers returns the players in turn order that still have lives
func (r *Room) AlivePlayers() []*Player {
	var alive []*Player
	for _, id := range r.TurnOrder {
		if p := r.GetPlayer(id); p != nil && p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// MarkUsed records an accepted word
func (r *Room) MarkUsed(word string) {
	r.UsedWords[word] = struct{}{}
	r.WordLog = append(r.WordLog, word)
}

// IsUsed reports whether the word was already accepted this game
func (r *Room) IsUsed(word string) bool {
	_, ok := r.UsedWords[word]
	return ok
}

// PlayerLives returns the current life count of every player
func (r *Room) PlayerLives() map[ConnID]int {
	lives := make(map[ConnID]int, len(r.Players))
	for _, p := range r.Players {
		lives[p.ID] = p.Lives
	}
	return lives
}

// UpdatePayload returns the roster broadcast sent after membership changes
func (r *Room) UpdatePayload() RoomUpdatePayload {
	players := make([]PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		players[i] = p.Snapshot()
	}
	return RoomUpdatePayload{
		Players:  players,
		HostID:   r.HostID,
		Settings: r.Settings,
		State:    r.State,
	}
}

// ResetTurnState clears everything tied to a particular game
func (r *Room) ResetTurnState() {
	r.TurnOrder = nil
	r.ActiveIndex = 0
	r.Constraint = ""
	r.UsedWords = make(map[string]struct{})
	r.WordLog = nil
	r.Turns = 0
}

// Snapshot returns a detached copy of the room safe to hand outside the registry
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		players[i] = p.Snapshot()
	}
	used := make([]string, len(r.WordLog))
	copy(used, r.WordLog)
	return RoomSnapshot{
		Code:           r.Code,
		State:          r.State,
		Players:        players,
		HostID:         r.HostID,
		Settings:       r.Settings,
		ActivePlayerID: r.ActivePlayerID(),
		Constraint:     r.Constraint,
		UsedWords:      used,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RoomSnapshot is an immutable view of a room at a point in time
type RoomSnapshot struct {
	Code           RoomCode         `json:"code"`
	State          RoomState        `json:"state"`
	Players        []PlayerSnapshot `json:"players"`
	HostID         ConnID           `json:"hostId"`
	Settings       Settings         `json:"settings"`
	ActivePlayerID ConnID           `json:"activePlayerId,omitempty"`
	Constraint     string           `json:"constraint,omitempty"`
	UsedWords      []string         `json:"usedWords,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// GetPlayer returns the snapshot of the given player, or nil if absent
func (s *RoomSnapshot) GetPlayer(id ConnID) *PlayerSnapshot {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// RoomSummary is the short form of a room used in listings
type RoomSummary struct {
	Code        RoomCode  `json:"code"`
	State       RoomState `json:"state"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
}

// Summary returns the listing form of the room
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		Code:        r.Code,
		State:       r.State,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.Settings.MaxPlayers,
	}
}
