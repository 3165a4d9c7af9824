package model

import "time"

// ConnID uniquely identifies a client connection. A player is a connection
// that has joined a room, so it doubles as the player ID.
type ConnID string

// MaxUsernameLength caps display names in runes
const MaxUsernameLength = 20

// Player represents a participant in a room
type Player struct {
	ID       ConnID
	Username string
	IsHost   bool
	Lives    int
	IsAlive  bool
	Score    int // Reserved, the turn engine does not score
	JoinedAt time.Time
}

// NewPlayer creates a live player with the given number of lives
func NewPlayer(id ConnID, username string, lives int, now time.Time) *Player {
	return &Player{
		ID:       id,
		Username: username,
		Lives:    lives,
		IsAlive:  lives > 0,
		JoinedAt: now,
	}
}

// LoseLife removes one life and marks the player dead when none remain
func (p *Player) LoseLife() {
	if p.Lives > 0 {
		p.Lives--
	}
	p.IsAlive = p.Lives > 0
}

// Eliminate takes the player out of the current game
func (p *Player) Eliminate() {
	p.Lives = 0
	p.IsAlive = false
}

// Snapshot returns a value copy of the player
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.ID,
		Username: p.Username,
		IsHost:   p.IsHost,
		Lives:    p.Lives,
		IsAlive:  p.IsAlive,
		Score:    p.Score,
	}
}

// PlayerSnapshot is the wire and read-side form of a player
type PlayerSnapshot struct {
	ID       ConnID `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
	Lives    int    `json:"lives"`
	IsAlive  bool   `json:"isAlive"`
	Score    int    `json:"score"`
}
