package model

import "time"

// NoWinner is reported as the winner name when nobody survives a game
const NoWinner = "No one"

// GameSummary records the outcome of a finished game for room history
type GameSummary struct {
	RoomCode    RoomCode         `json:"roomCode"`
	GameSeq     uint64           `json:"gameSeq"`
	Winner      string           `json:"winner"`
	WinnerID    ConnID           `json:"winnerId,omitempty"`
	Players     []PlayerSnapshot `json:"players"`
	WordsPlayed []string         `json:"wordsPlayed"`
	Turns       int              `json:"turns"`
	StartedAt   time.Time        `json:"startedAt"`
	EndedAt     time.Time        `json:"endedAt"`
}
