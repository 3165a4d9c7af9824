package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameInProgress     = errors.New("game already in progress")
	ErrAlreadyInRoom      = errors.New("connection is already in a room")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrInvalidRoomCode    = errors.New("invalid room code")
	ErrNotHost            = errors.New("only host can do that")
	ErrSelfKick           = errors.New("cannot kick yourself")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCodeSpaceExhausted = errors.New("could not allocate a room code")

	// Game errors
	ErrGameNotActive      = errors.New("no game in progress")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrAlreadyUsed        = errors.New("word already used")
	ErrConstraintMismatch = errors.New("word does not contain the required letters")
	ErrNotAWord           = errors.New("not a valid word")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)

// IsWordRejection reports whether err is one of the reasons a submitted word
// can be turned down. These go back to the submitter as a rejection rather
// than as a generic error.
func IsWordRejection(err error) bool {
	return errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrAlreadyUsed) ||
		errors.Is(err, ErrConstraintMismatch) ||
		errors.Is(err, ErrNotAWord)
}
