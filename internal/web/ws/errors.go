package ws

import (
	"errors"

	"github.com/mcoot/wordbomb/internal/model"
)

// Reason codes sent in WORD_REJECTED and ERROR payloads
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnknownCommand      = "UNKNOWN_COMMAND"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomFull            = "ROOM_FULL"
	CodeGameInProgress      = "GAME_IN_PROGRESS"
	CodeGameNotActive       = "GAME_NOT_ACTIVE"
	CodeAlreadyInRoom       = "ALREADY_IN_ROOM"
	CodeInvalidUsername     = "INVALID_USERNAME"
	CodeNotHost             = "NOT_HOST"
	CodeSelfKick            = "SELF_KICK"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeAlreadyUsed         = "ALREADY_USED"
	CodeConstraintMismatch  = "CONSTRAINT_MISMATCH"
	CodeNotAWord            = "NOT_A_WORD"
	CodeDictionaryNotLoaded = "DICTIONARY_NOT_LOADED"
	CodeNoCodesAvailable    = "NO_CODES_AVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// errorMessage is a reason code with the text shown to the player
type errorMessage struct {
	code    string
	message string
}

// toErrorMessage maps a domain error onto its wire form
func toErrorMessage(err error) errorMessage {
	switch {
	case errors.Is(err, model.ErrNotYourTurn):
		return errorMessage{CodeNotYourTurn, "It is not your turn"}
	case errors.Is(err, model.ErrAlreadyUsed):
		return errorMessage{CodeAlreadyUsed, "That word has already been played"}
	case errors.Is(err, model.ErrConstraintMismatch):
		// Keep the wrapped text, it names the required syllable
		return errorMessage{CodeConstraintMismatch, err.Error()}
	case errors.Is(err, model.ErrNotAWord):
		return errorMessage{CodeNotAWord, "That is not a valid word"}
	case errors.Is(err, model.ErrGameNotActive):
		return errorMessage{CodeGameNotActive, "No game is running"}
	case errors.Is(err, model.ErrRoomNotFound):
		return errorMessage{CodeRoomNotFound, "Room not found"}
	case errors.Is(err, model.ErrRoomFull):
		return errorMessage{CodeRoomFull, "Room is full"}
	case errors.Is(err, model.ErrGameInProgress):
		return errorMessage{CodeGameInProgress, "Game already in progress"}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return errorMessage{CodeAlreadyInRoom, "You are already in a room"}
	case errors.Is(err, model.ErrInvalidUsername):
		return errorMessage{CodeInvalidUsername, "A username is required"}
	case errors.Is(err, model.ErrNotHost):
		return errorMessage{CodeNotHost, "Only the host can do that"}
	case errors.Is(err, model.ErrSelfKick):
		return errorMessage{CodeSelfKick, "You cannot kick yourself"}
	case errors.Is(err, model.ErrPlayerNotFound):
		return errorMessage{CodePlayerNotFound, "Player not found"}
	case errors.Is(err, model.ErrDictionaryNotLoaded):
		return errorMessage{CodeDictionaryNotLoaded, "The dictionary is not available yet"}
	case errors.Is(err, model.ErrCodeSpaceExhausted):
		return errorMessage{CodeNoCodesAvailable, "No room codes are available"}
	default:
		return errorMessage{CodeInternalError, "Internal server error"}
	}
}

// rejectionFor builds the message sent back for a failed command. Word
// rejections become WORD_REJECTED, anything else an ERROR.
func rejectionFor(err error) (model.EventType, any) {
	msg := toErrorMessage(err)
	if model.IsWordRejection(err) {
		return model.EventWordRejected, model.WordRejectedPayload{Reason: msg.code, Message: msg.message}
	}
	return model.EventError, model.ErrorPayload{Code: msg.code, Message: msg.message}
}
