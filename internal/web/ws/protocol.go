package ws

import (
	"encoding/json"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/lobby"
)

// CommandType identifies an inbound client message
type CommandType string

const (
	CommandCreateRoom     CommandType = "CREATE_ROOM"
	CommandJoinRoom       CommandType = "JOIN_ROOM"
	CommandStartGame      CommandType = "START_GAME"
	CommandUpdateSettings CommandType = "UPDATE_SETTINGS"
	CommandSubmitWord     CommandType = "SUBMIT_WORD"
	CommandKickPlayer     CommandType = "KICK_PLAYER"
	CommandWordInput      CommandType = "WORD_INPUT"
)

// Command is the envelope every inbound message arrives in
type Command struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is the envelope every outbound message is sent in
type Message struct {
	Type    model.EventType `json:"type"`
	Payload any             `json:"payload,omitempty"`
}

// CreateRoomPayload is the payload of CREATE_ROOM
type CreateRoomPayload struct {
	Username string `json:"username"`
}

// JoinRoomPayload is the payload of JOIN_ROOM
type JoinRoomPayload struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

// RoomPayload is the payload of commands that only name a room
type RoomPayload struct {
	Code string `json:"code"`
}

// UpdateSettingsPayload is the payload of UPDATE_SETTINGS. Settings values
// are loosely typed; anything that is not a usable number is ignored.
type UpdateSettingsPayload struct {
	Code     string              `json:"code"`
	Settings lobby.SettingsPatch `json:"settings"`
}

// WordPayload is the payload of SUBMIT_WORD and WORD_INPUT
type WordPayload struct {
	Code string `json:"code"`
	Word string `json:"word"`
}

// KickPlayerPayload is the payload of KICK_PLAYER
type KickPlayerPayload struct {
	Code     string `json:"code"`
	TargetID string `json:"targetId"`
}

// encodeMessage serializes an outbound message
func encodeMessage(t model.EventType, payload any) ([]byte, error) {
	return json.Marshal(Message{Type: t, Payload: payload})
}
