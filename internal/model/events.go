package model

// EventType identifies the type of notification sent to clients
type EventType string

const (
	// Connection events
	EventConnected EventType = "CONNECTED"
	EventError     EventType = "ERROR"

	// Room events
	EventRoomCreated     EventType = "ROOM_CREATED"
	EventJoinedRoom      EventType = "JOINED_ROOM"
	EventRoomUpdate      EventType = "ROOM_UPDATE"
	EventSettingsUpdated EventType = "SETTINGS_UPDATED"
	EventKicked          EventType = "KICKED"
	EventNewHost         EventType = "NEW_HOST"
	EventRoomClosed      EventType = "ROOM_CLOSED"

	// Game events
	EventNextTurn     EventType = "NEXT_TURN"
	EventLifeLost     EventType = "LIFE_LOST"
	EventWordAccepted EventType = "WORD_ACCEPTED"
	EventWordRejected EventType = "WORD_REJECTED"
	EventGameOver     EventType = "GAME_OVER"
	EventAnimation    EventType = "ANIMATION_EVENT"
	EventPlayerTyping EventType = "PLAYER_TYPING"
)

// Notification is an outbound message produced by the game engine. The
// engine never talks to connections directly; a notifier delivers these.
type Notification struct {
	Type    EventType
	Room    RoomCode
	To      ConnID // Empty means every connection in Room
	Payload any
}

// IsBroadcast reports whether the notification targets the whole room
func (n Notification) IsBroadcast() bool {
	return n.To == ""
}

// Broadcast builds a notification for every connection in a room
func Broadcast(room RoomCode, t EventType, payload any) Notification {
	return Notification{Type: t, Room: room, Payload: payload}
}

// Direct builds a notification for a single connection
func Direct(room RoomCode, to ConnID, t EventType, payload any) Notification {
	return Notification{Type: t, Room: room, To: to, Payload: payload}
}

// RoomCodePayload is sent with ROOM_CREATED, JOINED_ROOM and ROOM_CLOSED
type RoomCodePayload struct {
	Code RoomCode `json:"code"`
}

// RoomUpdatePayload carries the roster after any membership change
type RoomUpdatePayload struct {
	Players  []PlayerSnapshot `json:"players"`
	HostID   ConnID           `json:"hostId"`
	Settings Settings         `json:"settings"`
	State    RoomState        `json:"state"`
}

// SettingsPayload carries the full settings after a change
type SettingsPayload struct {
	Settings Settings `json:"settings"`
}

// KickedPayload tells a connection it was removed from a room
type KickedPayload struct {
	Message string `json:"message"`
}

// NewHostPayload names the promoted host
type NewHostPayload struct {
	HostID ConnID `json:"hostId"`
}

// NextTurnPayload announces the start of a turn
type NextTurnPayload struct {
	ActivePlayerID ConnID         `json:"activePlayerId"`
	Constraint     string         `json:"constraint"`
	TimeLeft       int            `json:"timeLeft"`
	PlayerLives    int            `json:"playerLives"`
	Lives          map[ConnID]int `json:"lives"`
}

// LifeLostPayload reports a timeout against a player
type LifeLostPayload struct {
	PlayerID ConnID `json:"playerId"`
	Lives    int    `json:"lives"`
}

// WordAcceptedPayload confirms a submission to the submitter
type WordAcceptedPayload struct {
	Word string `json:"word"`
}

// WordRejectedPayload explains why a submission was turned down
type WordRejectedPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// GameOverPayload names the winner of a game
type GameOverPayload struct {
	Winner   string `json:"winner"`
	WinnerID ConnID `json:"winnerId,omitempty"`
}

// AnimationType is the kind of visual cue clients should play
type AnimationType string

const (
	AnimationSuccess AnimationType = "SUCCESS"
)

// AnimationPayload asks clients to play a cue for a player
type AnimationPayload struct {
	Type     AnimationType `json:"type"`
	PlayerID ConnID        `json:"playerId"`
}

// PlayerTypingPayload mirrors the active player's partial input
type PlayerTypingPayload struct {
	PlayerID ConnID `json:"playerId"`
	Word     string `json:"word"`
}

// ErrorPayload reports a failed command to its sender
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectedPayload tells a new connection its identifier
type ConnectedPayload struct {
	ConnectionID ConnID `json:"connectionId"`
}
