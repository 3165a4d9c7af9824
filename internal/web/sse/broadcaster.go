package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/lobby"
)

// Broadcaster mirrors room-wide notifications to spectator streams. Direct
// notifications are private to a player and never reach spectators.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

var _ lobby.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Notify sends a broadcast notification to the room's spectators, if any.
// A closed room also shuts its hub down.
func (b *Broadcaster) Notify(n model.Notification) {
	if !n.IsBroadcast() {
		return
	}
	hub := b.hubManager.GetHub(n.Room)
	if hub == nil {
		return
	}

	data, err := json.Marshal(n.Payload)
	if err != nil {
		b.logger.Error("sse failed to encode notification",
			slog.String("room", string(n.Room)),
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(string(n.Type), string(data))

	if n.Type == model.EventRoomClosed {
		b.hubManager.RemoveHub(n.Room)
	}
}

// AddMember is a no-op: spectators are not room members
func (b *Broadcaster) AddMember(model.RoomCode, model.ConnID) {}

// RemoveMember is a no-op: spectators are not room members
func (b *Broadcaster) RemoveMember(model.RoomCode, model.ConnID) {}
