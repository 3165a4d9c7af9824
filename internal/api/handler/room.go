package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcoot/wordbomb/internal/api/apierr"
	"github.com/mcoot/wordbomb/internal/api/response"
	"github.com/mcoot/wordbomb/internal/services/lobby"
	"github.com/mcoot/wordbomb/internal/web/sse"
)

// SnapshotEvent is the first event of every spectator stream
const SnapshotEvent = "ROOM_SNAPSHOT"

// RoomHandler handles the read-only room endpoints
type RoomHandler struct {
	controller lobby.ControllerInterface
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(controller lobby.ControllerInterface, hubManager *sse.HubManager, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		controller: controller,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "api-rooms")),
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms := h.controller.ListRooms(r.Context())

	resp := response.RoomList{Rooms: make([]response.RoomSummary, len(rooms))}
	for i, room := range rooms {
		resp.Rooms[i] = response.RoomSummaryFromModel(room)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	room, err := h.controller.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// History handles GET /api/v1/rooms/{code}/history
func (h *RoomHandler) History(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	games, err := h.controller.RoomHistory(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.History{Code: string(code), Games: make([]response.GameSummary, len(games))}
	for i, g := range games {
		resp.Games[i] = response.GameSummaryFromModel(g)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Events handles GET /api/v1/rooms/{code}/events. The stream opens with a
// snapshot of the room and then carries every room-wide notification until
// the room closes or the client leaves.
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hubManager == nil {
		WriteError(w, apierr.NewInvalidRequestError("Spectating is not enabled"))
		return
	}

	code, err := roomCode(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	room, err := h.controller.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	snapshot, err := json.Marshal(room)
	if err != nil {
		WriteError(w, err)
		return
	}

	clientID := uuid.NewString()
	h.logger.Debug("spectator connected",
		slog.String("room", string(code)),
		slog.String("client_id", clientID))

	hub := h.hubManager.GetOrCreateHub(code)
	sse.ServeSSE(w, r, hub, clientID, SnapshotEvent, string(snapshot))

	h.hubManager.CleanupEmptyHubs()
}
