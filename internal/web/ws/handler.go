package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/wordbomb/internal/middleware"
	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/lobby"
)

// Config holds the websocket transport settings
type Config struct {
	// TypingRate and TypingBurst bound how many WORD_INPUT messages a single
	// connection may send; the excess is dropped
	TypingRate  rate.Limit
	TypingBurst int

	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig returns the transport settings used by the server
func DefaultConfig() Config {
	return Config{
		TypingRate:      rate.Every(50 * time.Millisecond),
		TypingBurst:     10,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Handler upgrades HTTP requests to websockets and turns the commands that
// arrive on them into room registry calls
type Handler struct {
	controller lobby.ControllerInterface
	hub        *Hub
	cfg        Config
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(controller lobby.ControllerInterface, hub *Hub, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		hub:        hub,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Browser clients are served from other origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP runs one connection from upgrade to disconnect
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := model.ConnID(uuid.NewString())
	client := NewClient(id, conn, rate.NewLimiter(h.cfg.TypingRate, h.cfg.TypingBurst))
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	go client.writePump()

	h.hub.Send(id, model.EventConnected, model.ConnectedPayload{ConnectionID: id})

	// The request context ends with the connection; cleanup must still run
	ctx := context.WithoutCancel(r.Context())
	client.readPump(func(data []byte) {
		h.safeHandleCommand(ctx, client, data)
	})

	if removal, ok := h.controller.RemovePlayer(ctx, id); ok {
		h.logger.Info("ws client left room",
			slog.String("conn_id", string(id)),
			slog.String("room", string(removal.Code)),
			slog.Bool("room_closed", removal.Closed))
	}
	h.hub.Unregister(client)
	h.logger.Debug("ws connection closed",
		slog.String("conn_id", string(id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// safeHandleCommand keeps one bad command from tearing down the connection
// before its player is removed from the room
func (h *Handler) safeHandleCommand(ctx context.Context, client *Client, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic recovered",
				slog.String("conn_id", string(client.id)),
				slog.String("error", middleware.PanicError(rec).Error()),
				slog.String("stack", string(debug.Stack())))
			h.sendError(client, CodeInternalError, "Internal server error")
		}
	}()
	h.handleCommand(ctx, client, data)
}

// handleCommand decodes and runs a single inbound message. Failures are
// reported only to the sender.
func (h *Handler) handleCommand(ctx context.Context, client *Client, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		h.sendError(client, CodeBadRequest, "Malformed message")
		return
	}

	var err error
	switch cmd.Type {
	case CommandCreateRoom:
		var p CreateRoomPayload
		if !h.decode(client, cmd, &p) {
			return
		}
		_, err = h.controller.CreateRoom(ctx, client.id, p.Username)

	case CommandJoinRoom:
		var p JoinRoomPayload
		if !h.decode(client, cmd, &p) {
			return
		}
		_, err = h.controller.JoinRoom(ctx, lobby.NormalizeCode(p.Code), client.id, p.Username)

	case CommandStartGame:
		var p RoomPayload
		if !h.decode(client, cmd, &p) {
			return
		}
		err = h.controller.StartGame(ctx, lobby.NormalizeCode(p.Code), client.id)

	case CommandUpdateSettings:
		var p UpdateSettingsPayload
		if !h.decode(client, cmd, &p) {
			return
		}
		err = h.controller.UpdateSettings(ctx, lobby.NormalizeCode(p.Code), client.id, p.Settings)

	case CommandSubmitWord:
		var p WordPayload
		if !h.decode(client, cmd, &p) {
			return
		}
		err = h.controller.HandleSubmission(ctx, lobby.NormalizeCode(p.Code), client.id, p.Word)

	case CommandKickPlayer:
		var p KickPlayerPayload
		if !h.decode(client, cmd, &p) {
			return
		}
		err = h.controller.KickPlayer(ctx, lobby.NormalizeCode(p.Code), client.id, model.ConnID(p.TargetID))

	case CommandWordInput:
		if !client.allowTyping() {
			return
		}
		var p WordPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return
		}
		h.controller.RelayTyping(ctx, lobby.NormalizeCode(p.Code), client.id, p.Word)

	default:
		h.sendError(client, CodeUnknownCommand, "Unknown command: "+string(cmd.Type))
		return
	}

	if err != nil {
		t, payload := rejectionFor(err)
		if t == model.EventError && errorCodeOf(payload) == CodeInternalError {
			h.logger.Error("ws command failed",
				slog.String("conn_id", string(client.id)),
				slog.String("command", string(cmd.Type)),
				slog.String("error", err.Error()))
		}
		h.hub.Send(client.id, t, payload)
	}
}

// decode unmarshals a command payload, replying with BAD_REQUEST on failure
func (h *Handler) decode(client *Client, cmd Command, dst any) bool {
	if len(cmd.Payload) == 0 {
		h.sendError(client, CodeBadRequest, "Missing payload for "+string(cmd.Type))
		return false
	}
	if err := json.Unmarshal(cmd.Payload, dst); err != nil {
		h.sendError(client, CodeBadRequest, "Invalid payload for "+string(cmd.Type))
		return false
	}
	return true
}

func (h *Handler) sendError(client *Client, code, message string) {
	h.hub.Send(client.id, model.EventError, model.ErrorPayload{Code: code, Message: message})
}

func errorCodeOf(payload any) string {
	if p, ok := payload.(model.ErrorPayload); ok {
		return p.Code
	}
	return ""
}
