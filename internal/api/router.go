package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordbomb/internal/api/apierr"
	"github.com/mcoot/wordbomb/internal/api/handler"
	"github.com/mcoot/wordbomb/internal/api/middleware"
	basemiddleware "github.com/mcoot/wordbomb/internal/middleware"
	"github.com/mcoot/wordbomb/internal/services/dictionary"
	"github.com/mcoot/wordbomb/internal/services/lobby"
	"github.com/mcoot/wordbomb/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	Controller       lobby.ControllerInterface
	Dictionary       dictionary.ServiceInterface
	HubManager       *sse.HubManager
	WebsocketHandler http.Handler
}

// NewRouter creates the HTTP router: the JSON API under /api/v1 and the
// game websocket at /ws
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	healthHandler := handler.NewHealthHandler(cfg.Dictionary, cfg.Controller)
	roomHandler := handler.NewRoomHandler(cfg.Controller, cfg.HubManager, cfg.Logger)
	wordHandler := handler.NewWordHandler(cfg.Dictionary)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/history", roomHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	api.HandleFunc("/words/{word}", wordHandler.Check).Methods(http.MethodGet)

	if cfg.WebsocketHandler != nil {
		ws := basemiddleware.Recovery(cfg.Logger, basemiddleware.DefaultPanicHandler)(
			basemiddleware.Logging(cfg.Logger)(cfg.WebsocketHandler),
		)
		r.Handle("/ws", ws).Methods(http.MethodGet)
	}

	return r
}
