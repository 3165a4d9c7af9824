package handler

import (
	"net/http"

	"github.com/mcoot/wordbomb/internal/api/response"
	"github.com/mcoot/wordbomb/internal/services/dictionary"
	"github.com/mcoot/wordbomb/internal/services/lobby"
)

// Status values reported by the health check
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// HealthHandler reports server readiness
type HealthHandler struct {
	dictionary dictionary.ServiceInterface
	controller lobby.ControllerInterface
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dictionary dictionary.ServiceInterface, controller lobby.ControllerInterface) *HealthHandler {
	return &HealthHandler{
		dictionary: dictionary,
		controller: controller,
	}
}

// Health handles GET /api/v1/health. A server without a dictionary still
// answers, but games cannot start, so it reports itself degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{
		Status:           StatusOK,
		DictionaryLoaded: h.dictionary.IsLoaded(),
		DictionaryWords:  h.dictionary.WordCount(),
		ActiveRooms:      h.controller.ActiveRoomCount(),
	}
	if !resp.DictionaryLoaded {
		resp.Status = StatusDegraded
	}
	response.JSON(w, http.StatusOK, resp)
}
