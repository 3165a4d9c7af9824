package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordbomb/internal/api/apierr"
	"github.com/mcoot/wordbomb/internal/middleware"
)

// Recovery answers API panics with the standard JSON INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ error) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
