package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordsession/internal/api/apierr"
	"github.com/mcoot/wordsession/internal/middleware"
)

// Recovery turns handler panics into INTERNAL_ERROR JSON responses
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), func(w http.ResponseWriter, r *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs one line per API request
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "http")))
}
