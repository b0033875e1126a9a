package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/wordsession/internal/api/handler"
	"github.com/mcoot/wordsession/internal/api/middleware"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/services/dictionary"
	"github.com/mcoot/wordsession/internal/services/game"
	"github.com/mcoot/wordsession/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController game.ControllerInterface
	Dictionary     dictionary.ServiceInterface
	HubManager     *sse.HubManager
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Gatherer       prometheus.Gatherer     // nil disables /metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.HubManager, cfg.Logger)
	wordHandler := handler.NewWordHandler(cfg.Dictionary)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Gatherer)).Methods(http.MethodGet)
	}

	// Word legality for other servers using this one as their dictionary
	r.HandleFunc("/api/validate-word/{word}", wordHandler.Check).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}

	api.HandleFunc("/health", wordHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/validate-word/{word}", wordHandler.Check).Methods(http.MethodGet)

	// Reads and joins need no identity
	games := api.PathPrefix("/games").Subrouter()
	games.Use(middleware.OptionalPlayer())
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/players", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Commands act as the player named in X-Player-ID
	commands := api.PathPrefix("/games/{id}").Subrouter()
	commands.Use(middleware.RequirePlayer())
	commands.HandleFunc("/pending", gameHandler.Place).Methods(http.MethodPost)
	commands.HandleFunc("/pending", gameHandler.Reset).Methods(http.MethodDelete)
	commands.HandleFunc("/moves", gameHandler.Submit).Methods(http.MethodPost)
	commands.HandleFunc("/resign", gameHandler.Resign).Methods(http.MethodPost)

	return r
}
