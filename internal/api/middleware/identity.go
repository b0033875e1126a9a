package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/wordsession/internal/api/apierr"
	"github.com/mcoot/wordsession/internal/model"
)

type contextKey string

const playerIDContextKey contextKey = "player_id"

// PlayerIDHeader carries the caller's player id. There is no authentication:
// the id returned by a join is the caller's identity.
const PlayerIDHeader = "X-Player-ID"

// RequirePlayer rejects requests that carry no player id
func RequirePlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := extractPlayerID(r)
			if id == "" {
				apierr.WriteError(w, apierr.NewPlayerIDRequiredError())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPlayerID(r.Context(), id)))
		})
	}
}

// OptionalPlayer records the player id if one was sent
func OptionalPlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := extractPlayerID(r); id != "" {
				r = r.WithContext(WithPlayerID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractPlayerID reads the header, falling back to the player_id query
// parameter for EventSource clients that cannot set headers
func extractPlayerID(r *http.Request) model.PlayerID {
	if id := strings.TrimSpace(r.Header.Get(PlayerIDHeader)); id != "" {
		return model.PlayerID(id)
	}
	return model.PlayerID(strings.TrimSpace(r.URL.Query().Get("player_id")))
}

// WithPlayerID stores a player id in the context
func WithPlayerID(ctx context.Context, id model.PlayerID) context.Context {
	return context.WithValue(ctx, playerIDContextKey, id)
}

// GetPlayerID returns the caller's player id, or "" if none was sent
func GetPlayerID(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerIDContextKey).(model.PlayerID)
	return id
}

// MustGetPlayerID returns the caller's player id or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	id := GetPlayerID(ctx)
	if id == "" {
		panic("no player id in context - RequirePlayer middleware not applied?")
	}
	return id
}
