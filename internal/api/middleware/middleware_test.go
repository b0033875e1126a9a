package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/testutil"
)

func echoPlayer() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetPlayerID(r.Context())))
	})
}

func TestRequirePlayer(t *testing.T) {
	h := RequirePlayer()(echoPlayer())

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(PlayerIDHeader, " p-1 ")
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "p-1", rec.Body.String())
	})

	t.Run("query fallback", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?player_id=p-2", nil))
		assert.Equal(t, "p-2", rec.Body.String())
	})
}

func TestOptionalPlayer(t *testing.T) {
	rec := httptest.NewRecorder()
	OptionalPlayer()(echoPlayer()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMustGetPlayerIDPanicsWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Panics(t, func() { MustGetPlayerID(req.Context()) })
	assert.Equal(t, model.PlayerID("p"), MustGetPlayerID(WithPlayerID(req.Context(), "p")))
}

func TestRecoveryWritesJSON500(t *testing.T) {
	var logs bytes.Buffer
	h := Recovery(testutil.BufferLogger(&logs))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, logs.String(), `"component":"api"`)
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1), Burst: 2, CleanupInterval: time.Hour}, testutil.NopLogger())
	defer rl.Stop()
	h := rl.Middleware()(echoPlayer())

	send := func(player string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(PlayerIDHeader, player)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	// separate budget per client
	assert.Equal(t, http.StatusOK, send("b"))
	require.Equal(t, 2, rl.LimiterCount())

	rl.cleanup(time.Now().Add(3 * time.Hour))
	assert.Equal(t, 0, rl.LimiterCount())
}
