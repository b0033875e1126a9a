package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordsession/internal/api/apierr"
	"github.com/mcoot/wordsession/internal/api/middleware"
	"github.com/mcoot/wordsession/internal/api/request"
	"github.com/mcoot/wordsession/internal/api/response"
	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/game"
	"github.com/mcoot/wordsession/internal/web/sse"
)

// GameHandler handles session endpoints
type GameHandler struct {
	controller game.ControllerInterface
	hubs       *sse.HubManager
	logger     *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(controller game.ControllerInterface, hubs *sse.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		controller: controller,
		hubs:       hubs,
		logger:     logger.With(slog.String("component", "api")),
	}
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(strings.ToUpper(mux.Vars(r)["id"]))
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.controller.CreateSession(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.SessionFromModel(session, ""))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.controller.GetSession(r.Context(), sessionID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel(session, middleware.GetPlayerID(r.Context())))
}

// Join handles POST /api/v1/games/{id}/players
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	session, player, err := h.controller.Join(r.Context(), sessionID(r), req.PlayerName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinResponse{
		Player:  response.PlayerFromModel(player, true),
		Session: response.SessionFromModel(session, player.ID),
	})
}

// Place handles POST /api/v1/games/{id}/pending
func (h *GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.TileID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("tile_id is required"))
		return
	}
	letter, err := parseLetter(req.Letter)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	pos := model.Position{Row: req.Row, Col: req.Col}
	session, err := h.controller.PlacePending(r.Context(), sessionID(r), playerID, model.TileID(req.TileID), pos, letter)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel(session, playerID))
}

// parseLetter accepts "" or a single letter, case-insensitively
func parseLetter(s string) (model.Letter, error) {
	if s == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, model.ErrInvalidLetter
	}
	r, _ := utf8.DecodeRuneInString(strings.ToUpper(s))
	return model.Letter(r), nil
}

// Reset handles DELETE /api/v1/games/{id}/pending
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	session, err := h.controller.ResetPendingMove(r.Context(), sessionID(r), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel(session, playerID))
}

// Submit handles POST /api/v1/games/{id}/moves
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	session, move, err := h.controller.SubmitMove(r.Context(), sessionID(r), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.MoveResponse{
		Move:    response.MoveFromModel(move),
		Session: response.SessionFromModel(session, playerID),
	})
}

// Resign handles POST /api/v1/games/{id}/resign
func (h *GameHandler) Resign(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	session, err := h.controller.Resign(r.Context(), sessionID(r), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel(session, playerID))
}

// Events handles GET /api/v1/games/{id}/events. The stream opens with a
// snapshot event carrying the session, then relays session events. The
// client is subscribed before the snapshot is read, so a change landing in
// between is in the snapshot or on the stream.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	viewer := middleware.GetPlayerID(r.Context())

	// unknown sessions get a 404 without starting a hub
	if _, err := h.controller.GetSession(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	client := h.hubs.Subscribe(id, viewer)
	session, err := h.controller.GetSession(r.Context(), id)
	if err != nil {
		client.Close()
		apierr.WriteError(w, err)
		return
	}
	snapshot, err := json.Marshal(sse.SessionView(session, viewer))
	if err != nil {
		client.Close()
		h.logger.Error("failed to encode snapshot",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}

	// streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sse.ServeSSE(w, r, client, snapshot)
}
