package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/game"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidName         = "INVALID_NAME"
	CodeInvalidLetter       = "INVALID_LETTER"
	CodeInvalidPosition     = "INVALID_POSITION"
	CodePlayerIDRequired    = "PLAYER_ID_REQUIRED"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionEnded        = "SESSION_ENDED"
	CodeSessionConflict     = "SESSION_CONFLICT"
	CodeCellOccupied        = "CELL_OCCUPIED"
	CodeTileNotInRack       = "TILE_NOT_IN_RACK"
	CodeEmptyMove           = "EMPTY_MOVE"
	CodeInvalidWord         = "INVALID_WORD"
	CodeNotificationFailure = "NOTIFICATION_FAILURE"
	CodeDictionaryNotLoaded = "DICTIONARY_NOT_LOADED"
	CodeUnavailable         = "UNAVAILABLE"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status an error maps to
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrSessionEnded):
		return &httpError{http.StatusConflict, APIError{CodeSessionEnded, "Session has ended"}}
	case errors.Is(err, model.ErrSessionConflict):
		return &httpError{http.StatusConflict, APIError{CodeSessionConflict, "Session changed while handling the request, reload and retry"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found in this session"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Player name must be 1-32 characters"}}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Invalid board position"}}
	case errors.Is(err, model.ErrCellOccupied):
		return &httpError{http.StatusConflict, APIError{CodeCellOccupied, "Cell is already occupied"}}
	case errors.Is(err, model.ErrInvalidLetter):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidLetter, "Letter must be A-Z and match the tile"}}
	case errors.Is(err, model.ErrTileNotInRack):
		return &httpError{http.StatusBadRequest, APIError{CodeTileNotInRack, "Tile is not in your rack"}}
	case errors.Is(err, model.ErrEmptyMove):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyMove, "No tiles placed"}}
	case errors.Is(err, model.ErrInvalidWord):
		// the message names the offending words
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidWord, err.Error()}}
	case errors.Is(err, model.ErrNotificationFailure):
		return &httpError{http.StatusBadGateway, APIError{CodeNotificationFailure, "Notification endpoint did not acknowledge"}}
	case errors.Is(err, model.ErrDictionaryNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeDictionaryNotLoaded, "Dictionary not loaded"}}
	case errors.Is(err, game.ErrSessionIDExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Could not allocate a session id, try again"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewPlayerIDRequiredError is returned when a command arrives without X-Player-ID
func NewPlayerIDRequiredError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodePlayerIDRequired, "X-Player-ID header is required"}}
}

// NewRateLimitedError creates a 429 error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, try again later"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
