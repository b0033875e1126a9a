package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session has ended")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidName     = errors.New("player name is required")
	ErrNotPlayerTurn   = errors.New("not this player's turn")
	ErrSessionConflict = errors.New("session was changed by another request")

	// Placement errors
	ErrInvalidPosition = errors.New("invalid board position")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidLetter   = errors.New("invalid letter")
	ErrTileNotInRack   = errors.New("tile is not in the player's rack")

	// Move errors
	ErrEmptyMove           = errors.New("move places no tiles")
	ErrInvalidWord         = errors.New("move forms an invalid word")
	ErrNotificationFailure = errors.New("notification endpoint did not acknowledge")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
