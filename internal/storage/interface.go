package storage

import (
	"context"
	"time"

	"github.com/mcoot/wordsession/internal/model"
)

// Storage defines the interface for session state.
// Implementations hand out copies: mutating a returned session never changes stored state.
type Storage interface {
	// SaveSession stores session if its Revision matches the stored one (zero
	// when absent) and then advances session.Revision. A mismatch, including
	// a session deleted since it was read, fails with model.ErrSessionConflict.
	SaveSession(ctx context.Context, session *model.GameSession) error
	GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	SessionExists(ctx context.Context, id model.SessionID) (bool, error)

	// DeleteIdleSessions removes sessions not updated since before and returns their ids
	DeleteIdleSessions(ctx context.Context, before time.Time) ([]model.SessionID, error)

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}
