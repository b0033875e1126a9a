package synchronizer

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/wordsession/internal/model"
)

// Replica is a participant's local copy of a session, kept in step with the
// authoritative server by applying broadcast events. It never originates
// state changes.
type Replica struct {
	mu        sync.RWMutex
	sessionID model.SessionID
	session   *model.GameSession
}

// NewReplica creates an empty replica for a session
func NewReplica(sessionID model.SessionID) *Replica {
	return &Replica{sessionID: sessionID}
}

// Snapshot returns a copy of the local view, or nil before anything was received
func (r *Replica) Snapshot() *model.GameSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return nil
	}
	return r.session.Clone()
}

// OnRemoteJoin appends a player unless one with the same id is already known.
// Returns true if the local view changed.
func (r *Replica) OnRemoteJoin(player model.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		board := model.NewBoard()
		r.session = &model.GameSession{ID: r.sessionID, Board: board}
	}
	if lo.ContainsBy(r.session.Players, func(p model.Player) bool { return p.ID == player.ID }) {
		return false
	}
	r.session.Players = append(r.session.Players, player.Clone())
	if player.IsCurrentTurn {
		r.session.CurrentPlayerID = player.ID
	}
	return true
}

// OnRemoteMove replaces the local view with an authoritative snapshot.
// Snapshots older than the local version are ignored; an equal version
// replaces, so applying the same snapshot twice changes nothing. Any local
// pending placement is discarded. Returns true if the snapshot was applied.
func (r *Replica) OnRemoteMove(snapshot *model.GameSession) bool {
	if snapshot == nil || snapshot.ID != r.sessionID {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil && snapshot.Version < r.session.Version {
		return false
	}
	r.session = snapshot.Clone()
	return true
}

// Apply dispatches an event by type
func (r *Replica) Apply(event model.Event) (bool, error) {
	switch payload := event.Payload.(type) {
	case model.Player:
		return r.OnRemoteJoin(payload), nil
	case model.MoveMadePayload:
		return r.OnRemoteMove(payload.GameState), nil
	case model.SessionEndedPayload:
		return r.OnRemoteMove(payload.GameState), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
}
