package sse

import "github.com/mcoot/wordsession/internal/model"

// Streams need no identity, so racks only travel to their owner: a snapshot
// keeps the viewer's own rack and broadcasts carry none.

// SessionView returns a copy of the session holding only the viewer's rack.
// An empty viewer sees no racks.
func SessionView(session *model.GameSession, viewer model.PlayerID) *model.GameSession {
	if session == nil {
		return nil
	}
	view := session.Clone()
	for i := range view.Players {
		if viewer == "" || view.Players[i].ID != viewer {
			view.Players[i].Rack = nil
		}
	}
	return view
}

// RedactPayload strips every rack from an event payload
func RedactPayload(payload any) any {
	switch p := payload.(type) {
	case model.Player:
		p.Rack = nil
		return p
	case model.MoveMadePayload:
		p.GameState = SessionView(p.GameState, "")
		return p
	case model.SessionEndedPayload:
		p.GameState = SessionView(p.GameState, "")
		return p
	default:
		return payload
	}
}
