package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// SessionStatus is the lifecycle phase of a session
type SessionStatus string

const (
	SessionStatusAwaitingPlayers SessionStatus = "awaiting_players" // fewer than two players joined
	SessionStatusInProgress      SessionStatus = "in_progress"
	SessionStatusEnded           SessionStatus = "ended"
)

// MinPlayersForRotation is the player count at which turns start to rotate
const MinPlayersForRotation = 2

// GameSession is the authoritative state of one game
type GameSession struct {
	ID              SessionID     `json:"id"`
	Board           Board         `json:"board"`
	Players         []Player      `json:"players"` // join order
	CurrentPlayerID PlayerID      `json:"currentPlayerId"`
	Bag             TileBag       `json:"letterBag"`
	MoveHistory     []Move        `json:"moveHistory"`
	Pending         []PendingTile `json:"pending"`
	Status          SessionStatus `json:"status"`
	EndReason       string        `json:"endReason,omitempty"`
	Version         int64         `json:"version"`
	// Revision counts stored writes, pending placements included. Storage
	// refuses a save whose Revision is not the one it holds.
	Revision        int64         `json:"revision"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsEnded returns true once the session has reached a terminal state
func (s *GameSession) IsEnded() bool {
	return s.Status == SessionStatusEnded
}

// PlayerIndex returns the join-order index of a player, or -1
func (s *GameSession) PlayerIndex(id PlayerID) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// GetPlayer returns a pointer into Players for the given id, or nil
func (s *GameSession) GetPlayer(id PlayerID) *Player {
	if i := s.PlayerIndex(id); i >= 0 {
		return &s.Players[i]
	}
	return nil
}

// CurrentPlayer returns the player holding the turn, or nil before anyone joined
func (s *GameSession) CurrentPlayer() *Player {
	return s.GetPlayer(s.CurrentPlayerID)
}

// PendingFor returns the uncommitted placements belonging to a player
func (s *GameSession) PendingFor(id PlayerID) []PendingTile {
	var out []PendingTile
	for _, p := range s.Pending {
		if p.PlayerID == id {
			out = append(out, p)
		}
	}
	return out
}

// TileCount returns every tile in the session: bag, racks and board
func (s *GameSession) TileCount() int {
	count := s.Bag.Len() + s.Board.TileCount()
	for _, p := range s.Players {
		count += len(p.Rack)
	}
	return count
}

// Clone returns a deep copy of the session
func (s *GameSession) Clone() *GameSession {
	out := *s
	out.Board = s.Board.Clone()
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	out.Bag = TileBag{Tiles: append([]BagTile(nil), s.Bag.Tiles...)}
	out.MoveHistory = make([]Move, len(s.MoveHistory))
	for i, m := range s.MoveHistory {
		m.Tiles = append([]PlacedLetter(nil), m.Tiles...)
		m.Words = append([]string(nil), m.Words...)
		out.MoveHistory[i] = m
	}
	out.Pending = append([]PendingTile(nil), s.Pending...)
	return &out
}
