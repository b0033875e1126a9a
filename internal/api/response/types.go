package response

import (
	"time"

	"github.com/mcoot/wordsession/internal/model"
)

// Tile represents a tile in API responses
type Tile struct {
	ID     string `json:"id"`
	Letter string `json:"letter"`
	Value  int    `json:"value"`
}

// TileFromModel converts a model.Tile
func TileFromModel(t model.Tile) Tile {
	return Tile{
		ID:     string(t.ID),
		Letter: t.Letter.String(),
		Value:  t.Value,
	}
}

// Player represents a player in API responses. Rack is only filled in for
// the player making the request.
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	RackSize      int    `json:"rack_size"`
	Rack          []Tile `json:"rack,omitempty"`
	IsCurrentTurn bool   `json:"is_current_turn"`
}

// PlayerFromModel converts a model.Player, revealing the rack when withRack is set
func PlayerFromModel(p *model.Player, withRack bool) Player {
	resp := Player{
		ID:            string(p.ID),
		Name:          p.Name,
		Score:         p.Score,
		RackSize:      len(p.Rack),
		IsCurrentTurn: p.IsCurrentTurn,
	}
	if withRack {
		resp.Rack = make([]Tile, len(p.Rack))
		for i, t := range p.Rack {
			resp.Rack[i] = TileFromModel(t)
		}
	}
	return resp
}

// Cell is an occupied board square
type Cell struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	Bonus   string `json:"bonus,omitempty"`
	Pending bool   `json:"pending,omitempty"`
}

// Board lists the occupied squares of the board
type Board struct {
	Size  int    `json:"size"`
	Cells []Cell `json:"cells"`
}

// BoardFromModel converts model.Board, skipping empty squares
func BoardFromModel(b *model.Board) Board {
	cells := []Cell{}
	for row := range model.BoardSize {
		for col := range model.BoardSize {
			c := b.Cells[row][col]
			if c.Tile == nil {
				continue
			}
			cell := Cell{
				Row:     row,
				Col:     col,
				Letter:  c.Letter.String(),
				Value:   c.Tile.Value,
				Pending: c.Pending,
			}
			if c.Bonus != model.BonusNone {
				cell.Bonus = string(c.Bonus)
			}
			cells = append(cells, cell)
		}
	}
	return Board{Size: model.BoardSize, Cells: cells}
}

// Placement is a tile laid on the board
type Placement struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter"`
}

// Move represents a committed move
type Move struct {
	PlayerID string      `json:"player_id"`
	Score    int         `json:"score"`
	Words    []string    `json:"words"`
	Tiles    []Placement `json:"tiles"`
	PlayedAt time.Time   `json:"played_at"`
}

// MoveFromModel converts model.Move
func MoveFromModel(m *model.Move) Move {
	tiles := make([]Placement, len(m.Tiles))
	for i, t := range m.Tiles {
		tiles[i] = Placement{Row: t.Position.Row, Col: t.Position.Col, Letter: t.Letter.String()}
	}
	return Move{
		PlayerID: string(m.PlayerID),
		Score:    m.Score,
		Words:    m.Words,
		Tiles:    tiles,
		PlayedAt: m.PlayedAt,
	}
}

// Session represents a session snapshot as seen by one caller
type Session struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	EndReason       string    `json:"end_reason,omitempty"`
	Version         int64     `json:"version"`
	CurrentPlayerID string    `json:"current_player_id,omitempty"`
	Players         []Player  `json:"players"`
	Board           Board     `json:"board"`
	TilesInBag      int       `json:"tiles_in_bag"`
	Moves           []Move    `json:"moves"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SessionFromModel converts model.GameSession. Only viewer's rack is revealed.
func SessionFromModel(s *model.GameSession, viewer model.PlayerID) Session {
	players := make([]Player, len(s.Players))
	for i := range s.Players {
		p := &s.Players[i]
		players[i] = PlayerFromModel(p, p.ID == viewer)
	}
	moves := make([]Move, len(s.MoveHistory))
	for i := range s.MoveHistory {
		moves[i] = MoveFromModel(&s.MoveHistory[i])
	}
	return Session{
		ID:              string(s.ID),
		Status:          string(s.Status),
		EndReason:       s.EndReason,
		Version:         s.Version,
		CurrentPlayerID: string(s.CurrentPlayerID),
		Players:         players,
		Board:           BoardFromModel(&s.Board),
		TilesInBag:      s.Bag.Len(),
		Moves:           moves,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// JoinResponse is the response after joining a session. Player.ID is the
// identity to send as X-Player-ID from then on.
type JoinResponse struct {
	Player  Player  `json:"player"`
	Session Session `json:"session"`
}

// MoveResponse is the response after a committed move
type MoveResponse struct {
	Move    Move    `json:"move"`
	Session Session `json:"session"`
}

// WordCheckResponse is the word legality response
type WordCheckResponse struct {
	Word    string `json:"word"`
	IsValid bool   `json:"isValid"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	DictionaryWords int    `json:"dictionary_words"`
}
