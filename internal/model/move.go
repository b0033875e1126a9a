package model

import "time"

// PlacedLetter records one tile placed by a move
type PlacedLetter struct {
	Letter   Letter   `json:"letter"`
	Position Position `json:"position"`
}

// Move is an immutable record of a committed turn
type Move struct {
	PlayerID PlayerID       `json:"playerId"`
	Score    int            `json:"score"`
	Tiles    []PlacedLetter `json:"tiles"`
	Words    []string       `json:"words"`
	PlayedAt time.Time      `json:"playedAt"`
}

// PendingTile is an uncommitted placement on the shared board
type PendingTile struct {
	PlayerID PlayerID `json:"playerId"`
	Tile     Tile     `json:"tile"`
	Position Position `json:"position"`
	Letter   Letter   `json:"letter"` // face letter; differs from Tile.Letter for blanks
}

// MoveResult is the outcome of validating and scoring a candidate move
type MoveResult struct {
	IsValid bool        `json:"isValid"`
	Words   []WordMatch `json:"words"`
	Score   int         `json:"score"`
}

// WordStrings returns the words formed, in discovery order
func (r *MoveResult) WordStrings() []string {
	words := make([]string, len(r.Words))
	for i, w := range r.Words {
		words[i] = w.Word
	}
	return words
}

// MoveDetails summarises a committed move for notifications and broadcasts
type MoveDetails struct {
	PlayerID PlayerID `json:"playerId"`
	Score    int      `json:"score"`
	Words    []string `json:"words"`
}
