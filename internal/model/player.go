package model

// PlayerID uniquely identifies a player within a session
type PlayerID string

// Player is a session participant
type Player struct {
	ID            PlayerID `json:"id"`
	Name          string   `json:"name"`
	Score         int      `json:"score"`
	Rack          []Tile   `json:"tiles"`
	IsCurrentTurn bool     `json:"isCurrentTurn"`
}

// RackTile returns the index of the tile with the given id in the rack, or -1
func (p *Player) RackTile(id TileID) int {
	for i, t := range p.Rack {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	out := p
	out.Rack = append([]Tile(nil), p.Rack...)
	return out
}
