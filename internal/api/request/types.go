package request

// JoinRequest is the request body for joining a session
type JoinRequest struct {
	PlayerName string `json:"player_name"`
}

// PlaceRequest is the request body for placing a tile as a pending move.
// Letter is required for blank tiles and optional otherwise.
type PlaceRequest struct {
	TileID string `json:"tile_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter,omitempty"`
}
