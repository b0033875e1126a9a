package model

import (
	"fmt"
	"unicode/utf8"
)

// BlankLetter is the letter carried by a blank tile before a face letter is assigned
const BlankLetter Letter = ' '

// RackSize is the number of tiles a player holds under normal play
const RackSize = 7

// Letter is a single tile letter. It encodes to JSON as a one-character string.
type Letter rune

// IsBlank reports whether the letter is the blank marker
func (l Letter) IsBlank() bool {
	return l == BlankLetter
}

// IsAlpha reports whether the letter is an uppercase A-Z face letter
func (l Letter) IsAlpha() bool {
	return l >= 'A' && l <= 'Z'
}

func (l Letter) String() string {
	if l == 0 {
		return ""
	}
	return string(rune(l))
}

// MarshalText implements encoding.TextMarshaler
func (l Letter) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Letter) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*l = 0
		return nil
	}
	r, size := utf8.DecodeRune(text)
	if r == utf8.RuneError || size != len(text) {
		return fmt.Errorf("%w: %q", ErrInvalidLetter, string(text))
	}
	*l = Letter(r)
	return nil
}

// TileID uniquely identifies a physical tile within a session
type TileID string

// Tile is a physical letter tile. Tiles are immutable once drawn.
type Tile struct {
	ID     TileID `json:"id"`
	Letter Letter `json:"letter"`
	Value  int    `json:"value"`
}

// IsBlank reports whether the tile is a blank
func (t Tile) IsBlank() bool {
	return t.Letter.IsBlank()
}

// BagTile is a tile still in the bag. IDs are assigned on draw.
type BagTile struct {
	Letter Letter `json:"letter"`
	Value  int    `json:"value"`
}

// TileBag is the remaining inventory of undrawn tiles
type TileBag struct {
	Tiles []BagTile `json:"tiles"`
}

// Len returns the number of tiles left in the bag
func (b *TileBag) Len() int {
	return len(b.Tiles)
}

// IsEmpty returns true if no tiles remain
func (b *TileBag) IsEmpty() bool {
	return len(b.Tiles) == 0
}
