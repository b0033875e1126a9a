package tilebag

import (
	"github.com/mcoot/wordsession/internal/dependencies/ids"
	"github.com/mcoot/wordsession/internal/dependencies/random"
	"github.com/mcoot/wordsession/internal/model"
)

// TotalTiles is the size of a full bag
const TotalTiles = 100

// distribution is the standard English letter count and value
var distribution = []struct {
	letter model.Letter
	count  int
	value  int
}{
	{'A', 9, 1}, {'B', 2, 3}, {'C', 2, 3}, {'D', 4, 2}, {'E', 12, 1},
	{'F', 2, 4}, {'G', 3, 2}, {'H', 2, 4}, {'I', 9, 1}, {'J', 1, 8},
	{'K', 1, 5}, {'L', 4, 1}, {'M', 2, 3}, {'N', 6, 1}, {'O', 8, 1},
	{'P', 2, 3}, {'Q', 1, 10}, {'R', 6, 1}, {'S', 4, 1}, {'T', 6, 1},
	{'U', 4, 1}, {'V', 2, 4}, {'W', 2, 4}, {'X', 1, 8}, {'Y', 2, 4},
	{'Z', 1, 10}, {model.BlankLetter, 2, 0},
}

// LetterValue returns the point value of a letter; blanks and unknown letters score 0
func LetterValue(letter model.Letter) int {
	for _, d := range distribution {
		if d.letter == letter {
			return d.value
		}
	}
	return 0
}

// Service creates and draws from tile bags
type Service struct {
	random random.Random
	ids    ids.Generator
}

// New creates a new tile bag Service
func New(rnd random.Random, idGen ids.Generator) *Service {
	return &Service{
		random: rnd,
		ids:    idGen,
	}
}

// NewBag returns a full bag in alphabetical order, blanks last
func (s *Service) NewBag() model.TileBag {
	tiles := make([]model.BagTile, 0, TotalTiles)
	for _, d := range distribution {
		for range d.count {
			tiles = append(tiles, model.BagTile{Letter: d.letter, Value: d.value})
		}
	}
	return model.TileBag{Tiles: tiles}
}

// Draw removes up to n tiles uniformly at random and gives each a fresh id.
// An exhausted bag yields fewer tiles, or none; that is not an error.
func (s *Service) Draw(bag *model.TileBag, n int) []model.Tile {
	n = min(n, bag.Len())
	if n <= 0 {
		return []model.Tile{}
	}

	drawn := make([]model.Tile, 0, n)
	for range n {
		i := s.random.Intn(bag.Len())
		picked := bag.Tiles[i]
		bag.Tiles = append(bag.Tiles[:i], bag.Tiles[i+1:]...)
		drawn = append(drawn, model.Tile{
			ID:     model.TileID(s.ids.NewID()),
			Letter: picked.Letter,
			Value:  picked.Value,
		})
	}
	return drawn
}

// Refill draws until the rack holds RackSize tiles or the bag is empty
func (s *Service) Refill(bag *model.TileBag, rack []model.Tile) []model.Tile {
	need := model.RackSize - len(rack)
	if need <= 0 {
		return rack
	}
	return append(rack, s.Draw(bag, need)...)
}

// Interface for dependency injection
type ServiceInterface interface {
	NewBag() model.TileBag
	Draw(bag *model.TileBag, n int) []model.Tile
	Refill(bag *model.TileBag, rack []model.Tile) []model.Tile
}

var _ ServiceInterface = (*Service)(nil)
