package board

import (
	"unicode"

	"github.com/mcoot/wordsession/internal/model"
)

// Service provides placement operations on a session's shared board
type Service struct{}

// New creates a new board Service
func New() *Service {
	return &Service{}
}

// NewBoard returns an empty board with the standard bonus layout
func (s *Service) NewBoard() model.Board {
	return model.NewBoard()
}

// BonusAt exposes the fixed bonus classification of a position
func (s *Service) BonusAt(pos model.Position) model.Bonus {
	return model.BonusAt(pos)
}

// PlaceTile puts a tile on the board as a pending placement. The face letter
// is the tile's own letter, or for a blank the letter the player assigned.
func (s *Service) PlaceTile(board *model.Board, pos model.Position, tile model.Tile, letter model.Letter) error {
	if err := s.ValidatePlacement(board, pos); err != nil {
		return err
	}
	face, err := FaceLetter(tile, letter)
	if err != nil {
		return err
	}

	cell := board.Cell(pos)
	placed := tile
	cell.Tile = &placed
	cell.Letter = face
	cell.Pending = true
	return nil
}

// ClearUncommitted removes every pending tile from the board and returns them
func (s *Service) ClearUncommitted(board *model.Board) []model.Tile {
	var tiles []model.Tile
	for row := range board.Cells {
		for col := range board.Cells[row] {
			cell := &board.Cells[row][col]
			if cell.Pending && cell.Tile != nil {
				tiles = append(tiles, *cell.Tile)
				clearCell(cell)
			}
		}
	}
	return tiles
}

// RemovePending clears a single pending cell and returns its tile
func (s *Service) RemovePending(board *model.Board, pos model.Position) (model.Tile, bool) {
	cell := board.Cell(pos)
	if cell == nil || !cell.Pending || cell.Tile == nil {
		return model.Tile{}, false
	}
	tile := *cell.Tile
	clearCell(cell)
	return tile, true
}

// Commit confirms every pending tile
func (s *Service) Commit(board *model.Board) {
	for row := range board.Cells {
		for col := range board.Cells[row] {
			board.Cells[row][col].Pending = false
		}
	}
}

// ValidatePlacement checks that a position is on the board and holds no tile
func (s *Service) ValidatePlacement(board *model.Board, pos model.Position) error {
	cell := board.Cell(pos)
	if cell == nil {
		return model.ErrInvalidPosition
	}
	if !cell.IsEmpty() {
		return model.ErrCellOccupied
	}
	return nil
}

// FaceLetter resolves the letter a tile shows once placed. Blanks require an
// assigned A-Z letter; lettered tiles ignore an empty letter but reject a mismatch.
func FaceLetter(tile model.Tile, letter model.Letter) (model.Letter, error) {
	assigned := model.Letter(unicode.ToUpper(rune(letter)))
	if tile.IsBlank() {
		if err := ValidateLetter(assigned); err != nil {
			return 0, err
		}
		return assigned, nil
	}
	if assigned != 0 && assigned != tile.Letter {
		return 0, model.ErrInvalidLetter
	}
	return tile.Letter, nil
}

// ValidateLetter checks if a letter is a valid A-Z character
func ValidateLetter(letter model.Letter) error {
	upper := unicode.ToUpper(rune(letter))
	if upper < 'A' || upper > 'Z' {
		return model.ErrInvalidLetter
	}
	return nil
}

func clearCell(cell *model.BoardCell) {
	cell.Tile = nil
	cell.Letter = 0
	cell.Pending = false
}

// Interface for dependency injection
type ServiceInterface interface {
	NewBoard() model.Board
	BonusAt(pos model.Position) model.Bonus
	PlaceTile(board *model.Board, pos model.Position, tile model.Tile, letter model.Letter) error
	ClearUncommitted(board *model.Board) []model.Tile
	RemovePending(board *model.Board, pos model.Position) (model.Tile, bool)
	Commit(board *model.Board)
	ValidatePlacement(board *model.Board, pos model.Position) error
}

var _ ServiceInterface = (*Service)(nil)
