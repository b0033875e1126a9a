package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordsession/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	board   model.Board
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
	s.board = s.service.NewBoard()
}

func tile(id string, letter rune, value int) model.Tile {
	return model.Tile{ID: model.TileID(id), Letter: model.Letter(letter), Value: value}
}

// Layout tests

func (s *ServiceSuite) TestBonusLayoutCorners() {
	s.Equal(model.BonusTripleWord, s.service.BonusAt(model.Position{Row: 0, Col: 0}))
	s.Equal(model.BonusCenter, s.service.BonusAt(model.Position{Row: 7, Col: 7}))
	s.Equal(model.BonusTripleWord, s.service.BonusAt(model.Position{Row: 14, Col: 14}))
}

// PlaceTile tests

func (s *ServiceSuite) TestPlaceTileMarksPending() {
	err := s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 7}, tile("t1", 'C', 3), 0)
	s.Require().NoError(err)

	cell := s.board.Cells[7][7]
	s.True(cell.Pending)
	s.Equal(model.Letter('C'), cell.Letter)
	s.Equal(model.TileID("t1"), cell.Tile.ID)
	s.False(s.board.HasCommittedTiles())
}

func (s *ServiceSuite) TestPlaceTileOccupiedRejectedWithoutChange() {
	pos := model.Position{Row: 7, Col: 7}
	s.Require().NoError(s.service.PlaceTile(&s.board, pos, tile("t1", 'C', 3), 0))
	s.service.Commit(&s.board)

	err := s.service.PlaceTile(&s.board, pos, tile("t2", 'A', 1), 0)
	s.ErrorIs(err, model.ErrCellOccupied)

	cell := s.board.Cells[7][7]
	s.Equal(model.TileID("t1"), cell.Tile.ID)
	s.Equal(model.Letter('C'), cell.Letter)
	s.False(cell.Pending)
}

func (s *ServiceSuite) TestPlaceTileOnPendingCellRejected() {
	pos := model.Position{Row: 3, Col: 3}
	s.Require().NoError(s.service.PlaceTile(&s.board, pos, tile("t1", 'C', 3), 0))

	err := s.service.PlaceTile(&s.board, pos, tile("t2", 'A', 1), 0)
	s.ErrorIs(err, model.ErrCellOccupied)
}

func (s *ServiceSuite) TestPlaceTileOutOfBounds() {
	err := s.service.PlaceTile(&s.board, model.Position{Row: 15, Col: 0}, tile("t1", 'C', 3), 0)
	s.ErrorIs(err, model.ErrInvalidPosition)

	err = s.service.PlaceTile(&s.board, model.Position{Row: 0, Col: -1}, tile("t1", 'C', 3), 0)
	s.ErrorIs(err, model.ErrInvalidPosition)
}

func (s *ServiceSuite) TestPlaceBlankRequiresLetter() {
	blank := tile("b1", ' ', 0)
	pos := model.Position{Row: 7, Col: 7}

	err := s.service.PlaceTile(&s.board, pos, blank, 0)
	s.ErrorIs(err, model.ErrInvalidLetter)
	s.True(s.board.Cells[7][7].IsEmpty())

	s.Require().NoError(s.service.PlaceTile(&s.board, pos, blank, 'q'))
	s.Equal(model.Letter('Q'), s.board.Cells[7][7].Letter)
	s.Equal(model.BlankLetter, s.board.Cells[7][7].Tile.Letter)
}

func (s *ServiceSuite) TestPlaceLetteredTileRejectsMismatch() {
	err := s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 7}, tile("t1", 'C', 3), 'D')
	s.ErrorIs(err, model.ErrInvalidLetter)
}

// ClearUncommitted / Commit tests

func (s *ServiceSuite) TestClearUncommittedReturnsOnlyPending() {
	s.Require().NoError(s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 7}, tile("t1", 'C', 3), 0))
	s.service.Commit(&s.board)
	s.Require().NoError(s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 8}, tile("t2", 'A', 1), 0))
	s.Require().NoError(s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 9}, tile("t3", 'T', 1), 0))

	tiles := s.service.ClearUncommitted(&s.board)

	s.Len(tiles, 2)
	s.True(s.board.Cells[7][8].IsEmpty())
	s.True(s.board.Cells[7][9].IsEmpty())
	s.True(s.board.Cells[7][7].IsCommitted())
	s.Equal(model.BonusCenter, s.board.Cells[7][7].Bonus)
}

func (s *ServiceSuite) TestCommitClearsPendingFlags() {
	s.Require().NoError(s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 7}, tile("t1", 'C', 3), 0))
	s.Require().NoError(s.service.PlaceTile(&s.board, model.Position{Row: 7, Col: 8}, tile("t2", 'A', 1), 0))

	s.service.Commit(&s.board)

	s.True(s.board.Cells[7][7].IsCommitted())
	s.True(s.board.Cells[7][8].IsCommitted())
	s.Empty(s.service.ClearUncommitted(&s.board))
}

func (s *ServiceSuite) TestRemovePending() {
	pos := model.Position{Row: 2, Col: 2}
	s.Require().NoError(s.service.PlaceTile(&s.board, pos, tile("t1", 'C', 3), 0))

	removed, ok := s.service.RemovePending(&s.board, pos)
	s.True(ok)
	s.Equal(model.TileID("t1"), removed.ID)
	s.True(s.board.Cells[2][2].IsEmpty())

	_, ok = s.service.RemovePending(&s.board, pos)
	s.False(ok)
}

// ValidateLetter tests

func (s *ServiceSuite) TestValidateLetter() {
	s.NoError(ValidateLetter('a'))
	s.NoError(ValidateLetter('Z'))
	s.ErrorIs(ValidateLetter('1'), model.ErrInvalidLetter)
	s.ErrorIs(ValidateLetter(model.BlankLetter), model.ErrInvalidLetter)
}
