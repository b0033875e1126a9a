package scoring

import (
	"context"
	"errors"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/dictionary"
)

// maxConcurrentLookups bounds parallel dictionary requests for one move
const maxConcurrentLookups = 4

var errWordRejected = errors.New("word rejected")

// Service validates candidate moves and scores them
type Service struct {
	dictionary dictionary.Checker
}

// New creates a new scoring Service
func New(checker dictionary.Checker) *Service {
	return &Service{
		dictionary: checker,
	}
}

// square is a view of one cell with the candidate move overlaid
type square struct {
	letter model.Letter
	value  int
	isNew  bool
	bonus  model.Bonus
}

// overlay combines committed board tiles with the candidate placements.
// Cells that are merely pending on the board are treated as empty.
type overlay struct {
	board  *model.Board
	placed map[model.Position]square
}

func (o *overlay) at(pos model.Position) (square, bool) {
	if sq, ok := o.placed[pos]; ok {
		return sq, true
	}
	cell := o.board.Cell(pos)
	if cell == nil || !cell.IsCommitted() {
		return square{}, false
	}
	return square{letter: cell.Letter, value: cell.Tile.Value, bonus: cell.Bonus}, true
}

// ValidateMove finds every word the placements form, checks each against the
// dictionary and scores the move. It never modifies the board.
//
// Precondition failures are returned as errors. An illegal word, or a move
// forming no word at all, yields a result with IsValid false.
func (s *Service) ValidateMove(ctx context.Context, board *model.Board, placements []model.PendingTile) (*model.MoveResult, error) {
	if len(placements) == 0 {
		return nil, model.ErrEmptyMove
	}

	o := &overlay{board: board, placed: make(map[model.Position]square, len(placements))}
	for _, p := range placements {
		cell := board.Cell(p.Position)
		if cell == nil {
			return nil, model.ErrInvalidPosition
		}
		if cell.IsCommitted() {
			return nil, model.ErrCellOccupied
		}
		if _, dup := o.placed[p.Position]; dup {
			return nil, model.ErrCellOccupied
		}
		face := p.Letter
		if face == 0 {
			face = p.Tile.Letter
		}
		if !face.IsAlpha() {
			return nil, model.ErrInvalidLetter
		}
		o.placed[p.Position] = square{letter: face, value: p.Tile.Value, isNew: true, bonus: cell.Bonus}
	}

	opening := !board.HasCommittedTiles()
	words := o.findWords(placements, opening)
	result := &model.MoveResult{Words: words}
	if len(words) == 0 {
		return result, nil
	}

	valid, err := s.checkWords(ctx, words)
	if err != nil {
		return nil, err
	}
	if !valid {
		return result, nil
	}

	result.IsValid = true
	for _, w := range words {
		result.Score += w.Score
	}
	return result, nil
}

// findWords returns horizontal words row by row, then vertical words column by column
func (o *overlay) findWords(placements []model.PendingTile, opening bool) []model.WordMatch {
	var rows, cols []int
	for _, p := range placements {
		rows = append(rows, p.Position.Row)
		cols = append(cols, p.Position.Col)
	}
	slices.Sort(rows)
	slices.Sort(cols)
	rows = slices.Compact(rows)
	cols = slices.Compact(cols)

	var words []model.WordMatch
	for _, row := range rows {
		words = append(words, o.scanLine(model.Position{Row: row}, 0, 1, opening)...)
	}
	for _, col := range cols {
		words = append(words, o.scanLine(model.Position{Col: col}, 1, 0, opening)...)
	}
	return words
}

// scanLine walks one row or column and collects every maximal run of length >= 2
// that contains a new tile
func (o *overlay) scanLine(start model.Position, dRow, dCol int, opening bool) []model.WordMatch {
	var words []model.WordMatch
	var run []square
	var runStart model.Position

	flush := func() {
		if len(run) >= dictionary.MinWordLength && slices.ContainsFunc(run, func(sq square) bool { return sq.isNew }) {
			words = append(words, scoreRun(run, runStart, dCol == 1, opening))
		}
		run = run[:0]
	}

	for i := range model.BoardSize {
		pos := model.Position{Row: start.Row + i*dRow, Col: start.Col + i*dCol}
		sq, ok := o.at(pos)
		if !ok {
			flush()
			continue
		}
		if len(run) == 0 {
			runStart = pos
		}
		run = append(run, sq)
	}
	flush()
	return words
}

// scoreRun applies letter multipliers and word multipliers of new tiles only
func scoreRun(run []square, start model.Position, horizontal, opening bool) model.WordMatch {
	var sb strings.Builder
	total := 0
	wordMultiplier := 1
	for _, sq := range run {
		sb.WriteRune(rune(sq.letter))
		if sq.isNew {
			total += sq.value * sq.bonus.LetterMultiplier()
			wordMultiplier *= sq.bonus.WordMultiplier(opening)
		} else {
			total += sq.value
		}
	}
	return model.WordMatch{
		Word:       sb.String(),
		StartPos:   start,
		Horizontal: horizontal,
		Length:     len(run),
		Score:      total * wordMultiplier,
	}
}

// checkWords looks every word up concurrently and stops at the first rejection
func (s *Service) checkWords(ctx context.Context, words []model.WordMatch) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for _, w := range words {
		g.Go(func() error {
			if !s.dictionary.CheckWord(gctx, w.Word) {
				return errWordRejected
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errWordRejected):
		return false, nil
	default:
		return false, err
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	ValidateMove(ctx context.Context, board *model.Board, placements []model.PendingTile) (*model.MoveResult, error)
}

var _ ServiceInterface = (*Service)(nil)
