package model

// BoardSize is the dimension of the square board
const BoardSize = 15

// Position identifies a cell on the board
type Position struct {
	Row int `json:"row"` // 0-indexed from top
	Col int `json:"col"` // 0-indexed from left
}

// Center is the middle cell of the board
var Center = Position{Row: 7, Col: 7}

// InBounds returns true if the position is on the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// Bonus classifies a cell's score multiplier
type Bonus string

const (
	BonusNone         Bonus = "none"
	BonusDoubleLetter Bonus = "double_letter"
	BonusTripleLetter Bonus = "triple_letter"
	BonusDoubleWord   Bonus = "double_word"
	BonusTripleWord   Bonus = "triple_word"
	BonusCenter       Bonus = "center"
)

// LetterMultiplier returns the multiplier applied to a new tile's value on this cell
func (b Bonus) LetterMultiplier() int {
	switch b {
	case BonusDoubleLetter:
		return 2
	case BonusTripleLetter:
		return 3
	default:
		return 1
	}
}

// WordMultiplier returns the multiplier applied to a word covering a new tile
// on this cell. The center cell only doubles the opening move.
func (b Bonus) WordMultiplier(openingMove bool) int {
	switch b {
	case BonusDoubleWord:
		return 2
	case BonusTripleWord:
		return 3
	case BonusCenter:
		if openingMove {
			return 2
		}
		return 1
	default:
		return 1
	}
}

var (
	tripleWordCells = []Position{
		{0, 0}, {0, 7}, {0, 14},
		{7, 0}, {7, 14},
		{14, 0}, {14, 7}, {14, 14},
	}
	tripleLetterCells = []Position{
		{1, 5}, {1, 9},
		{5, 1}, {5, 5}, {5, 9}, {5, 13},
		{9, 1}, {9, 5}, {9, 9}, {9, 13},
		{13, 5}, {13, 9},
	}
	doubleLetterCells = []Position{
		{0, 3}, {0, 11},
		{2, 6}, {2, 8},
		{3, 0}, {3, 7}, {3, 14},
		{6, 2}, {6, 6}, {6, 8}, {6, 12},
		{7, 3}, {7, 11},
		{8, 2}, {8, 6}, {8, 8}, {8, 12},
		{11, 0}, {11, 7}, {11, 14},
		{12, 6}, {12, 8},
		{14, 3}, {14, 11},
	}
)

var bonusLayout = buildBonusLayout()

func buildBonusLayout() [BoardSize][BoardSize]Bonus {
	var layout [BoardSize][BoardSize]Bonus
	for row := range layout {
		for col := range layout[row] {
			layout[row][col] = BonusNone
		}
	}
	// Double-word squares run along both diagonals, skipping the centre and corners
	for i := 1; i < BoardSize-1; i++ {
		if i >= 5 && i <= 9 {
			continue
		}
		layout[i][i] = BonusDoubleWord
		layout[i][BoardSize-1-i] = BonusDoubleWord
	}
	for _, p := range tripleWordCells {
		layout[p.Row][p.Col] = BonusTripleWord
	}
	for _, p := range tripleLetterCells {
		layout[p.Row][p.Col] = BonusTripleLetter
	}
	for _, p := range doubleLetterCells {
		layout[p.Row][p.Col] = BonusDoubleLetter
	}
	layout[Center.Row][Center.Col] = BonusCenter
	return layout
}

// BonusAt returns the fixed bonus classification of a position.
// Out-of-bounds positions have no bonus.
func BonusAt(pos Position) Bonus {
	if !pos.InBounds() {
		return BonusNone
	}
	return bonusLayout[pos.Row][pos.Col]
}

// BoardCell is one square of the shared board
type BoardCell struct {
	Bonus   Bonus  `json:"bonus"`
	Tile    *Tile  `json:"tile,omitempty"`
	Letter  Letter `json:"face,omitempty"`    // tile letter, or the letter assigned to a blank
	Pending bool   `json:"pending,omitempty"` // placed this turn, not yet committed
}

// IsEmpty returns true if no tile occupies the cell
func (c *BoardCell) IsEmpty() bool {
	return c.Tile == nil
}

// IsCommitted returns true if the cell holds a confirmed tile
func (c *BoardCell) IsCommitted() bool {
	return c.Tile != nil && !c.Pending
}

// Board is the shared 15x15 grid, row-major
type Board struct {
	Cells [BoardSize][BoardSize]BoardCell `json:"cells"`
}

// NewBoard creates an empty board with the standard bonus layout
func NewBoard() Board {
	var b Board
	for row := range b.Cells {
		for col := range b.Cells[row] {
			b.Cells[row][col].Bonus = bonusLayout[row][col]
		}
	}
	return b
}

// Cell returns the cell at pos, or nil if out of bounds
func (b *Board) Cell(pos Position) *BoardCell {
	if !pos.InBounds() {
		return nil
	}
	return &b.Cells[pos.Row][pos.Col]
}

// HasCommittedTiles returns true if any confirmed tile is on the board
func (b *Board) HasCommittedTiles() bool {
	for row := range b.Cells {
		for col := range b.Cells[row] {
			if b.Cells[row][col].IsCommitted() {
				return true
			}
		}
	}
	return false
}

// TileCount returns the number of tiles on the board, pending included
func (b *Board) TileCount() int {
	count := 0
	for row := range b.Cells {
		for col := range b.Cells[row] {
			if b.Cells[row][col].Tile != nil {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the board
func (b *Board) Clone() Board {
	out := *b
	for row := range out.Cells {
		for col := range out.Cells[row] {
			if t := out.Cells[row][col].Tile; t != nil {
				tile := *t
				out.Cells[row][col].Tile = &tile
			}
		}
	}
	return out
}

// WordMatch is a word formed by a move
type WordMatch struct {
	Word       string   `json:"word"`
	StartPos   Position `json:"start"`
	Horizontal bool     `json:"horizontal"` // true = left-to-right, false = top-to-bottom
	Length     int      `json:"length"`
	Score      int      `json:"score"`
}
