package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/wordsession/internal/api/response"
	"github.com/mcoot/wordsession/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Session:
		o.printSession(v)
	case response.JoinResponse:
		fmt.Fprintf(o.w, "Joined as %s (%s)\n\n", v.Player.Name, v.Player.ID)
		o.printSession(v.Session)
	case response.MoveResponse:
		fmt.Fprintf(o.w, "Scored %d for %s\n\n", v.Move.Score, strings.Join(v.Move.Words, ", "))
		o.printSession(v.Session)
	case response.WordCheckResponse:
		verdict := "not a word"
		if v.IsValid {
			verdict = "valid"
		}
		fmt.Fprintf(o.w, "%s: %s\n", v.Word, verdict)
	case response.HealthResponse:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		fmt.Fprintf(o.w, "Dictionary words: %d\n", v.DictionaryWords)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Fprintf(o.w, "Game: %s (v%d)\n", s.ID, s.Version)
	fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	if s.EndReason != "" {
		fmt.Fprintf(o.w, "Ended: %s\n", s.EndReason)
	}
	fmt.Fprintf(o.w, "Tiles in bag: %d\n", s.TilesInBag)

	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		turn := ""
		if p.IsCurrentTurn {
			turn = " [to play]"
		}
		fmt.Fprintf(o.w, "  - %s (%s): %d points%s\n", p.Name, p.ID, p.Score, turn)
		if len(p.Rack) > 0 {
			tiles := make([]string, len(p.Rack))
			for i, t := range p.Rack {
				tiles[i] = fmt.Sprintf("%s=%s", t.ID, t.Letter)
			}
			fmt.Fprintf(o.w, "    rack: %s\n", strings.Join(tiles, " "))
		}
	}

	if len(s.Board.Cells) > 0 {
		fmt.Fprintln(o.w)
		o.printBoard(s.Board)
	}
}

func (o *Output) printBoard(b response.Board) {
	size := b.Size
	if size == 0 {
		size = model.BoardSize
	}
	grid := make([][]string, size)
	for i := range grid {
		grid[i] = make([]string, size)
	}
	for _, c := range b.Cells {
		if c.Row < 0 || c.Row >= size || c.Col < 0 || c.Col >= size {
			continue
		}
		letter := c.Letter
		if c.Pending {
			letter = strings.ToLower(letter)
		}
		grid[c.Row][c.Col] = letter
	}

	fmt.Fprint(o.w, "    ")
	for col := range size {
		fmt.Fprintf(o.w, "%2d ", col)
	}
	fmt.Fprintln(o.w)

	for row := range size {
		fmt.Fprintf(o.w, "%2d |", row)
		for col := range size {
			if grid[row][col] == "" {
				fmt.Fprint(o.w, " . ")
			} else {
				fmt.Fprintf(o.w, " %s ", grid[row][col])
			}
		}
		fmt.Fprintln(o.w, "|")
	}
}
