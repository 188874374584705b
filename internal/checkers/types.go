package checkers

import "fmt"

const (
	Rows = 8
	Cols = 8
)

// Color identifies a side. Red moves first.
type Color int

const (
	Red Color = iota + 1
	White
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case White:
		return "white"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == Red {
		return White
	}
	return Red
}

// MarshalText encodes the color as "red" or "white".
func (c Color) MarshalText() ([]byte, error) {
	if c != Red && c != White {
		return nil, fmt.Errorf("invalid color: %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor converts "red" or "white" to a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "red":
		return Red, nil
	case "white":
		return White, nil
	default:
		return 0, fmt.Errorf("invalid color %q: expected red or white", s)
	}
}

// Coordinate is a (row, col) square on the board.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coordinate) Valid() bool {
	return c.Row >= 0 && c.Row < Rows && c.Col >= 0 && c.Col < Cols
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Piece is owned by a Board. Its identity is stable across moves.
type Piece struct {
	Row   int
	Col   int
	Color Color
	King  bool
}

func (p *Piece) Position() Coordinate {
	return Coordinate{Row: p.Row, Col: p.Col}
}

// Moves maps each legal destination of one piece to the pieces captured on the way.
type Moves map[Coordinate][]*Piece

// Candidate is one legal move of one piece.
// From is recorded before the move is applied; Piece tracks its current square.
type Candidate struct {
	Piece    *Piece
	From     Coordinate
	To       Coordinate
	Captured []*Piece
}

func (c Candidate) IsCapture() bool {
	return len(c.Captured) > 0
}

// MaterialCount represents the pieces left for both sides
type MaterialCount struct {
	Red   int `json:"red"`
	White int `json:"white"`
}
