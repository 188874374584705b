package web

import "github.com/justinabrahms/checkers/internal/checkers"

// Board geometry of the front end, in pixels. The scoreboard strip sits above
// the board.
const (
	BoardWidth       = 800
	BoardHeight      = 800
	ScoreboardHeight = 80
	SquareSize       = BoardWidth / checkers.Cols
)

// SquareAt maps a pointer position to a board square. Positions on the
// scoreboard strip or outside the board report false.
func SquareAt(x, y int) (checkers.Coordinate, bool) {
	y -= ScoreboardHeight
	if x < 0 || y < 0 || x >= BoardWidth || y >= BoardHeight {
		return checkers.Coordinate{}, false
	}
	return checkers.Coordinate{Row: y / SquareSize, Col: x / SquareSize}, true
}
