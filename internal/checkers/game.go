package checkers

import (
	"fmt"
	"math/rand"
	"time"
)

// Game serialises every board mutation through select, move, switch turn.
// It is not safe for concurrent use.
type Game struct {
	board      *Board
	turn       Color
	selected   *Piece
	validMoves Moves
	opponent   *Opponent
}

func NewGame() *Game {
	g := &Game{
		opponent: NewOpponent(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	g.init()
	return g
}

// NewGameFromPosition starts a game from pos with turn to move.
func NewGameFromPosition(pos string, turn Color) (*Game, error) {
	board, err := ParsePosition(pos)
	if err != nil {
		return nil, err
	}
	if turn != Red && turn != White {
		return nil, fmt.Errorf("invalid turn: %v", turn)
	}

	g := NewGame()
	g.board = board
	g.turn = turn
	return g, nil
}

func (g *Game) init() {
	g.board = NewBoard()
	g.turn = Red
	g.selected = nil
	g.validMoves = Moves{}
}

// SetSeed makes the automated opponent deterministic.
func (g *Game) SetSeed(seed int64) {
	g.opponent = NewOpponent(rand.New(rand.NewSource(seed)))
}

// Reset discards the current game and returns to the starting position.
func (g *Game) Reset() {
	g.init()
}

func (g *Game) Turn() Color {
	return g.turn
}

func (g *Game) Board() *Board {
	return g.board
}

// Selected returns the selected piece or nil.
func (g *Game) Selected() *Piece {
	return g.selected
}

// ValidMoves returns a copy of the destinations available to the selected piece.
func (g *Game) ValidMoves() Moves {
	moves := make(Moves, len(g.validMoves))
	for to, captured := range g.validMoves {
		moves[to] = captured
	}
	return moves
}

func (g *Game) Winner() (Color, bool) {
	return g.board.Winner()
}

// Select acts on a click at row, col. With a piece selected it first tries to
// move there; if that fails the selection is dropped and the square is tried
// once as a fresh selection. It reports whether a new selection was made, so a
// completed move returns false.
func (g *Game) Select(row, col int) bool {
	if !inBounds(row, col) {
		return false
	}

	if g.selected != nil {
		if g.move(row, col) {
			return false
		}
		g.selected = nil
		g.validMoves = Moves{}
	}

	piece := g.board.GetPiece(row, col)
	if piece == nil || piece.Color != g.turn {
		return false
	}
	g.selected = piece
	g.validMoves = g.board.GetValidMoves(piece)
	return true
}

func (g *Game) move(row, col int) bool {
	to := Coordinate{Row: row, Col: col}
	captured, ok := g.validMoves[to]
	if !ok || g.board.GetPiece(row, col) != nil {
		return false
	}

	g.board.Move(g.selected, row, col)
	if len(captured) > 0 {
		g.board.Remove(captured)
	}
	g.changeTurn()
	return true
}

// PlayTurn lets the automated opponent commit one move for color, preferring
// captures. It reports false and leaves the game untouched when color has no
// legal move.
func (g *Game) PlayTurn(color Color) (Candidate, bool) {
	all, captures := Candidates(g.board, color)
	if len(all) == 0 {
		return Candidate{}, false
	}

	chosen := g.opponent.Choose(all, captures)
	g.board.Move(chosen.Piece, chosen.To.Row, chosen.To.Col)
	if chosen.IsCapture() {
		g.board.Remove(chosen.Captured)
	}
	g.changeTurn()
	return chosen, true
}

func (g *Game) changeTurn() {
	g.selected = nil
	g.validMoves = Moves{}
	g.turn = g.turn.Opponent()
}
