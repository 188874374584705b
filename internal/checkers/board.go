package checkers

import (
	"fmt"
	"strings"
)

const (
	StartingPosition = ".w.w.w.w/w.w.w.w./.w.w.w.w/......../......../r.r.r.r./.r.r.r.r/r.r.r.r."
)

type direction struct {
	dr, dc int
}

var (
	forwardRed   = []direction{{-1, -1}, {-1, 1}}
	forwardWhite = []direction{{1, -1}, {1, 1}}
	allDirs      = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// Board owns every piece and enforces movement rules.
type Board struct {
	squares [Rows][Cols]*Piece
}

// NewBoard returns a board in the starting position.
func NewBoard() *Board {
	b := &Board{}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if !isDark(row, col) {
				continue
			}
			switch {
			case row < 3:
				b.squares[row][col] = &Piece{Row: row, Col: col, Color: White}
			case row > 4:
				b.squares[row][col] = &Piece{Row: row, Col: col, Color: Red}
			}
		}
	}
	return b
}

// ParsePosition builds a board from its text form: eight ranks separated by '/',
// row 0 first, with '.' for an empty square, 'r'/'R' for red men/kings and
// 'w'/'W' for white men/kings.
func ParsePosition(pos string) (*Board, error) {
	ranks := strings.Split(pos, "/")
	if len(ranks) != Rows {
		return nil, fmt.Errorf("invalid position: expected %d ranks, got %d", Rows, len(ranks))
	}

	b := &Board{}
	for row, rank := range ranks {
		if len(rank) != Cols {
			return nil, fmt.Errorf("invalid position: rank %d has %d squares", row, len(rank))
		}
		for col := 0; col < Cols; col++ {
			ch := rank[col]
			if ch == '.' {
				continue
			}
			piece := &Piece{Row: row, Col: col}
			switch ch {
			case 'r':
				piece.Color = Red
			case 'R':
				piece.Color, piece.King = Red, true
			case 'w':
				piece.Color = White
			case 'W':
				piece.Color, piece.King = White, true
			default:
				return nil, fmt.Errorf("invalid position: unknown piece %q at %d,%d", ch, row, col)
			}
			if !isDark(row, col) {
				return nil, fmt.Errorf("invalid position: piece on light square %d,%d", row, col)
			}
			b.squares[row][col] = piece
		}
	}
	return b, nil
}

// String encodes the board in the format read by ParsePosition.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < Rows; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		for col := 0; col < Cols; col++ {
			sb.WriteByte(pieceChar(b.squares[row][col]))
		}
	}
	return sb.String()
}

// GetPiece returns the piece at row, col or nil when the square is empty or off the board.
func (b *Board) GetPiece(row, col int) *Piece {
	if !inBounds(row, col) {
		return nil
	}
	return b.squares[row][col]
}

// Pieces returns every piece of color in row-major order.
func (b *Board) Pieces(color Color) []*Piece {
	var pieces []*Piece
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if p := b.squares[row][col]; p != nil && p.Color == color {
				pieces = append(pieces, p)
			}
		}
	}
	return pieces
}

// Move relocates piece to row, col and crowns a man reaching the far row.
// The destination is assumed legal.
func (b *Board) Move(piece *Piece, row, col int) {
	if !b.owns(piece) || !inBounds(row, col) {
		return
	}
	b.squares[piece.Row][piece.Col] = nil
	b.squares[row][col] = piece
	piece.Row, piece.Col = row, col

	if isPromotionRow(piece.Color, row) {
		piece.King = true
	}
}

// Remove takes every listed piece off the board.
func (b *Board) Remove(pieces []*Piece) {
	for _, p := range pieces {
		if b.owns(p) {
			b.squares[p.Row][p.Col] = nil
		}
	}
}

// GetValidMoves returns every legal destination of piece with the pieces each
// destination captures. Jump chains contribute one destination per landing square.
func (b *Board) GetValidMoves(piece *Piece) Moves {
	moves := Moves{}
	if !b.owns(piece) {
		return moves
	}

	for _, d := range directionsFor(piece) {
		row, col := piece.Row+d.dr, piece.Col+d.dc
		if inBounds(row, col) && b.squares[row][col] == nil {
			moves[Coordinate{Row: row, Col: col}] = nil
		}
	}

	b.collectJumps(piece, piece.Row, piece.Col, nil, moves)
	return moves
}

func (b *Board) collectJumps(piece *Piece, row, col int, captured []*Piece, moves Moves) {
	for _, d := range directionsFor(piece) {
		landRow, landCol := row+2*d.dr, col+2*d.dc
		if !inBounds(landRow, landCol) {
			continue
		}
		jumped := b.squares[row+d.dr][col+d.dc]
		if jumped == nil || jumped.Color == piece.Color || containsPiece(captured, jumped) {
			continue
		}
		// the moving piece has vacated its own square
		if occupant := b.squares[landRow][landCol]; occupant != nil && occupant != piece {
			continue
		}

		chain := make([]*Piece, len(captured), len(captured)+1)
		copy(chain, captured)
		chain = append(chain, jumped)

		to := Coordinate{Row: landRow, Col: landCol}
		if to != piece.Position() {
			if existing, ok := moves[to]; !ok || len(chain) > len(existing) {
				moves[to] = chain
			}
		}

		if !piece.King && isPromotionRow(piece.Color, landRow) {
			continue
		}
		b.collectJumps(piece, landRow, landCol, chain, moves)
	}
}

// Material returns the pieces left for both sides.
func (b *Board) Material() MaterialCount {
	return MaterialCount{
		Red:   len(b.Pieces(Red)),
		White: len(b.Pieces(White)),
	}
}

// Kings returns how many kings color has.
func (b *Board) Kings(color Color) int {
	kings := 0
	for _, p := range b.Pieces(color) {
		if p.King {
			kings++
		}
	}
	return kings
}

// Winner reports the winning side, if any. A side with no pieces or no legal
// moves has lost; Red is checked first.
func (b *Board) Winner() (Color, bool) {
	material := b.Material()
	switch {
	case material.Red == 0:
		return White, true
	case material.White == 0:
		return Red, true
	case !b.hasMoves(Red):
		return White, true
	case !b.hasMoves(White):
		return Red, true
	}
	return 0, false
}

func (b *Board) hasMoves(color Color) bool {
	for _, p := range b.Pieces(color) {
		if len(b.GetValidMoves(p)) > 0 {
			return true
		}
	}
	return false
}

func (b *Board) owns(p *Piece) bool {
	return p != nil && inBounds(p.Row, p.Col) && b.squares[p.Row][p.Col] == p
}

func directionsFor(p *Piece) []direction {
	switch {
	case p.King:
		return allDirs
	case p.Color == Red:
		return forwardRed
	default:
		return forwardWhite
	}
}

func isPromotionRow(color Color, row int) bool {
	return (color == Red && row == 0) || (color == White && row == Rows-1)
}

func isDark(row, col int) bool {
	return (row+col)%2 == 1
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

func containsPiece(pieces []*Piece, p *Piece) bool {
	for _, q := range pieces {
		if q == p {
			return true
		}
	}
	return false
}

func pieceChar(p *Piece) byte {
	if p == nil {
		return '.'
	}
	ch := byte('r')
	if p.Color == White {
		ch = 'w'
	}
	if p.King {
		ch -= 'a' - 'A'
	}
	return ch
}
