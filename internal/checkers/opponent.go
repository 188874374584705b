package checkers

import (
	"math/rand"
	"sort"
)

// Opponent picks a legal move uniformly at random, always taking a capture
// when one is available. It looks no further than one ply.
type Opponent struct {
	rng *rand.Rand
}

func NewOpponent(rng *rand.Rand) *Opponent {
	return &Opponent{rng: rng}
}

// Choose picks from captures when non-empty, otherwise from all.
// all must not be empty.
func (o *Opponent) Choose(all, captures []Candidate) Candidate {
	pool := all
	if len(captures) > 0 {
		pool = captures
	}
	return pool[o.rng.Intn(len(pool))]
}

// Candidates lists every legal move of color, and separately those that capture.
// Pieces are visited in row-major order and destinations in row-major order so
// the pools are stable for a given position.
func Candidates(b *Board, color Color) (all, captures []Candidate) {
	for _, piece := range b.Pieces(color) {
		moves := b.GetValidMoves(piece)
		for _, to := range sortedDestinations(moves) {
			c := Candidate{Piece: piece, From: piece.Position(), To: to, Captured: moves[to]}
			all = append(all, c)
			if c.IsCapture() {
				captures = append(captures, c)
			}
		}
	}
	return all, captures
}

func sortedDestinations(moves Moves) []Coordinate {
	dests := make([]Coordinate, 0, len(moves))
	for to := range moves {
		dests = append(dests, to)
	}
	sort.Slice(dests, func(i, j int) bool {
		if dests[i].Row != dests[j].Row {
			return dests[i].Row < dests[j].Row
		}
		return dests[i].Col < dests[j].Col
	})
	return dests
}
