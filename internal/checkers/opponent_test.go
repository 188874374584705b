package checkers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// White can jump the red man from 2,1 or make one of three quiet moves.
var capturePosition = pos(".....w..", "........", ".w......", "..r.....", "........", "........", "........", "........")

func TestCandidates(t *testing.T) {
	board := NewBoard()

	all, captures := Candidates(board, Red)
	assert.Len(t, all, 7)
	assert.Empty(t, captures)

	all, captures = Candidates(board, White)
	assert.Len(t, all, 7)
	assert.Empty(t, captures)
}

func TestCandidatesWithCapture(t *testing.T) {
	board, err := ParsePosition(capturePosition)
	require.NoError(t, err)

	all, captures := Candidates(board, White)
	assert.Len(t, all, 4)
	require.Len(t, captures, 1)
	assert.Equal(t, Coordinate{4, 3}, captures[0].To)
	assert.Same(t, board.GetPiece(2, 1), captures[0].Piece)
	assert.Same(t, board.GetPiece(3, 2), captures[0].Captured[0])
}

func TestPlayTurnPrefersCaptures(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		game, err := NewGameFromPosition(capturePosition, White)
		require.NoError(t, err)
		game.SetSeed(seed)

		chosen, ok := game.PlayTurn(White)
		require.True(t, ok)
		assert.True(t, chosen.IsCapture(), "seed %d chose a quiet move", seed)
		assert.Nil(t, game.Board().GetPiece(3, 2), "seed %d left the red man on the board", seed)
		assert.Equal(t, 2, game.Board().Material().White)
		assert.Equal(t, Red, game.Turn())
	}
}

func TestPlayTurnNoMoves(t *testing.T) {
	position := pos("........", "........", "........", "........", "........", "..r.....", "........", "w.......")
	game, err := NewGameFromPosition(position, White)
	require.NoError(t, err)

	_, ok := game.PlayTurn(White)

	assert.False(t, ok)
	assert.Equal(t, position, game.Board().String())
	assert.Equal(t, White, game.Turn())
}

func TestPlayTurnCoversAllQuietMoves(t *testing.T) {
	seen := make(map[string]bool)
	for seed := int64(0); seed < 400; seed++ {
		game := NewGame()
		game.SetSeed(seed)

		chosen, ok := game.PlayTurn(Red)
		require.True(t, ok)
		assert.False(t, chosen.IsCapture())
		assert.Equal(t, White, game.Turn())
		seen[chosen.From.String()+chosen.To.String()] = true
	}

	assert.Len(t, seen, 7, "every opening move should be picked by some seed")
}

func TestPlayTurnReportsOrigin(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		game := NewGame()
		game.SetSeed(seed)

		chosen, ok := game.PlayTurn(Red)
		require.True(t, ok)

		assert.NotEqual(t, chosen.From, chosen.To)
		assert.Equal(t, chosen.To, chosen.Piece.Position())
		assert.Nil(t, game.Board().GetPiece(chosen.From.Row, chosen.From.Col))
		assert.Equal(t, 5, chosen.From.Row)
	}
}

func TestCandidatesRecordOrigin(t *testing.T) {
	all, _ := Candidates(NewBoard(), White)
	require.NotEmpty(t, all)
	for _, c := range all {
		assert.Equal(t, c.Piece.Position(), c.From)
	}
}

func TestPlayTurnClearsSelection(t *testing.T) {
	game := NewGame()
	game.SetSeed(1)
	require.True(t, game.Select(5, 0))

	_, ok := game.PlayTurn(Red)
	require.True(t, ok)

	assert.Nil(t, game.Selected())
	assert.Empty(t, game.ValidMoves())
}

func TestOpponentChoose(t *testing.T) {
	opponent := NewOpponent(rand.New(rand.NewSource(3)))
	quiet := Candidate{To: Coordinate{3, 0}}
	capture := Candidate{To: Coordinate{4, 3}, Captured: []*Piece{{Row: 3, Col: 2, Color: Red}}}

	for i := 0; i < 50; i++ {
		chosen := opponent.Choose([]Candidate{quiet, capture}, []Candidate{capture})
		assert.Equal(t, capture.To, chosen.To)
	}

	chosen := opponent.Choose([]Candidate{quiet}, nil)
	assert.Equal(t, quiet.To, chosen.To)
}
