package web

import (
	"strings"
	"testing"
	"time"

	"github.com/justinabrahms/checkers/internal/checkers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func position(ranks ...string) string {
	return strings.Join(ranks, "/")
}

// loadPosition swaps the session's game for one starting at pos.
func loadPosition(t *testing.T, s *Session, pos string, turn checkers.Color) {
	t.Helper()
	game, err := checkers.NewGameFromPosition(pos, turn)
	require.NoError(t, err)
	game.SetSeed(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.game = game
	s.scheduleOpponentLocked()
}

func TestSessionHumanWinAndReplay(t *testing.T) {
	s := NewSession(checkers.Red, time.Hour, 1)
	t.Cleanup(s.Close)
	loadPosition(t, s, position("........", "........", "........", "........", "...w....", "..r.....", "........", "........"), checkers.Red)

	selected, err := s.Select(checkers.Coordinate{Row: 5, Col: 2})
	require.NoError(t, err)
	require.True(t, selected)

	selected, err = s.Select(checkers.Coordinate{Row: 3, Col: 4})
	require.NoError(t, err)
	assert.False(t, selected)

	state := s.State()
	require.True(t, state.GameOver)
	require.NotNil(t, state.Winner)
	assert.Equal(t, checkers.Red, *state.Winner)
	assert.Equal(t, Scoreboard{HumanWins: 1}, state.Scoreboard)
	require.NotNil(t, state.LastMove)
	assert.Equal(t, 1, state.LastMove.Captured)
	assert.Equal(t, &checkers.Coordinate{Row: 5, Col: 2}, state.LastMove.From)

	_, err = s.Select(checkers.Coordinate{Row: 3, Col: 4})
	assert.ErrorIs(t, err, ErrGameOver)

	// the scoreboard survives a replay and is only counted once
	s.Reset()
	state = s.State()
	assert.False(t, state.GameOver)
	assert.Nil(t, state.Winner)
	assert.Equal(t, checkers.StartingPosition, state.Position)
	assert.Equal(t, checkers.Red, state.Turn)
	assert.Equal(t, Scoreboard{HumanWins: 1}, state.Scoreboard)
}

func TestSessionOpponentWins(t *testing.T) {
	s := NewSession(checkers.Red, 5*time.Millisecond, 1)
	t.Cleanup(s.Close)
	loadPosition(t, s, position(".....w..", "........", ".w......", "..r.....", "........", "........", "........", "........"), checkers.White)

	require.Eventually(t, func() bool {
		return s.State().GameOver
	}, 2*time.Second, 5*time.Millisecond)

	state := s.State()
	require.NotNil(t, state.Winner)
	assert.Equal(t, checkers.White, *state.Winner)
	assert.Equal(t, Scoreboard{OpponentWins: 1}, state.Scoreboard)
	assert.Equal(t, 0, state.Material.Red)
}

func TestSessionRejectsOutOfTurnAndOffBoard(t *testing.T) {
	s := NewSession(checkers.Red, time.Hour, 1)
	t.Cleanup(s.Close)

	_, err := s.Select(checkers.Coordinate{Row: 8, Col: 0})
	assert.Error(t, err)

	require.True(t, mustSelect(t, s, 5, 0))
	assert.False(t, mustSelect(t, s, 4, 1))

	_, err = s.Select(checkers.Coordinate{Row: 5, Col: 2})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, checkers.White, s.State().Turn)
}

func TestSessionOpponentRepliesAfterDelay(t *testing.T) {
	s := NewSession(checkers.Red, 10*time.Millisecond, 1)
	t.Cleanup(s.Close)

	var updates []GameState
	updated := make(chan struct{}, 8)
	s.OnChange(func(state GameState) {
		updates = append(updates, state)
		updated <- struct{}{}
	})

	require.True(t, mustSelect(t, s, 5, 0))
	<-updated
	mustSelect(t, s, 4, 1)
	<-updated

	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("opponent did not move")
	}

	state := s.State()
	assert.Equal(t, checkers.Red, state.Turn)
	require.NotNil(t, state.LastMove)
	assert.Equal(t, checkers.White, state.LastMove.Color)
	assert.Len(t, updates, 3)
}

func TestSessionResetCancelsPendingOpponent(t *testing.T) {
	s := NewSession(checkers.Red, 50*time.Millisecond, 1)
	t.Cleanup(s.Close)

	mustSelect(t, s, 5, 0)
	mustSelect(t, s, 4, 1)
	s.Reset()

	time.Sleep(150 * time.Millisecond)

	state := s.State()
	assert.Equal(t, checkers.Red, state.Turn)
	assert.Equal(t, checkers.StartingPosition, state.Position)
	assert.Nil(t, state.LastMove)
}

func TestSessionHumanAsWhite(t *testing.T) {
	s := NewSession(checkers.White, 100*time.Millisecond, 1)
	t.Cleanup(s.Close)

	_, err := s.Select(checkers.Coordinate{Row: 2, Col: 1})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	require.Eventually(t, func() bool {
		return s.State().Turn == checkers.White
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, checkers.White, s.State().HumanColor)
}

func TestSessionOpponentMoveKeepsOrigin(t *testing.T) {
	s := NewSession(checkers.White, time.Millisecond, 5)
	t.Cleanup(s.Close)

	require.Eventually(t, func() bool {
		return s.State().Turn == checkers.White
	}, 2*time.Second, 5*time.Millisecond)

	state := s.State()
	require.NotNil(t, state.LastMove)
	require.NotNil(t, state.LastMove.From)
	assert.Equal(t, checkers.Red, state.LastMove.Color)
	assert.NotEqual(t, *state.LastMove.From, state.LastMove.To)

	board, err := checkers.ParsePosition(state.Position)
	require.NoError(t, err)
	assert.Nil(t, board.GetPiece(state.LastMove.From.Row, state.LastMove.From.Col))
	require.NotNil(t, board.GetPiece(state.LastMove.To.Row, state.LastMove.To.Col))
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	fresh := NewSession(checkers.Red, time.Hour, 1)
	stale := NewSession(checkers.Red, time.Hour, 1)
	stale.lastSeen = time.Now().Add(-2 * time.Hour)

	store.Add(fresh)
	store.Add(stale)
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(fresh.ID)
	require.NoError(t, err)
	assert.Same(t, fresh, got)

	removed := store.CleanupExpired(time.Hour, time.Now())
	assert.Equal(t, 1, removed)
	_, err = store.Get(stale.ID)
	assert.Error(t, err)

	store.Delete(fresh.ID)
	assert.Equal(t, 0, store.Len())
}

func TestSquareAt(t *testing.T) {
	tests := []struct {
		name     string
		x, y     int
		expected checkers.Coordinate
		ok       bool
	}{
		{"Top left square", 10, ScoreboardHeight + 10, checkers.Coordinate{Row: 0, Col: 0}, true},
		{"Red edge man", 50, ScoreboardHeight + 550, checkers.Coordinate{Row: 5, Col: 0}, true},
		{"Bottom right square", 799, ScoreboardHeight + 799, checkers.Coordinate{Row: 7, Col: 7}, true},
		{"Scoreboard strip", 100, 40, checkers.Coordinate{}, false},
		{"Below board", 100, ScoreboardHeight + 800, checkers.Coordinate{}, false},
		{"Right of board", 800, ScoreboardHeight + 100, checkers.Coordinate{}, false},
		{"Negative x", -1, ScoreboardHeight + 100, checkers.Coordinate{}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := SquareAt(test.x, test.y)
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.expected, got)
		})
	}
}

func mustSelect(t *testing.T, s *Session, row, col int) bool {
	t.Helper()
	selected, err := s.Select(checkers.Coordinate{Row: row, Col: col})
	require.NoError(t, err)
	return selected
}
