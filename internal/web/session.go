package web

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justinabrahms/checkers/internal/checkers"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrGameOver    = errors.New("game is over")
)

// Scoreboard counts finished games for one browser session
type Scoreboard struct {
	HumanWins    int `json:"humanWins"`
	OpponentWins int `json:"opponentWins"`
}

// Session is one browser's game. Every request and every opponent tick holds
// mu for the whole core operation, so the game sees one event at a time.
type Session struct {
	ID string

	mu         sync.Mutex
	game       *checkers.Game
	human      checkers.Color
	aiDelay    time.Duration
	scoreboard Scoreboard
	gameOver   bool
	winner     checkers.Color
	lastMove   *MoveInfo
	generation int
	timer      *time.Timer
	lastSeen   time.Time
	notify     func(GameState)
}

// NewSession starts a game where the human plays human and the automated
// opponent acts aiDelay after its turn begins. seed 0 uses a clock seed.
func NewSession(human checkers.Color, aiDelay time.Duration, seed int64) *Session {
	game := checkers.NewGame()
	if seed != 0 {
		game.SetSeed(seed)
	}

	s := &Session{
		ID:       uuid.New().String(),
		game:     game,
		human:    human,
		aiDelay:  aiDelay,
		lastSeen: time.Now(),
	}

	s.mu.Lock()
	s.scheduleOpponentLocked()
	s.mu.Unlock()
	return s
}

// OnChange registers fn to receive the state after every change.
func (s *Session) OnChange(fn func(GameState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Select forwards a board click to the game controller on the human's turn.
func (s *Session) Select(c checkers.Coordinate) (bool, error) {
	if !c.Valid() {
		return false, fmt.Errorf("square %v is off the board", c)
	}

	s.mu.Lock()
	if s.gameOver {
		s.mu.Unlock()
		return false, ErrGameOver
	}
	if s.game.Turn() != s.human {
		s.mu.Unlock()
		return false, ErrNotYourTurn
	}

	var from *checkers.Coordinate
	if piece := s.game.Selected(); piece != nil {
		position := piece.Position()
		from = &position
	}
	before := s.game.Board().Material()

	turn := s.game.Turn()
	selected := s.game.Select(c.Row, c.Col)
	if s.game.Turn() != turn {
		after := s.game.Board().Material()
		s.lastMove = &MoveInfo{
			Color:    turn,
			From:     from,
			To:       c,
			Captured: before.Red + before.White - after.Red - after.White,
		}
		log.Debug().Str("session", s.ID).Str("to", c.String()).Msg("Human move committed")
	}
	s.recordWinnerLocked()
	s.scheduleOpponentLocked()
	state, notify := s.stateLocked(), s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return selected, nil
}

// Reset starts a new game and keeps the scoreboard. Pending opponent ticks
// from the previous game are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.generation++
	s.game.Reset()
	s.gameOver = false
	s.winner = 0
	s.lastMove = nil
	s.scheduleOpponentLocked()
	state, notify := s.stateLocked(), s.notify
	s.mu.Unlock()

	log.Info().Str("session", s.ID).Msg("Game reset")
	if notify != nil {
		notify(state)
	}
}

func (s *Session) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Close cancels any pending opponent tick.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.generation++
}

func (s *Session) opponent() checkers.Color {
	return s.human.Opponent()
}

func (s *Session) scheduleOpponentLocked() {
	if s.gameOver || s.game.Turn() != s.opponent() || s.timer != nil {
		return
	}
	generation := s.generation
	s.timer = time.AfterFunc(s.aiDelay, func() {
		s.playOpponent(generation)
	})
}

func (s *Session) playOpponent(generation int) {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if s.gameOver || s.game.Turn() != s.opponent() {
		s.mu.Unlock()
		return
	}

	played, ok := s.game.PlayTurn(s.opponent())
	if ok {
		s.lastMove = &MoveInfo{
			Color:    s.opponent(),
			From:     &played.From,
			To:       played.To,
			Captured: len(played.Captured),
		}
		log.Debug().
			Str("session", s.ID).
			Str("to", played.To.String()).
			Int("captured", len(played.Captured)).
			Msg("Opponent move committed")
	} else {
		log.Debug().Str("session", s.ID).Msg("Opponent has no legal move")
	}
	s.recordWinnerLocked()
	state, notify := s.stateLocked(), s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(state)
	}
}

func (s *Session) recordWinnerLocked() {
	if s.gameOver {
		return
	}
	winner, ok := s.game.Winner()
	if !ok {
		return
	}

	s.gameOver = true
	s.winner = winner
	if winner == s.human {
		s.scoreboard.HumanWins++
	} else {
		s.scoreboard.OpponentWins++
	}
	log.Info().
		Str("session", s.ID).
		Str("winner", winner.String()).
		Int("humanWins", s.scoreboard.HumanWins).
		Int("opponentWins", s.scoreboard.OpponentWins).
		Msg("Game over")
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SessionStore manages active game sessions
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

func (st *SessionStore) Add(session *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID] = session
}

// Get retrieves a session by ID
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, exists := st.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session not found")
	}
	return session, nil
}

// Delete removes a session and cancels its pending work
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	session, exists := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if exists {
		session.Close()
	}
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CleanupExpired removes sessions idle for longer than ttl and returns how many
func (st *SessionStore) CleanupExpired(ttl time.Duration, now time.Time) int {
	st.mu.Lock()
	var expired []*Session
	for id, session := range st.sessions {
		if now.Sub(session.LastSeen()) > ttl {
			expired = append(expired, session)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	return len(expired)
}

// CloseAll cancels pending work in every session.
func (st *SessionStore) CloseAll() {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, session := range st.sessions {
		session.Close()
	}
}
