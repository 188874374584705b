package web

import (
	"sort"

	"github.com/justinabrahms/checkers/internal/checkers"
)

// GameState is what the front end renders
type GameState struct {
	SessionID  string                 `json:"sessionId"`
	Position   string                 `json:"position"`
	Turn       checkers.Color         `json:"turn"`
	HumanColor checkers.Color         `json:"humanColor"`
	Selected   *checkers.Coordinate   `json:"selected,omitempty"`
	ValidMoves []MoveOption           `json:"validMoves"`
	GameOver   bool                   `json:"gameOver"`
	Winner     *checkers.Color        `json:"winner,omitempty"`
	Scoreboard Scoreboard             `json:"scoreboard"`
	Material   checkers.MaterialCount `json:"material"`
	LastMove   *MoveInfo              `json:"lastMove,omitempty"`
}

// MoveOption is one highlighted destination of the selected piece
type MoveOption struct {
	Row      int                   `json:"row"`
	Col      int                   `json:"col"`
	Captures []checkers.Coordinate `json:"captures"`
}

// MoveInfo describes the last committed move
type MoveInfo struct {
	Color    checkers.Color       `json:"color"`
	From     *checkers.Coordinate `json:"from,omitempty"`
	To       checkers.Coordinate  `json:"to"`
	Captured int                  `json:"captured"`
}

func (s *Session) stateLocked() GameState {
	state := GameState{
		SessionID:  s.ID,
		Position:   s.game.Board().String(),
		Turn:       s.game.Turn(),
		HumanColor: s.human,
		ValidMoves: []MoveOption{},
		GameOver:   s.gameOver,
		Scoreboard: s.scoreboard,
		Material:   s.game.Board().Material(),
		LastMove:   s.lastMove,
	}

	if piece := s.game.Selected(); piece != nil {
		position := piece.Position()
		state.Selected = &position
	}

	for to, captured := range s.game.ValidMoves() {
		option := MoveOption{Row: to.Row, Col: to.Col, Captures: []checkers.Coordinate{}}
		for _, p := range captured {
			option.Captures = append(option.Captures, p.Position())
		}
		state.ValidMoves = append(state.ValidMoves, option)
	}
	sort.Slice(state.ValidMoves, func(i, j int) bool {
		a, b := state.ValidMoves[i], state.ValidMoves[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})

	if s.gameOver {
		winner := s.winner
		state.Winner = &winner
	}
	return state
}
