package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinabrahms/checkers/internal/auth"
	"github.com/justinabrahms/checkers/internal/checkers"
	"github.com/justinabrahms/checkers/internal/config"
	"github.com/rs/zerolog/log"
)

const sessionCookie = "checkers_session"

type Service struct {
	config   *config.Config
	tokens   *auth.TokenIssuer
	sessions *SessionStore
	hub      *Hub
}

func NewService(config *config.Config, tokens *auth.TokenIssuer, hub *Hub) *Service {
	return &Service{
		config:   config,
		tokens:   tokens,
		sessions: NewSessionStore(),
		hub:      hub,
	}
}

// RegisterRoutes mounts the API under /api. OPTIONS is listed on every route so
// preflight requests match and reach CORSMiddleware.
func (s *Service) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET", "OPTIONS")
	api.HandleFunc("/game", s.GetGameHandler).Methods("GET", "OPTIONS")
	api.HandleFunc("/game/select", s.SelectHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/game/click", s.ClickHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/game/reset", s.ResetHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/ws", s.WebSocketHandler(s.hub)).Methods("GET")
}

// CORSMiddleware allows the static front end to be served from another origin.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// session resolves the caller's session from its token cookie, starting a new
// game when the token is missing, invalid or refers to an expired session.
func (s *Service) session(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if id, err := s.tokens.Verify(cookie.Value); err == nil {
			if session, err := s.sessions.Get(id); err == nil {
				session.Touch()
				return session, nil
			}
		} else {
			log.Debug().Err(err).Msg("Discarding session token")
		}
	}

	session := NewSession(s.config.HumanColor(), s.config.Game.AIDelay, s.config.Game.Seed)
	session.OnChange(func(state GameState) {
		s.hub.BroadcastGameUpdate(GameUpdate{SessionID: state.SessionID, Type: "state", Data: state})
	})

	token, err := s.tokens.Issue(session.ID)
	if err != nil {
		session.Close()
		return nil, err
	}
	s.sessions.Add(session)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info().Str("session", session.ID).Msg("Session created")
	return session, nil
}

// RunJanitor drops idle sessions every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessions.CleanupExpired(s.tokens.TTL(), now); n > 0 {
				log.Info().Int("expired", n).Msg("Removed idle sessions")
			}
		}
	}
}

// Close cancels every pending opponent move.
func (s *Service) Close() {
	s.sessions.CloseAll()
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, session.State())
}

type SelectRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type ClickRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type SelectResponse struct {
	Selected bool      `json:"selected"`
	State    GameState `json:"state"`
}

func (s *Service) SelectHandler(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Row == nil || req.Col == nil {
		http.Error(w, "row and col are required", http.StatusBadRequest)
		return
	}

	square := checkers.Coordinate{Row: *req.Row, Col: *req.Col}
	if !square.Valid() {
		http.Error(w, "Square is off the board", http.StatusBadRequest)
		return
	}

	s.selectSquare(w, r, square)
}

// ClickHandler accepts raw pointer coordinates; clicks outside the board are ignored.
func (s *Service) ClickHandler(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	square, ok := SquareAt(req.X, req.Y)
	if !ok {
		session, err := s.session(w, r)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve session")
			http.Error(w, "Failed to start session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, SelectResponse{Selected: false, State: session.State()})
		return
	}

	s.selectSquare(w, r, square)
}

func (s *Service) selectSquare(w http.ResponseWriter, r *http.Request, square checkers.Coordinate) {
	session, err := s.session(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	selected, err := session.Select(square)
	if err != nil {
		if errors.Is(err, ErrNotYourTurn) || errors.Is(err, ErrGameOver) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, SelectResponse{Selected: selected, State: session.State()})
}

// ResetHandler starts a new game in the caller's session, keeping the scoreboard.
func (s *Service) ResetHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	session.Reset()
	writeJSON(w, http.StatusOK, session.State())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
