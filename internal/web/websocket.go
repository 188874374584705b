package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/justinabrahms/checkers/internal/checkers"
	"github.com/rs/zerolog/log"
)

// WebSocket upgrader with reasonable settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Registered clients by session ID
	sessionClients map[string]map[*Client]bool

	broadcast  chan GameUpdate
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// Client represents a WebSocket connection
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *Session
}

// GameUpdate represents an update to broadcast
type GameUpdate struct {
	SessionID string      `json:"sessionId"`
	Type      string      `json:"type"` // "state"
	Data      interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessionClients: make(map[string]map[*Client]bool),
		broadcast:      make(chan GameUpdate, 64),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
	}
}

// Run starts the hub's main event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.sessionClients[client.session.ID] == nil {
				h.sessionClients[client.session.ID] = make(map[*Client]bool)
			}
			h.sessionClients[client.session.ID][client] = true
			h.mu.Unlock()

			log.Info().Str("session", client.session.ID).Msg("Client connected")

		case client := <-h.unregister:
			h.remove(client)
			log.Info().Str("session", client.session.ID).Msg("Client disconnected")

		case update := <-h.broadcast:
			message, err := json.Marshal(update)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal game update")
				continue
			}

			h.mu.RLock()
			var slow []*Client
			for client := range h.sessionClients[update.SessionID] {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// Client's send channel is full, drop it
			for _, client := range slow {
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessionClients[client.session.ID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.send)

		if len(clients) == 0 {
			delete(h.sessionClients, client.session.ID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.sessionClients {
		for client := range clients {
			close(client.send)
		}
		delete(h.sessionClients, id)
	}
}

// Clients returns how many connections watch a session
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionClients[sessionID])
}

// BroadcastGameUpdate sends an update to all clients of a session
func (h *Hub) BroadcastGameUpdate(update GameUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Warn().Str("session", update.SessionID).Msg("Broadcast channel full, dropping update")
	}
}

type clientMessage struct {
	Type string `json:"type"` // "state" or "select"
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// WebSocketHandler handles WebSocket upgrade requests for the caller's session
func (s *Service) WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.session(w, r)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve session")
			http.Error(w, "Failed to start session", http.StatusInternalServerError)
			return
		}

		// Upgrade only writes the headers passed to it, so a cookie for a
		// freshly created session has to travel this way
		responseHeader := http.Header{}
		if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
			responseHeader["Set-Cookie"] = cookies
		}

		conn, err := upgrader.Upgrade(w, r, responseHeader)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
			return
		}

		client := &Client{
			hub:     hub,
			conn:    conn,
			send:    make(chan []byte, 256),
			session: session,
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		hub.BroadcastGameUpdate(GameUpdate{SessionID: session.ID, Type: "state", Data: session.State()})
	}
}

// readPump handles incoming messages from the WebSocket
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "state":
			c.hub.BroadcastGameUpdate(GameUpdate{SessionID: c.session.ID, Type: "state", Data: c.session.State()})
		case "select":
			// state changes reach this client through the session's broadcast
			if _, err := c.session.Select(checkers.Coordinate{Row: msg.Row, Col: msg.Col}); err != nil {
				log.Debug().Err(err).Str("session", c.session.ID).Msg("Rejected select")
			}
		}
	}
}

// writePump handles sending messages to the WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
