package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Hub fans clinic events out to every connection registered under that clinic.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.Mutex
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

type Client struct {
	clinicID string
	userID   string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	once     sync.Once
}

func NewHub(logger zerolog.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: logger.With().Str("component", "ws").Logger(),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info().Msg("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.log.Info().Msg("websocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			if _, ok := h.clients[client.clinicID]; !ok {
				h.clients[client.clinicID] = make(map[*Client]bool)
			}
			h.clients[client.clinicID][client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client)
			h.mutex.Unlock()

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error().Err(err).Str("type", ev.Type).Msg("failed to marshal event")
				continue
			}
			h.mutex.Lock()
			for client := range h.clients[ev.ClinicID] {
				select {
				case client.send <- data:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// remove must be called with h.mutex held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.clinicID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.send)
		if len(clients) == 0 {
			delete(h.clients, client.clinicID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Publish queues ev for delivery. It never blocks the caller; events are
// dropped when the queue is full.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn().Str("type", ev.Type).Str("clinic_id", ev.ClinicID).Msg("event queue full, dropping")
	}
}

// ConnectionCount returns the number of live connections for a clinic.
func (h *Hub) ConnectionCount(clinicID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[clinicID])
}

// Serve upgrades the request and streams the clinic's events to it. The caller
// must have authenticated the user already.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, clinicID, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		clinicID: clinicID,
		userID:   userID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		hub:      h,
	}
	welcome, _ := json.Marshal(Event{
		Type:      EventWelcome,
		ClinicID:  clinicID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	})
	client.send <- welcome

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) leave() {
	c.once.Do(func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.leave()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; clients do not send data.
func (c *Client) readPump() {
	defer c.leave()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
