package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
)

// Hub fans reservation lifecycle events out to connected dashboards.
// Slow clients are dropped rather than allowed to back-pressure the
// booking path.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu  sync.RWMutex
	log *zap.Logger
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ReservationUpdate is the wire shape pushed to dashboards.
type ReservationUpdate struct {
	Event         string    `json:"event"`
	ReservationID string    `json:"reservation_id"`
	Code          string    `json:"code"`
	StationID     string    `json:"station_id"`
	PortID        string    `json:"port_id"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ReservationEvent implements the booking service's event sink.
func (h *Hub) ReservationEvent(event string, res *domain.Reservation) {
	update := ReservationUpdate{
		Event:         event,
		ReservationID: res.ID,
		Code:          res.Code,
		StationID:     res.StationID,
		PortID:        res.PortID,
		Status:        string(res.Status),
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
	}
	data, err := json.Marshal(update)
	if err != nil {
		h.log.Error("marshal reservation update", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("broadcast buffer full, dropping update",
			zap.String("reservation_id", res.ID),
		)
	}
}

func (h *Hub) AddClient(conn *websocket.Conn) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Dashboards never send data; the loop only services control
		// frames and detects the close.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		// Drain whatever else is queued into the same frame batch.
		n := len(c.send)
		for i := 0; i < n; i++ {
			w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
