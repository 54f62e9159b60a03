// Package live fans simulated consumer positions out to WebSocket clients.
package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"nearby-route-service/internal/domain"
)

const (
	writeTimeout = 5 * time.Second
	// Frames queued per client before it is considered too slow and dropped.
	sendBuffer = 8
)

type ConsumerPosition struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
	Moving     bool    `json:"moving"`
}

// PositionsMessage is the frame pushed to clients after every tick.
type PositionsMessage struct {
	Type      string             `json:"type"`
	Version   uint64             `json:"version"`
	Consumers []ConsumerPosition `json:"consumers"`
}

func NewPositionsMessage(r domain.Roster) PositionsMessage {
	msg := PositionsMessage{
		Type:      "positions",
		Version:   r.Version,
		Consumers: make([]ConsumerPosition, 0, len(r.Consumers)),
	}
	for _, c := range r.Consumers {
		msg.Consumers = append(msg.Consumers, ConsumerPosition{
			ID:         c.ID,
			Lat:        c.Coords.Lat,
			Lon:        c.Coords.Lon,
			DistanceKm: c.DistanceKm,
			Moving:     c.IsMoving(),
		})
	}
	return msg
}

// Hub keeps connected clients and broadcasts roster snapshots to them.
// It implements ports.PositionSink.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	current func() domain.Roster
}

// client owns one connection. Frames go through out and are written by the
// connection's own goroutine, so a slow socket never blocks a publisher.
type client struct {
	conn *websocket.Conn
	out  chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, out: make(chan []byte, sendBuffer)}
}

// enqueue reports false when the client's buffer is full.
func (c *client) enqueue(b []byte) bool {
	select {
	case c.out <- b:
		return true
	default:
		return false
	}
}

func (c *client) write(ctx context.Context, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, b)
}

// NewHub creates a hub. current, when set, supplies the roster sent to a
// client right after it connects.
func NewHub(current func() domain.Roster) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		current: current,
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishPositions queues a roster snapshot for every client without
// waiting on the network. Clients whose queue is full are dropped from the
// hub; that is not an error for the caller.
func (h *Hub) PublishPositions(_ context.Context, roster domain.Roster) error {
	b, err := json.Marshal(NewPositionsMessage(roster))
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(b) {
			log.Printf("live: drop slow client: buffered=%d", sendBuffer)
			h.remove(c)
			c.conn.CloseNow()
		}
	}
	return nil
}

// ServeHTTP upgrades the request and streams positions until the client
// goes away. A data frame from the client closes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("live: accept failed: err=%v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")
	conn.SetReadLimit(1 << 16)

	c := newClient(conn)
	ctx := conn.CloseRead(r.Context())

	if h.current != nil {
		if b, err := json.Marshal(NewPositionsMessage(h.current())); err == nil {
			if err := c.write(ctx, b); err != nil {
				return
			}
		}
	}

	h.add(c)
	defer h.remove(c)

	for {
		select {
		case <-ctx.Done():
			return
		case b := <-c.out:
			if err := c.write(ctx, b); err != nil {
				log.Printf("live: write failed: err=%v", err)
				return
			}
		}
	}
}
