package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"parking-reservations/internal/logging"
	"parking-reservations/internal/parking"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type SpotsMessage struct {
	Type  string         `json:"type"`
	Spots []parking.Spot `json:"spots"`
}

// Hub fans registry changes out to connected websocket clients. All writes
// to client connections happen on the Run goroutine.
type Hub struct {
	snapshot   func() parking.Registry
	clients    map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub(snapshot func() parking.Registry) *Hub {
	return &Hub{
		snapshot:   snapshot,
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			logging.Debug(ctx, "websocket client connected", "clients", h.ClientCount())

			if msg, err := encodeSpots(h.snapshot()); err == nil {
				h.write(ctx, client, msg)
			}

		case client := <-h.unregister:
			h.remove(client)
			logging.Debug(ctx, "websocket client disconnected", "clients", h.ClientCount())

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				h.write(ctx, client, msg)
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, client *websocket.Conn, msg []byte) {
	client.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
		logging.Warn(ctx, "websocket write failed", "error", err)
		h.remove(client)
	}
}

func (h *Hub) remove(client *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues reg for every client. When the queue is full the update
// is dropped; the next change carries the full list anyway.
func (h *Hub) Publish(reg parking.Registry) {
	msg, err := encodeSpots(reg)
	if err != nil {
		logging.Error(context.Background(), "failed to encode spots message", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn(context.Background(), "websocket broadcast queue full, dropping update")
	}
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	// Clients only listen; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func encodeSpots(reg parking.Registry) ([]byte, error) {
	return json.Marshal(SpotsMessage{Type: "spots", Spots: reg.List()})
}
