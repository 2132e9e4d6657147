package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mudra/internal/gesture"
)

const (
	eventBuffer  = 64
	writeTimeout = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Event is one message on the /api/events feed.
type Event struct {
	Pose       string             `json:"pose"`
	Predicates gesture.Predicates `json:"predicates"`
	Action     *EventAction       `json:"action"`
	Timestamp  int64              `json:"timestamp"`
}

// EventAction is the action carried by an Event.
type EventAction struct {
	Kind   string `json:"kind"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Amount int    `json:"amount"`
}

// EventHub fans machine decisions out to websocket clients. Only decisions
// that change the pose or carry an action are sent. Publish never blocks;
// events are dropped when the queue is full.
type EventHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	pubMu    sync.Mutex
	lastPose gesture.Pose
	dropped  int

	events chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewEventHub creates a hub and starts its broadcast goroutine.
func NewEventHub() *EventHub {
	h := &EventHub{
		clients:  make(map[*websocket.Conn]bool),
		lastPose: gesture.PoseAbsent,
		events:   make(chan []byte, eventBuffer),
		done:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// Publish queues d for the connected clients. Its signature matches
// app.DecisionListener.
func (h *EventHub) Publish(d gesture.Decision, at time.Time) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	if d.Pose == h.lastPose && d.Action == nil {
		return
	}
	h.lastPose = d.Pose

	ev := Event{
		Pose:       d.Pose.String(),
		Predicates: d.Predicates,
		Timestamp:  at.UnixMilli(),
	}
	if d.Action != nil {
		ev.Action = &EventAction{Kind: d.Action.Kind.String(), X: d.Action.X, Y: d.Action.Y, Amount: d.Action.Amount}
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode event")
		return
	}

	select {
	case h.events <- msg:
	default:
		h.dropped++
		if h.dropped%100 == 1 {
			log.Debug().Int("dropped", h.dropped).Msg("event queue full")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast goroutine and disconnects all clients.
func (h *EventHub) Close() {
	h.once.Do(func() {
		close(h.done)

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.clients = make(map[*websocket.Conn]bool)
		h.mu.Unlock()
	})
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast is the only writer on client connections.
func (h *EventHub) broadcast() {
	for {
		var msg []byte
		select {
		case <-h.done:
			return
		case msg = <-h.events:
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
