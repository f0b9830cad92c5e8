// Package ws serves a WebSocket feed of order lifecycle events for dashboard
// clients. Delivery is best-effort; slow clients are dropped rather than
// allowed to block a request.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/pkg/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard is served from another origin in development.
		return true
	},
}

// FeedEvent is the message written to connected clients. Order is nil for
// deletions.
type FeedEvent struct {
	Type      string        `json:"type"`
	OrderID   string        `json:"order_id"`
	Order     *models.Order `json:"order,omitempty"`
	Timestamp string        `json:"timestamp"`
}

type Hub struct {
	clients    map[*client]bool
	broadcast  chan FeedEvent
	register   chan *client
	unregister chan *client
	mutex      sync.RWMutex
	logger     *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan FeedEvent, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			h.mutex.Unlock()
			h.logger.WithField("client_count", len(h.clients)).Info("Feed client connected")

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			h.logger.WithField("client_count", len(h.clients)).Info("Feed client disconnected")

		case event := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- event:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// OrderCreated, OrderUpdated and OrderDeleted make the hub an event sink for
// the order service.

func (h *Hub) OrderCreated(o *models.Order) {
	h.publish(FeedEvent{Type: "order_created", OrderID: o.ID, Order: o})
}

func (h *Hub) OrderUpdated(o *models.Order) {
	h.publish(FeedEvent{Type: "order_updated", OrderID: o.ID, Order: o})
}

func (h *Hub) OrderDeleted(id string) {
	h.publish(FeedEvent{Type: "order_deleted", OrderID: id})
}

func (h *Hub) publish(event FeedEvent) {
	event.Timestamp = time.Now().Format(time.RFC3339)

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Feed broadcast channel full, dropping event")
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade to WebSocket")
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan FeedEvent, 256),
		hub:    h,
		logger: h.logger,
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}
