package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
)

// Feed topics
const (
	TopicFeed = "feed"
)

// Client represents a WebSocket subscriber
type Client struct {
	Topic string
	Conn  *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// trySend queues a message without blocking. It reports false when the
// buffer is full or the client is already closed, so callers treat
// either case as a slow or gone consumer.
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound channel exactly once. Unregistration
// and slow-consumer eviction both funnel through here, so a late send
// from the reader loop can never hit a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub maintains active WebSocket connections grouped by topic and
// pushes note and gallery events to every live subscriber.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	Topic   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()
			logger.Debug("feed client registered", logger.String("topic", client.Topic))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.closeSend()
					if len(clients) == 0 {
						delete(h.clients, client.Topic)
					}
				}
			}
			h.mu.Unlock()
			logger.Debug("feed client unregistered", logger.String("topic", client.Topic))

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.Topic]; ok {
				for client := range clients {
					if !client.trySend(msg.Message) {
						client.closeSend()
						delete(clients, client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastNoteCreated pushes a freshly appended note to every feed
// subscriber.
func (h *Hub) BroadcastNoteCreated(note *model.Note) {
	msg := model.WSNoteMessage{
		Type: model.WSMessageTypeNoteCreated,
		Note: note,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal note message", logger.Err(err))
		return
	}

	h.broadcast <- &BroadcastMessage{Topic: TopicFeed, Message: data}
}

// BroadcastGalleryUpdated tells subscribers a new callback record
// arrived and the gallery should be re-read.
func (h *Hub) BroadcastGalleryUpdated(receivedAt time.Time, trackCount int) {
	msg := model.WSGalleryMessage{
		Type:       model.WSMessageTypeGalleryUpdated,
		ReceivedAt: receivedAt,
		TrackCount: trackCount,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal gallery message", logger.Err(err))
		return
	}

	h.broadcast <- &BroadcastMessage{Topic: TopicFeed, Message: data}
}

// HandleConnection handles a WebSocket connection for one topic.
func (h *Hub) HandleConnection(c *websocket.Conn, topic string) {
	client := &Client{
		Topic: topic,
		Conn:  c,
		send:  make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Keep-alive ping
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("websocket closed", logger.Err(err))
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.trySend(data)
		}
	}
}
