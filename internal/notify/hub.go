// Package notify pushes events to websocket subscribers. Delivery is best
// effort: a subscriber that cannot keep up misses events.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event types.
const (
	EventAnalyticsUpdated  = "analytics.updated"
	EventNarrativeUpdated  = "analytics.narrated"
	EventRecommendationNew = "transaction.recommendation"
)

// UserTopic is the topic every connection of a user is subscribed to.
func UserTopic(userID string) string { return "user:" + userID }

// TransactionTopic carries recommendation updates for one transaction.
func TransactionTopic(transactionID string) string { return "transaction:" + transactionID }

// Event is the message written to subscribers.
type Event struct {
	Type   string      `json:"type"`
	Topic  string      `json:"topic"`
	Data   interface{} `json:"data,omitempty"`
	SentAt time.Time   `json:"sent_at"`
}

// Publisher fans an event out to a topic.
type Publisher interface {
	Publish(topic, eventType string, data interface{})
}

// Authorizer decides whether userID may subscribe to topic.
type Authorizer func(userID, topic string) bool

// clientMessage is what subscribers send to change subscriptions.
type clientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Topic  string `json:"topic"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan Event
	topics map[string]struct{}
}

// Hub tracks websocket connections by topic.
type Hub struct {
	upgrader  websocket.Upgrader
	authorize Authorizer

	mu     sync.RWMutex
	topics map[string]map[*client]struct{}
}

// NewHub creates a hub. authorize may be nil, in which case only the
// caller's own user topic is allowed.
func NewHub(authorize Authorizer) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		authorize: authorize,
		topics:    make(map[string]map[*client]struct{}),
	}
}

// Publish delivers an event to every subscriber of topic without blocking.
func (h *Hub) Publish(topic, eventType string, data interface{}) {
	ev := Event{Type: eventType, Topic: topic, Data: data, SentAt: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[topic] {
		select {
		case c.send <- ev:
		default:
			logger.Named("notify").Warnw("Dropping event for slow subscriber", "topic", topic, "user_id", c.userID)
		}
	}
}

// Subscribers returns the number of connections subscribed to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Serve upgrades the request and keeps the connection until it closes. The
// connection starts subscribed to the user's own topic.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	log := logger.Named("notify")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("WebSocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		topics: make(map[string]struct{}),
	}
	h.subscribe(c, UserTopic(userID))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	log := logger.Named("notify")
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("WebSocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		switch msg.Action {
		case "subscribe":
			if !h.allowed(c.userID, msg.Topic) {
				log.Warnw("Subscription denied", "user_id", c.userID, "topic", msg.Topic)
				continue
			}
			h.subscribe(c, msg.Topic)
		case "unsubscribe":
			h.unsubscribe(c, msg.Topic)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) allowed(userID, topic string) bool {
	if topic == UserTopic(userID) {
		return true
	}
	return h.authorize != nil && h.authorize(userID, topic)
}

func (h *Hub) subscribe(c *client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	c.topics[topic] = struct{}{}
}

func (h *Hub) unsubscribe(c *client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(c, topic)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range c.topics {
		h.detach(c, topic)
	}
	close(c.send)
}

// detach must be called with h.mu held.
func (h *Hub) detach(c *client, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.topics, topic)
}

var _ Publisher = (*Hub)(nil)
