package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"libretrack/config"
	"libretrack/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	// pubsubChannel carries notifications between instances so a push
	// reaches the user no matter which node holds their connection.
	pubsubChannel = "libretrack:notifications"
)

// Event is the envelope sent over a notification socket.
type Event struct {
	Type      string               `json:"type"`
	Data      *models.Notification `json:"data,omitempty"`
	Timestamp int64                `json:"timestamp"`
}

// pubsubPayload is the cross-instance wire format.
type pubsubPayload struct {
	UserID       string               `json:"user_id"`
	Notification *models.Notification `json:"notification"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan *Event
	done   chan struct{}
}

// Hub fans freshly created notifications out to connected users. It
// implements services.Notifier.
type Hub struct {
	upgrader websocket.Upgrader
	jwt      *config.JWTService
	redis    *redis.Client
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[string][]*client // userID -> open connections
}

// NewHub creates a hub. redisClient may be nil; pushes then stay local
// to this instance.
func NewHub(jwtService *config.JWTService, redisClient *redis.Client, log *zap.Logger) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		jwt:     jwtService,
		redis:   redisClient,
		log:     log,
		clients: make(map[string][]*client),
	}
	if h.redis != nil {
		go h.subscribe()
	}
	return h
}

// Push delivers a notification to the user's open sockets. With Redis
// available it publishes instead, and the subscriber on each instance
// does the local delivery.
func (h *Hub) Push(userID string, n *models.Notification) {
	if h.redis != nil {
		payload, err := json.Marshal(pubsubPayload{UserID: userID, Notification: n})
		if err == nil && h.redis.Publish(context.Background(), pubsubChannel, payload).Err() == nil {
			return
		}
		// Fall through to local delivery when publishing fails.
	}
	h.deliver(userID, n)
}

func (h *Hub) deliver(userID string, n *models.Notification) {
	event := &Event{
		Type:      "notification",
		Data:      n,
		Timestamp: time.Now().Unix(),
	}

	h.mu.RLock()
	conns := h.clients[userID]
	h.mu.RUnlock()

	for _, cl := range conns {
		select {
		case cl.send <- event:
		default:
			// Slow consumer; skip rather than block the dispatcher.
		}
	}
}

// subscribe relays cross-instance pushes into local delivery.
func (h *Hub) subscribe() {
	sub := h.redis.Subscribe(context.Background(), pubsubChannel)
	for msg := range sub.Channel() {
		var payload pubsubPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.log.Warn("bad pubsub payload", zap.Error(err))
			continue
		}
		h.deliver(payload.UserID, payload.Notification)
	}
}

// HandleConnection upgrades an authenticated request to a notification
// socket. The bearer token comes from the Authorization header or the
// token query parameter (browsers cannot set ws headers).
func (h *Hub) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
	}
	claims, err := h.jwt.ValidateToken(trimBearer(token))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan *Event, 64),
		done:   make(chan struct{}),
	}
	h.register(cl)
	h.log.Info("notification socket opened", zap.String("user_id", cl.userID))

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl.userID] = append(h.clients[cl.userID], cl)
	h.mu.Unlock()
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	conns := h.clients[cl.userID]
	for i, other := range conns {
		if other == cl {
			h.clients[cl.userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[cl.userID]) == 0 {
		delete(h.clients, cl.userID)
	}
	h.mu.Unlock()

	// send stays open so a concurrent deliver can never panic; the
	// writer exits through done instead.
	close(cl.done)
	_ = cl.conn.Close()
}

// writePump pushes queued events and keeps the connection alive.
func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case event := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames until the client goes away.
func (h *Hub) readPump(cl *client) {
	defer h.unregister(cl)

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func trimBearer(s string) string {
	if len(s) > 7 && (s[:7] == "Bearer " || s[:7] == "bearer ") {
		return s[7:]
	}
	return s
}
