package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"giveaway/internal/models"
	"giveaway/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// WSMessage is one frame sent to the admin page.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wsClient struct {
	conn        *websocket.Conn
	send        chan []byte
	clientID    string
	connectedAt time.Time
}

type directMessage struct {
	client *wsClient
	data   []byte
}

// Hub fans toasts and live participant lists out to connected admin pages.
// It implements notify.Sink.
type Hub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	direct     chan directMessage
	done       chan struct{}
	mu         sync.RWMutex
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Infof("Admin websocket %s connected (%d open)", client.clientID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Infof("Admin websocket %s disconnected after %s", client.clientID, time.Since(client.connectedAt).Round(time.Second))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				h.deliver(client, data)
			}
			h.mu.RUnlock()

		case msg := <-h.direct:
			h.mu.RLock()
			if h.clients[msg.client] {
				h.deliver(msg.client, msg.data)
			}
			h.mu.RUnlock()
		}
	}
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(client *wsClient, data []byte) {
	select {
	case client.send <- data:
	default:
		// A client this far behind gets disconnected.
		go func(c *wsClient) {
			h.leave(c)
			c.conn.Close()
		}(client)
	}
}

func (h *Hub) join(client *wsClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *wsClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(msgType string, data any) {
	frame, err := encodeFrame(msgType, data)
	if err != nil {
		logger.Errorf("Failed to encode %s broadcast: %v", msgType, err)
		return
	}
	select {
	case h.broadcast <- frame:
	default:
		logger.Warningf("Websocket broadcast queue full, %s dropped", msgType)
	}
}

// Notify sends a toast to every admin page.
func (h *Hub) Notify(t notify.Toast) {
	h.Broadcast("toast", t)
}

var _ notify.Sink = (*Hub)(nil)

func (h *Hub) sendTo(client *wsClient, msgType string, data any) {
	frame, err := encodeFrame(msgType, data)
	if err != nil {
		logger.Errorf("Failed to encode %s message: %v", msgType, err)
		return
	}
	select {
	case h.direct <- directMessage{client: client, data: frame}:
	default:
		logger.Warningf("Websocket direct queue full, %s for %s dropped", msgType, client.clientID)
	}
}

func encodeFrame(msgType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, Data: raw})
}

// AdminWebSocket keeps an admin page in sync: it receives the participant
// list, filtered by the query, on every change and every toast.
func (h *HTTPHandler) AdminWebSocket(c *gin.Context) {
	if h.Hub == nil {
		errorJSON(c, http.StatusServiceUnavailable, "live updates are disabled")
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("Failed to upgrade to websocket: %v", err)
		return
	}

	client := &wsClient{
		conn:        conn,
		send:        make(chan []byte, 256),
		clientID:    uuid.NewString(),
		connectedAt: time.Now(),
	}
	if !h.Hub.join(client) {
		conn.Close()
		return
	}
	go client.writePump()

	sub, err := h.Participants.Watch(filterFromQuery(c), func(list []models.Participant) {
		h.Hub.sendTo(client, "participants", list)
	})
	if err != nil {
		logger.Errorf("Failed to watch participants for %s: %v", client.clientID, err)
		h.Hub.sendTo(client, "toast", notify.Fail("Live participant list is unavailable"))
	}

	client.readPump()

	// The subscription goes first so no snapshot targets a dropped client.
	if sub != nil {
		sub.Close()
	}
	h.Hub.leave(client)
	conn.Close()
}

func (c *wsClient) readPump() {
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warningf("Websocket %s read error: %v", c.clientID, err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
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
