// Package websocket streams autosave status events to connected editors.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"invoicer/internal/autosave"
	"invoicer/internal/config"
	"invoicer/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBuffer = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS layer for the API; the stream only
	// carries save status
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected editor. A client with a session only receives
// events for that session.
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Session string
}

type message struct {
	session string
	payload []byte
}

// Hub fans autosave events out to clients. It implements autosave.Reporter.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// Report queues an event for broadcast. Events are dropped when the queue
// is full so a slow hub never stalls a save.
func (h *Hub) Report(e autosave.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		h.log.Error("failed to encode autosave event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{session: e.Session, payload: payload}:
	default:
		h.log.Warn("dropping autosave event", zap.String("session", e.Session), zap.String("status", string(e.Status)))
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run dispatches until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("client connected", zap.String("session", client.Session))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug("client disconnected", zap.String("session", client.Session))
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.Session != "" && client.Session != msg.session {
					continue
				}
				select {
				case client.Send <- msg.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for payload := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump only watches for the peer going away
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs upgrades the request. With auth enabled the token query parameter
// must carry a valid JWT.
func ServeWs(hub *Hub, c *gin.Context, auth config.AuthConfig) {
	if auth.Enabled {
		tokenString := c.Query("token")
		if tokenString == "" {
			hub.log.Info("websocket connection rejected: missing token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if _, err := middleware.ParseToken(tokenString, []byte(auth.JWTSecret)); err != nil {
			hub.log.Info("websocket connection rejected: invalid token", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, sendBuffer), Session: c.Query("session")}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
