package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 8
	maxMessageSize = 512 // inbound frames are ignored, keep them tiny
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts newly cached bundles to connected websocket clients. A
// slow client is dropped rather than allowed to block the broadcast.
type Hub struct {
	log *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/bundles", h.serve)
}

func (h *Hub) serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("websocket client connected", logger.Int("clients", count))

	go h.writeLoop(cl)
	go h.readLoop(cl)
	return nil
}

// BroadcastBundle pushes a bundle to every connected client. Wired as the
// orchestrator's on-cached callback.
func (h *Hub) BroadcastBundle(bundle *models.DailyBundle) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		h.log.Error("bundle broadcast encode failed", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- payload:
		default:
			// Client cannot keep up; cut it loose.
			delete(h.clients, cl)
			close(cl.send)
		}
	}
}

func (h *Hub) writeLoop(cl *client) {
	defer cl.conn.Close()
	for payload := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(cl)
			return
		}
	}
	_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
}

// readLoop discards inbound frames; it exists to observe the close.
func (h *Hub) readLoop(cl *client) {
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.drop(cl)
			return
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
