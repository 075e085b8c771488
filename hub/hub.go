package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cafe-tables/utils"
)

// Event types
const (
	EventTableCreate          = "table_create"
	EventTableUpdate          = "table_update"
	EventTableDelete          = "table_delete"
	EventTableProgress        = "table_progress"
	EventCustomerNotification = "customer_notification"
	EventDashboardUpdate      = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	id   string
	role string
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the connected dashboard clients (staff, admin) and fans every
// published message out to all of them. Each client has its own buffered
// queue drained by a writer goroutine, so Publish never waits on a socket.
type Hub struct {
	clients      map[*websocket.Conn]*client
	mutex        sync.Mutex
	WriteTimeout time.Duration
	SendBuffer   int
}

func New() *Hub {
	return &Hub{
		clients:      make(map[*websocket.Conn]*client),
		WriteTimeout: 5 * time.Second,
		SendBuffer:   64,
	}
}

// Register adds a connection, starts its writer and returns the id assigned
// to it.
func (h *Hub) Register(conn *websocket.Conn, role string) string {
	size := h.SendBuffer
	if size <= 0 {
		size = 1
	}
	c := &client{
		id:   uuid.NewString(),
		role: role,
		conn: conn,
		send: make(chan []byte, size),
	}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
	utils.InfoLogger.Printf("Hub client %s registered (role=%s)", c.id, role)
	return c.id
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

// drop must be called with the mutex held. Closing send stops the writer.
func (h *Hub) drop(conn *websocket.Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
		utils.InfoLogger.Printf("Hub client %s unregistered", c.id)
	}
	conn.Close()
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// writePump is the only goroutine writing to c.conn.
func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		if h.WriteTimeout > 0 {
			c.conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Errorf("Error sending to client %s: %v", c.id, err)
			h.Unregister(c.conn)
			break
		}
	}
	// Drain whatever was queued after a failed write until drop closes send.
	for range c.send {
	}
}

// Publish broadcasts an event. A nil hub discards it. A client whose queue
// is full is dropped instead of stalling the caller.
func (h *Hub) Publish(event string, data interface{}) {
	if h == nil {
		return
	}

	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.Errorf("Client %s is too slow for %s, dropping it", c.id, event)
			h.drop(conn)
		}
	}
}
