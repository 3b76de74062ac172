package httpadapter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/svelte-expert/internal/observability"
)

const (
	writeWait = 10 * time.Second
	sendQueue = 16
)

// Hub is the panel surface of the browser: every SetHTML is pushed to all
// connected websocket clients. It reports disposal when the last client
// leaves.
type Hub struct {
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	html      string
	onDispose func()
}

type client struct {
	conn *websocket.Conn
	send chan string
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// The panel is served from the same origin on localhost.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) SetHTML(html string) {
	h.mu.Lock()
	h.html = html
	var dispose func()
	for c := range h.clients {
		select {
		case c.send <- html:
		default:
			// Slow client: drop it rather than block the panel.
			if fn := h.dropLocked(c); fn != nil {
				dispose = fn
			}
		}
	}
	h.mu.Unlock()

	// The panel calls SetHTML while holding its own lock, and its dispose
	// hook takes that lock.
	if dispose != nil {
		go dispose()
	}
}

func (h *Hub) Reveal() {
	observability.Logger().Debug("panel revealed", "clients", h.Clients())
}

func (h *Hub) OnDispose(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDispose = fn
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// serveWS upgrades the request and streams panel documents until the client
// goes away.
func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	log := observability.LoggerFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan string, sendQueue)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.html != "" {
		c.send <- h.html
	}
	h.mu.Unlock()
	log.Info("panel client connected")

	go h.writeLoop(c)

	// Reads only detect the close; the panel posts messages over HTTP.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.leave(c)
	log.Info("panel client disconnected")
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for html := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(html)); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	var dispose func()
	if _, ok := h.clients[c]; ok {
		dispose = h.dropLocked(c)
	}
	h.mu.Unlock()

	// Called outside the lock: the panel takes its own lock.
	if dispose != nil {
		dispose()
	}
}

// dropLocked disconnects c and returns the dispose hook when c was the last
// client. h.mu must be held.
func (h *Hub) dropLocked(c *client) func() {
	close(c.send)
	delete(h.clients, c)
	if len(h.clients) > 0 {
		return nil
	}
	dispose := h.onDispose
	h.onDispose = nil
	return dispose
}
