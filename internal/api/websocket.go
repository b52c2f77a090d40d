package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"dodger/internal/sim"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// inputMessage is the directional intent a viewer client sends for the
// player: per-axis components in {-1, 0, +1}.
type inputMessage struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// It broadcasts one state snapshot per tick and feeds client input
// messages into the engine.
type WebSocketHub struct {
	engine EngineInterface

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	// Connection limiting per IP
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		engine:     engine,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run starts the hub loop; call it in its own goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					// Reader goroutine will unregister on its next read error
					conn.Close()
					continue
				}
				IncrementWSMessages()
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastSnapshot queues a snapshot for all connected clients. Drops
// the frame when the broadcast buffer is full rather than stalling the
// tick.
func (h *WebSocketHub) BroadcastSnapshot(snap *sim.Snapshot) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("⚠️ Snapshot marshal failed: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// Slow consumers: skip this tick's frame
	}
}

// HandleWebSocket upgrades an HTTP request into a hub connection.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	total := len(h.clients)
	h.mu.RUnlock()
	if total >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	ip := GetClientIP(r)
	if !h.wsLimiter.Allow(ip) {
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from this address", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.wsLimiter.Release(ip)
		log.Printf("⚠️ WebSocket upgrade failed: %v", err)
		return
	}

	h.register <- &wsClient{conn: conn, ip: ip}
	go h.readPump(conn)
}

// readPump consumes input messages from one client until it disconnects.
func (h *WebSocketHub) readPump(conn *websocket.Conn) {
	defer func() {
		h.unregister <- conn
	}()

	conn.SetReadLimit(512)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue // Ignore malformed frames
		}
		h.engine.SetPlayerInput(msg.DX, msg.DY)
	}
}
