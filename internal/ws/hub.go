package ws

import (
	"log"
	"net/http"
	"sync"

	"filmsoc-backend/internal/lifecycle"
	"filmsoc-backend/internal/metrics"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes lifecycle updates to connected browsers so the inventory
// page reflects checkouts without polling. It implements
// lifecycle.Notifier.
type Hub struct {
	clientsMux sync.Mutex
	clients    map[*websocket.Conn]bool
	broadcast  chan lifecycle.Update
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan lifecycle.Update, 64),
	}
}

// Run drains the broadcast channel and fans updates out to clients.
// Start it once in its own goroutine.
func (h *Hub) Run() {
	for update := range h.broadcast {
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(update); err != nil {
				client.Close()
				delete(h.clients, client)
				metrics.WSClientsConnected.Dec()
			}
		}
		h.clientsMux.Unlock()
	}
}

// Notify queues an update for broadcast; drops when the channel is
// full rather than blocking a lifecycle transition
func (h *Hub) Notify(update lifecycle.Update) {
	select {
	case h.broadcast <- update:
	default:
		log.Printf("[WS] Broadcast buffer full, dropping update for %s", update.EquipmentID)
	}
}

// HandleWebSocket upgrades the connection and keeps it registered
// until the client goes away
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()
	metrics.WSClientsConnected.Inc()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			metrics.WSClientsConnected.Dec()
			break
		}
	}
}
