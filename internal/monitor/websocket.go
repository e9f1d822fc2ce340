package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "snipper/internal/log"
)

// WebSocketTransport broadcasts analyzed frames to connected clients with
// rate limiting to keep a burst of windows from flooding the network.
type WebSocketTransport struct {
	clients         map[*websocket.Conn]bool
	clientsMutex    sync.Mutex
	upgrader        websocket.Upgrader
	server          *http.Server
	lastSend        time.Time
	minSendInterval time.Duration
}

// NewWebSocketTransport starts an HTTP server on the given port serving
// WebSocket upgrades on /spectra and returns the transport. The server
// runs in its own goroutine until Close.
func NewWebSocketTransport(port string) *WebSocketTransport {
	t := &WebSocketTransport{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local diagnostics, any origin
			},
		},
		minSendInterval: 33 * time.Millisecond, // ~30 frames/s
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/spectra", t.handleWebSocket)
	t.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("spectra WebSocket server listening on port %s", port)
		if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("WebSocket server error: %v", err)
		}
	}()

	return t
}

func (t *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocket upgrade error: %v", err)
		return
	}

	t.clientsMutex.Lock()
	t.clients[conn] = true
	t.clientsMutex.Unlock()

	// Drain reads to notice disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.clientsMutex.Lock()
				delete(t.clients, conn)
				t.clientsMutex.Unlock()
				conn.Close()
				break
			}
		}
	}()
}

// Send broadcasts one frame to all connected clients. Frames exceeding
// the rate limit are dropped silently.
func (t *WebSocketTransport) Send(frame Frame) error {
	now := time.Now()
	if now.Sub(t.lastSend) < t.minSendInterval {
		return nil
	}
	t.lastSend = now

	jsonData, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	t.clientsMutex.Lock()
	for client := range t.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			client.Close()
			delete(t.clients, client)
		}
	}
	t.clientsMutex.Unlock()

	return nil
}

// Close disconnects all clients and shuts the HTTP server down.
// Safe to call more than once.
func (t *WebSocketTransport) Close() error {
	t.clientsMutex.Lock()
	for client := range t.clients {
		client.Close()
		delete(t.clients, client)
	}
	t.clientsMutex.Unlock()

	return t.server.Close()
}
