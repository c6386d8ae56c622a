package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/betbot/matchscreener/internal/services"
	"github.com/betbot/matchscreener/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The screener UI is served from anywhere on the local network.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// hub fans engine change notifications out to connected WebSocket clients.
// Each client gets a one-slot mailbox: if it cannot keep up, intermediate
// snapshots are dropped and only the latest is delivered.
type hub struct {
	engine *services.Engine

	mu      sync.Mutex
	clients map[chan services.Snapshot]struct{}
}

func newHub(engine *services.Engine) *hub {
	return &hub{
		engine:  engine,
		clients: make(map[chan services.Snapshot]struct{}),
	}
}

func (h *hub) start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.engine.Changed():
				h.broadcast(h.engine.Snapshot())
			}
		}
	}()
}

func (h *hub) broadcast(snap services.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- snap:
		default:
			// mailbox full: replace the stale snapshot with the fresh one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (h *hub) subscribe() chan services.Snapshot {
	ch := make(chan services.Snapshot, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan services.Snapshot) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	// drain client frames so control messages are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// initial snapshot so the client renders without waiting for a change
	if err := writeSnapshot(conn, s.engine.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case snap := <-ch:
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap services.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
