package ws

import (
	"chat-relay/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to WebSocket sessions and wires them into
// the relay. One session per connection; the read pump runs on the request
// goroutine, the write pump on its own.
type Handler struct {
	log             *slog.Logger
	service         services.IRelayService
	bufferSize      int
	deliveryTimeout time.Duration
	upgrader        websocket.Upgrader
}

func NewHandler(log *slog.Logger, service services.IRelayService,
	bufferSize int, deliveryTimeout time.Duration) *Handler {
	return &Handler{
		log:             log,
		service:         service,
		bufferSize:      bufferSize,
		deliveryTimeout: deliveryTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identities are not authenticated, any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := newSession(conn, h.log, h.bufferSize, h.deliveryTimeout)
	h.service.Connect(session.id, session)
	h.log.Debug("WebSocket session opened",
		"session_id", session.id, "remote", r.RemoteAddr)

	go session.writePump()
	session.readPump(r.Context(), h.service)
}
