package ws

import (
	"chat-relay/domain/event"
	"chat-relay/services"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// Session is one live WebSocket connection. It implements
// contract.EventSink: the router and lifecycle push domain events into the
// buffered send queue, the write pump drains it. A slow consumer loses
// events instead of blocking fan-out.
type Session struct {
	id              string
	conn            *websocket.Conn
	log             *slog.Logger
	send            chan []byte
	deliveryTimeout time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

func newSession(conn *websocket.Conn, log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *Session {
	return &Session{
		id:              uuid.NewString(),
		conn:            conn,
		log:             log,
		send:            make(chan []byte, bufferSize),
		deliveryTimeout: deliveryTimeout,
		done:            make(chan struct{}),
	}
}

// Consume queues one outbound event, wrapped in the wire envelope.
// Dropping on backpressure keeps delivery best effort: fan-out must never
// stall on one slow connection.
func (s *Session) Consume(ctx context.Context, e event.DomainEvent) error {
	payload, err := json.Marshal(outboundEnvelope{Event: e.EventName(), Data: e})
	if err != nil {
		return err
	}

	select {
	case s.send <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	case <-time.After(s.deliveryTimeout):
		s.log.Debug("Outbound event dropped, send buffer full",
			"session_id", s.id, "event", e.EventName())
		return nil
	}
}

// readPump consumes inbound frames until the client goes away, then tears
// the session down. Runs on the handler goroutine.
func (s *Session) readPump(ctx context.Context, service services.IRelayService) {
	defer func() {
		// Disconnect uses a fresh context: the request context may
		// already be canceled while peers still need the user_list.
		service.Disconnect(context.WithoutCancel(ctx), s.id)
		s.close()
	}()

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("WebSocket read failed", "session_id", s.id, "error", err)
			}
			return
		}
		s.dispatch(ctx, service, raw)
	}
}

// dispatch routes one inbound frame to the relay service. Malformed or
// invalid frames are logged and dropped.
func (s *Session) dispatch(ctx context.Context, service services.IRelayService, raw []byte) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.log.Debug("Invalid frame", "session_id", s.id, "error", err)
		return
	}

	switch envelope.Event {
	case eventRegister:
		var p registerPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			s.log.Debug("Register rejected", "session_id", s.id, "error", err)
			return
		}
		service.Register(ctx, s.id, p.Identity)

	case eventJoinRoom:
		var p joinRoomPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			s.log.Debug("Join rejected", "session_id", s.id, "error", err)
			return
		}
		if err := service.JoinRoom(ctx, s.id, p.Room); err != nil {
			s.log.Warn("Joined without history", "session_id", s.id, "error", err)
		}

	case eventLeaveRoom:
		var p leaveRoomPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			s.log.Debug("Leave rejected", "session_id", s.id, "error", err)
			return
		}
		service.LeaveRoom(s.id, p.Room)

	case eventRoomMessage:
		var p roomMessagePayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			s.log.Debug("Room message rejected", "session_id", s.id, "error", err)
			return
		}
		service.SendRoomMessage(ctx, s.id, p.Room, p.Content)

	case eventPrivateMessage:
		var p privateMessagePayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			s.log.Debug("Private message rejected", "session_id", s.id, "error", err)
			return
		}
		service.SendPrivateMessage(ctx, s.id, p.To, p.Content)

	default:
		s.log.Debug("Unknown event", "session_id", s.id, "event", envelope.Event)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. Runs on its own goroutine.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Debug("WebSocket write failed", "session_id", s.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
