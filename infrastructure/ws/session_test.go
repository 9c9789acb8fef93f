package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain/event"

	"github.com/stretchr/testify/require"
)

func TestSession_Consume_Queues_Enveloped_Event(t *testing.T) {
	req := require.New(t)
	session := newSession(nil, slog.Default(), 4, 10*time.Millisecond)

	err := session.Consume(context.Background(), event.SendFailed{Reason: "storage down"})
	req.NoError(err)

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	req.NoError(json.Unmarshal(<-session.send, &envelope))
	req.Equal(event.NameSendFailed, envelope.Event)
	req.JSONEq(`{"reason":"storage down"}`, string(envelope.Data))
}

func TestSession_Consume_Drops_When_Buffer_Full(t *testing.T) {
	req := require.New(t)

	// Given a session whose write pump never drains
	session := newSession(nil, slog.Default(), 1, 10*time.Millisecond)
	req.NoError(session.Consume(context.Background(), event.UserList{Users: []string{"alice"}}))

	// When a second event arrives on the full buffer
	err := session.Consume(context.Background(), event.UserList{Users: []string{"alice", "bob"}})

	// Then it is dropped without error so fan-out never stalls
	req.NoError(err)
	req.Len(session.send, 1)
}

func TestSession_Consume_Honors_Canceled_Context(t *testing.T) {
	req := require.New(t)
	session := newSession(nil, slog.Default(), 0, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := session.Consume(ctx, event.UserList{Users: nil})
	req.ErrorIs(err, context.Canceled)
}

func TestSession_Consume_After_Close_Is_NoOp(t *testing.T) {
	req := require.New(t)
	session := newSession(nil, slog.Default(), 0, time.Minute)
	close(session.done)

	err := session.Consume(context.Background(), event.UserList{Users: nil})
	req.NoError(err)
}
