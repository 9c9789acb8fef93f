package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const storageFailureReason = "message could not be recorded"

// Router orchestrates the two message flows. Both obey the same ordering
// contract: a message is broadcast or delivered only after the store has
// confirmed the append, so history replay on a fresh join can never
// disagree with what connected peers already saw. Storage failure
// terminates the flow for that message; there is no retry.
type Router struct {
	log              *slog.Logger
	store            contract.MessageStore
	presence         *Presence
	rooms            *Rooms
	filter           contract.ContentFilter // optional, nil disables masking
	storeTimeout     time.Duration
	roomHistoryLimit int
}

func NewRouter(log *slog.Logger, store contract.MessageStore, presence *Presence,
	rooms *Rooms, filter contract.ContentFilter,
	storeTimeout time.Duration, roomHistoryLimit int) *Router {
	return &Router{
		log:              log,
		store:            store,
		presence:         presence,
		rooms:            rooms,
		filter:           filter,
		storeTimeout:     storeTimeout,
		roomHistoryLimit: roomHistoryLimit,
	}
}

// SendRoomMessage persists one record for the room and, on success only,
// fans it out to every session currently subscribed. Empty content is
// dropped silently: the client pre-validates, the server defends anyway.
func (r *Router) SendRoomMessage(ctx context.Context, sessionID, room, content string) {
	if domain.EmptyContent(content) {
		r.log.Debug("Dropping empty room message", "session_id", sessionID)
		return
	}
	if room == "" {
		room = domain.DefaultRoom
	}

	msg := r.buildMessage(sessionID, room, "", content)

	stored, err := r.append(ctx, msg)
	if err != nil {
		r.log.Error("Room message not recorded, aborting broadcast",
			"room", room, "sender", msg.Sender, "error", err)
		r.notifySender(ctx, sessionID, event.SendFailed{Reason: storageFailureReason})
		return
	}

	evt := event.NewRoomMessage{Message: stored}
	for _, memberID := range r.rooms.Members(room) {
		if sink, ok := r.presence.SinkOf(memberID); ok {
			r.deliver(ctx, sink, evt)
		}
	}
}

// SendPrivateMessage persists one record under the derived channel key and
// delivers it to the recipient when online. The sender always receives the
// stored record back as confirmation. Like the room flow, nothing is
// delivered unless the append succeeded.
func (r *Router) SendPrivateMessage(ctx context.Context, sessionID, to, content string) {
	if to == "" || domain.EmptyContent(content) {
		r.log.Debug("Dropping invalid private message",
			"session_id", sessionID, "to", to)
		return
	}

	sender := r.senderOf(sessionID)
	msg := r.buildMessage(sessionID, domain.PrivateChannel(sender, to), to, content)

	stored, err := r.append(ctx, msg)
	if err != nil {
		r.log.Error("Private message not recorded, aborting delivery",
			"sender", sender, "to", to, "error", err)
		r.notifySender(ctx, sessionID, event.SendFailed{Reason: storageFailureReason})
		return
	}

	evt := event.NewPrivateMessage{Message: stored}
	if recipient, online := r.presence.Resolve(to); online {
		r.deliver(ctx, recipient, evt)
	}
	// Send confirmation regardless of recipient presence.
	r.notifySender(ctx, sessionID, evt)
}

// JoinRoom subscribes the session and replays the room history to that
// session alone. A failing history query is reported to the caller; the
// subscription itself stands so live messages still arrive.
func (r *Router) JoinRoom(ctx context.Context, sessionID, room string) error {
	if room == "" {
		room = domain.DefaultRoom
	}
	r.rooms.Join(sessionID, room)

	qctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	history, err := r.store.QueryRoom(qctx, room, r.roomHistoryLimit)
	if err != nil {
		r.log.Warn("Room history fetch failed", "room", room, "error", err)
		return fmt.Errorf("fetching history for room %q: %w", room, err)
	}

	if sink, ok := r.presence.SinkOf(sessionID); ok {
		r.deliver(ctx, sink, event.RoomHistory{Room: room, History: history})
	}
	return nil
}

// LeaveRoom unsubscribes the session. No-op if not a member.
func (r *Router) LeaveRoom(sessionID, room string) {
	r.rooms.Leave(sessionID, room)
}

func (r *Router) buildMessage(sessionID, room, to, content string) domain.Message {
	if r.filter != nil {
		content = r.filter.Mask(content)
	}
	return domain.Message{
		ID:        uuid.New(),
		Sender:    r.senderOf(sessionID),
		Content:   content,
		Room:      room,
		To:        to,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Router) senderOf(sessionID string) string {
	if identity, ok := r.presence.IdentityOf(sessionID); ok {
		return identity
	}
	return domain.AnonymousSender
}

// append runs the persistence call under a bounded deadline. A timeout is
// a definite failure for this message, never a retry loop.
func (r *Router) append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	sctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	return r.store.Append(sctx, msg)
}

func (r *Router) notifySender(ctx context.Context, sessionID string, evt event.DomainEvent) {
	if sink, ok := r.presence.SinkOf(sessionID); ok {
		r.deliver(ctx, sink, evt)
	}
}

func (r *Router) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	if err := sink.Consume(ctx, evt); err != nil {
		r.log.Debug("Event delivery failed", "event", evt.EventName(), "error", err)
	}
}
