package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	"log/slog"
)

// Lifecycle drives the per-connection state machine: Anonymous on connect,
// Registered after a successful register, terminal on disconnect. It keeps
// Presence and Rooms consistent and emits the user_list notification on
// every presence change. There is no client action back to Anonymous.
type Lifecycle struct {
	log      *slog.Logger
	presence *Presence
	rooms    *Rooms
}

func NewLifecycle(log *slog.Logger, presence *Presence, rooms *Rooms) *Lifecycle {
	return &Lifecycle{log: log, presence: presence, rooms: rooms}
}

// Connect attaches a new session in the Anonymous state.
func (l *Lifecycle) Connect(sessionID string, sink contract.EventSink) {
	l.presence.Attach(sessionID, sink)
	l.log.Debug("Session connected", "session_id", sessionID)
}

// Register binds an identity to the session and broadcasts the updated
// presence list to every connection. Re-registering the same identity from
// a new connection silently takes over routing for that name.
func (l *Lifecycle) Register(ctx context.Context, sessionID, identity string) {
	if !l.presence.Register(identity, sessionID) {
		l.log.Debug("Register ignored", "session_id", sessionID)
		return
	}
	l.log.Info("User registered", "identity", identity, "session_id", sessionID)
	l.broadcastUserList(ctx)
}

// Disconnect tears a session down: membership is cleared, the presence
// entry removed, and peers are notified if the session was registered.
// Safe to run concurrently with an in-flight send from the same session.
func (l *Lifecycle) Disconnect(ctx context.Context, sessionID string) {
	l.rooms.LeaveAll(sessionID)
	identity, registered := l.presence.Detach(sessionID)
	l.log.Debug("Session disconnected", "session_id", sessionID)

	if registered {
		l.log.Info("User left", "identity", identity)
		l.broadcastUserList(ctx)
	}
}

func (l *Lifecycle) broadcastUserList(ctx context.Context) {
	evt := event.UserList{Users: l.presence.Identities()}
	for _, sink := range l.presence.AllSinks() {
		if err := sink.Consume(ctx, evt); err != nil {
			l.log.Debug("user_list delivery failed", "error", err)
		}
	}
}
