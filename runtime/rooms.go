package runtime

import "sync"

type Set map[string]struct{}

// Rooms tracks which sessions subscribe to which rooms. Rooms exist only
// as fan-out labels: they are created implicitly by the first join and
// removed when the last member leaves. Membership is per connection, so an
// anonymous session can join rooms before registering.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]Set // room -> session IDs
	joined  map[string]Set // session ID -> rooms, for disconnect cleanup
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]Set),
		joined:  make(map[string]Set),
	}
}

// Join subscribes a session to a room. Idempotent.
func (r *Rooms) Join(sessionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[room]; !ok {
		r.members[room] = make(Set)
	}
	r.members[room][sessionID] = struct{}{}

	if _, ok := r.joined[sessionID]; !ok {
		r.joined[sessionID] = make(Set)
	}
	r.joined[sessionID][room] = struct{}{}
}

// Leave unsubscribes a session from a room. No-op if not a member.
func (r *Rooms) Leave(sessionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sessionID, room)
}

// LeaveAll clears every subscription of a session, on disconnect.
func (r *Rooms) LeaveAll(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.joined[sessionID] {
		r.leaveLocked(sessionID, room)
	}
}

func (r *Rooms) leaveLocked(sessionID, room string) {
	if members, ok := r.members[room]; ok {
		delete(members, sessionID)
		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.members, room)
		}
	}
	if rooms, ok := r.joined[sessionID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.joined, sessionID)
		}
	}
}

// Members returns a snapshot of the session IDs subscribed to a room.
// Fan-out works off this snapshot so that a concurrent join or leave
// never yields a half-updated view. Returns nil for an unknown room.
func (r *Rooms) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.members[room]
	if !ok {
		return nil
	}
	sessionIDs := make([]string, 0, len(members))
	for sessionID := range members {
		sessionIDs = append(sessionIDs, sessionID)
	}
	return sessionIDs
}
