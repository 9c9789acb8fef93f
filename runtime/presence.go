// Package runtime holds the live state of the relay: which connections
// exist, who they are, and which rooms they subscribe to. It routes
// messages between them without containing transport or storage logic.
package runtime

import (
	"chat-relay/contract"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Presence is the source of truth for "is identity X reachable now".
// It owns two concerns behind one mutex: the directory of all attached
// sessions (registered or not) and the identity bindings on top of it.
// All mutation goes through its methods; callers never see the maps.
type Presence struct {
	mu         sync.RWMutex
	sinks      map[string]contract.EventSink // session ID -> live connection
	byIdentity map[string]string             // identity -> owning session ID
	bySession  map[string]string             // session ID -> bound identity
}

func NewPresence() *Presence {
	return &Presence{
		sinks:      make(map[string]contract.EventSink),
		byIdentity: make(map[string]string),
		bySession:  make(map[string]string),
	}
}

// Attach adds a freshly connected session in the Anonymous state.
func (p *Presence) Attach(sessionID string, sink contract.EventSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks[sessionID] = sink
}

// Detach removes a session and any identity bound to it. It returns the
// identity that was released and whether the session was registered at all.
// Called exactly once, on disconnect.
func (p *Presence) Detach(sessionID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.sinks, sessionID)

	identity, registered := p.bySession[sessionID]
	if registered {
		delete(p.bySession, sessionID)
		// Only drop the identity entry if this session still owns it;
		// after a takeover the name belongs to the newer connection.
		if p.byIdentity[identity] == sessionID {
			delete(p.byIdentity, identity)
		}
	}
	return identity, registered
}

// Register binds an identity to a session, last register wins. A prior
// connection holding the name keeps its socket but loses routability under
// that name. An empty identity is a silent no-op, mirroring the client-side
// validation the server must not rely on. Returns whether a binding was made.
func (p *Presence) Register(identity, sessionID string) bool {
	if identity == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, attached := p.sinks[sessionID]; !attached {
		// Disconnect raced the register; nothing to bind to.
		return false
	}

	// A session re-registering under a new name releases the old one.
	if prev, ok := p.bySession[sessionID]; ok && prev != identity {
		delete(p.byIdentity, prev)
	}
	// Takeover: the name's previous owner reverts to Anonymous.
	if owner, ok := p.byIdentity[identity]; ok && owner != sessionID {
		delete(p.bySession, owner)
	}

	p.byIdentity[identity] = sessionID
	p.bySession[sessionID] = identity
	return true
}

// Resolve returns the connection currently owning the identity, if any.
func (p *Presence) Resolve(identity string) (contract.EventSink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sessionID, ok := p.byIdentity[identity]
	if !ok {
		return nil, false
	}
	sink, ok := p.sinks[sessionID]
	return sink, ok
}

// SinkOf returns the connection behind a session ID.
func (p *Presence) SinkOf(sessionID string) (contract.EventSink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sink, ok := p.sinks[sessionID]
	return sink, ok
}

// IdentityOf returns the identity bound to a session, if registered.
func (p *Presence) IdentityOf(sessionID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	identity, ok := p.bySession[sessionID]
	return identity, ok
}

// Identities returns the sorted set of registered identities,
// the payload of every user_list broadcast.
func (p *Presence) Identities() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	identities := lo.Keys(p.byIdentity)
	sort.Strings(identities)
	return identities
}

// AllSinks returns a snapshot of every attached connection, registered or
// not. Presence notifications go to everyone, anonymous sessions included.
func (p *Presence) AllSinks() []contract.EventSink {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Values(p.sinks)
}
