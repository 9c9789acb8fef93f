package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPresence_Register_And_Resolve(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sessionID := uuid.NewString()
	sink := &recordingSink{}

	// Given an attached anonymous session
	presence.Attach(sessionID, sink)
	_, registered := presence.IdentityOf(sessionID)
	req.False(registered)

	// When it registers
	req.True(presence.Register("alice", sessionID))

	// Then the identity resolves to its connection
	resolved, ok := presence.Resolve("alice")
	req.True(ok)
	req.Same(sink, resolved.(*recordingSink))

	identity, ok := presence.IdentityOf(sessionID)
	req.True(ok)
	req.Equal("alice", identity)
}

func TestPresence_Register_Empty_Identity_Is_NoOp(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sessionID := uuid.NewString()
	presence.Attach(sessionID, &recordingSink{})

	req.False(presence.Register("", sessionID))
	req.Empty(presence.Identities())
}

func TestPresence_Register_Unknown_Session_Is_NoOp(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// Disconnect may race register; a binding without a connection is useless
	req.False(presence.Register("alice", uuid.NewString()))
	_, ok := presence.Resolve("alice")
	req.False(ok)
}

func TestPresence_Register_Idempotent(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sessionID := uuid.NewString()
	presence.Attach(sessionID, &recordingSink{})

	// When the same session registers the same identity twice
	req.True(presence.Register("alice", sessionID))
	req.True(presence.Register("alice", sessionID))

	// Then registry state does not duplicate
	req.Equal([]string{"alice"}, presence.Identities())
}

func TestPresence_Register_Takeover(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	oldSession := uuid.NewString()
	newSession := uuid.NewString()
	oldSink := &recordingSink{}
	newSink := &recordingSink{}

	// Given alice registered on a first connection
	presence.Attach(oldSession, oldSink)
	presence.Attach(newSession, newSink)
	req.True(presence.Register("alice", oldSession))

	// When a second connection claims the same identity
	req.True(presence.Register("alice", newSession))

	// Then last register wins
	resolved, ok := presence.Resolve("alice")
	req.True(ok)
	req.Same(newSink, resolved.(*recordingSink))

	// And the prior connection keeps its socket but loses the name
	_, stillRegistered := presence.IdentityOf(oldSession)
	req.False(stillRegistered)
	_, attached := presence.SinkOf(oldSession)
	req.True(attached)
	req.Equal([]string{"alice"}, presence.Identities())
}

func TestPresence_Rebind_Releases_Previous_Identity(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sessionID := uuid.NewString()
	presence.Attach(sessionID, &recordingSink{})

	// When a session re-registers under a new name
	req.True(presence.Register("alice", sessionID))
	req.True(presence.Register("alicia", sessionID))

	// Then the old name no longer resolves
	_, ok := presence.Resolve("alice")
	req.False(ok)
	req.Equal([]string{"alicia"}, presence.Identities())
}

func TestPresence_Detach_Removes_Identity(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sessionID := uuid.NewString()
	presence.Attach(sessionID, &recordingSink{})
	presence.Register("alice", sessionID)

	// When the session disconnects
	identity, registered := presence.Detach(sessionID)

	// Then resolve returns absent
	req.True(registered)
	req.Equal("alice", identity)
	_, ok := presence.Resolve("alice")
	req.False(ok)
	req.Empty(presence.Identities())
	req.Empty(presence.AllSinks())
}

func TestPresence_Detach_After_Takeover_Keeps_New_Owner(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	oldSession := uuid.NewString()
	newSession := uuid.NewString()
	presence.Attach(oldSession, &recordingSink{})
	presence.Attach(newSession, &recordingSink{})
	presence.Register("alice", oldSession)
	presence.Register("alice", newSession)

	// When the dispossessed connection finally disconnects
	_, registered := presence.Detach(oldSession)

	// Then the name still belongs to the newer connection
	req.False(registered)
	_, ok := presence.Resolve("alice")
	req.True(ok)
}

func TestPresence_Identities_Sorted(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	for _, identity := range []string{"zoe", "alice", "bob"} {
		sessionID := uuid.NewString()
		presence.Attach(sessionID, &recordingSink{})
		presence.Register(identity, sessionID)
	}

	req.Equal([]string{"alice", "bob", "zoe"}, presence.Identities())
}
