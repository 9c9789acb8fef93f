package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRooms_Join_And_Members(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	sessionID1 := uuid.NewString()
	sessionID2 := uuid.NewString()

	// When two sessions join the same room
	rooms.Join(sessionID1, "general")
	rooms.Join(sessionID2, "general")

	// Then both are members
	members := rooms.Members("general")
	req.Len(members, 2)
	req.Contains(members, sessionID1)
	req.Contains(members, sessionID2)
}

func TestRooms_Join_Idempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	sessionID := uuid.NewString()

	rooms.Join(sessionID, "general")
	rooms.Join(sessionID, "general")

	req.Len(rooms.Members("general"), 1)
}

func TestRooms_Unknown_Room_Has_No_Members(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	req.Nil(rooms.Members("nowhere"))
}

func TestRooms_Leave(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	sessionID1 := uuid.NewString()
	sessionID2 := uuid.NewString()
	rooms.Join(sessionID1, "general")
	rooms.Join(sessionID2, "general")

	rooms.Leave(sessionID1, "general")

	req.Equal([]string{sessionID2}, rooms.Members("general"))
}

func TestRooms_Leave_Not_A_Member_Is_NoOp(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	rooms.Join(uuid.NewString(), "general")

	rooms.Leave(uuid.NewString(), "general")
	rooms.Leave(uuid.NewString(), "nowhere")

	req.Len(rooms.Members("general"), 1)
}

func TestRooms_LeaveAll(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	sessionID := uuid.NewString()
	other := uuid.NewString()
	rooms.Join(sessionID, "general")
	rooms.Join(sessionID, "random")
	rooms.Join(other, "general")

	// When the session disconnects
	rooms.LeaveAll(sessionID)

	// Then it is gone from every room, others are untouched
	req.Equal([]string{other}, rooms.Members("general"))
	req.Nil(rooms.Members("random"))
}
