package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrivateChannel_Symmetric(t *testing.T) {
	req := require.New(t)

	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"zoe", "adam"},
		{"same", "same"},
	}
	for _, pair := range pairs {
		req.Equal(PrivateChannel(pair[0], pair[1]), PrivateChannel(pair[1], pair[0]))
	}
}

func TestPrivateChannel_Format(t *testing.T) {
	req := require.New(t)

	// Participants sorted lexicographically, joined with '-'
	req.Equal("private:alice-bob", PrivateChannel("bob", "alice"))
	req.Equal("private:alice-bob", PrivateChannel("alice", "bob"))
	req.Equal("private:adam-zoe", PrivateChannel("zoe", "adam"))
}

func TestEmptyContent(t *testing.T) {
	req := require.New(t)

	req.True(EmptyContent(""))
	req.True(EmptyContent("   "))
	req.True(EmptyContent("\t\n "))
	req.False(EmptyContent("hi"))
	req.False(EmptyContent("  hi  "))
}

func TestMessage_IsPrivate(t *testing.T) {
	req := require.New(t)

	req.False(Message{Room: "global"}.IsPrivate())
	req.True(Message{Room: PrivateChannel("alice", "bob"), To: "bob"}.IsPrivate())
}
