// Package domain contains core concepts of the relay.
// Messages are immutable once persisted and validated by the domain.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRoom is used whenever a client omits the room name.
	DefaultRoom = "global"

	// AnonymousSender is the fallback sender for unregistered connections.
	AnonymousSender = "Anonymous"

	privateChannelPrefix = "private:"
)

// Message represents one immutable chat record.
// For private messages Room holds the derived channel key and To the recipient.
type Message struct {
	ID        uuid.UUID `json:"id" cbor:"1,keyasint"`
	Sender    string    `json:"sender" cbor:"2,keyasint"`
	Content   string    `json:"content" cbor:"3,keyasint"`
	Room      string    `json:"room" cbor:"4,keyasint"`
	To        string    `json:"to,omitempty" cbor:"5,keyasint,omitempty"`
	CreatedAt time.Time `json:"createdAt" cbor:"6,keyasint"`
}

// IsPrivate reports whether the record is a direct message.
func (m Message) IsPrivate() bool {
	return m.To != ""
}

// PrivateChannel derives the channel key grouping all direct messages
// between two identities. The participants are sorted so that the key is
// identical regardless of who is sender and who is recipient on a given
// message, which history queries rely on.
func PrivateChannel(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return privateChannelPrefix + strings.Join(pair, "-")
}

// EmptyContent reports whether content is empty once trimmed.
// Such messages are rejected before persistence.
func EmptyContent(content string) bool {
	return strings.TrimSpace(content) == ""
}
