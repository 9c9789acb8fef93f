// Package event defines the server-to-client events of the relay.
// Each event knows its wire name; transports wrap the event in an
// envelope and deliver it through an EventSink.
package event

import (
	"chat-relay/domain"
)

// Wire names of the outbound event surface.
const (
	NameRoomHistory       = "roomHistory"
	NameNewRoomMessage    = "newRoomMessage"
	NameNewPrivateMessage = "newPrivateMessage"
	NameUserList          = "user_list"
	NameSendFailed        = "sendFailed"
)

type DomainEvent interface {
	EventName() string
}

// RoomHistory is sent once per join, to the joining connection only.
type RoomHistory struct {
	Room    string           `json:"room"`
	History []domain.Message `json:"history"`
}

func (e RoomHistory) EventName() string { return NameRoomHistory }

// NewRoomMessage is broadcast to every current subscriber of the room.
type NewRoomMessage struct {
	domain.Message
}

func (e NewRoomMessage) EventName() string { return NameNewRoomMessage }

// NewPrivateMessage is delivered to the recipient when online, and always
// echoed back to the sender as a send confirmation.
type NewPrivateMessage struct {
	domain.Message
}

func (e NewPrivateMessage) EventName() string { return NameNewPrivateMessage }

// UserList carries the full set of registered identities. It is broadcast
// to all connections on every register and on every registered disconnect.
type UserList struct {
	Users []string `json:"users"`
}

func (e UserList) EventName() string { return NameUserList }

// SendFailed acknowledges to the sender that a message was not recorded
// and therefore not delivered to anyone.
type SendFailed struct {
	Reason string `json:"reason"`
}

func (e SendFailed) EventName() string { return NameSendFailed }
