// Package ws carries the relay's event surface over WebSocket. Every
// frame is a JSON envelope {"event": name, "data": payload} in both
// directions, mirroring named-event transports.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Client-to-server event names.
const (
	eventRegister       = "register"
	eventJoinRoom       = "joinRoom"
	eventLeaveRoom      = "leaveRoom"
	eventRoomMessage    = "roomMessage"
	eventPrivateMessage = "privateMessage"
)

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Identities and room names exclude '|' (0x7C), the storage key separator.
type registerPayload struct {
	Identity string `json:"identity" validate:"required,max=64,excludesall=0x7C"`
}

type joinRoomPayload struct {
	Room string `json:"room" validate:"omitempty,max=64,excludesall=0x7C"`
}

type leaveRoomPayload struct {
	Room string `json:"room" validate:"required,max=64,excludesall=0x7C"`
}

type roomMessagePayload struct {
	Room    string `json:"room" validate:"omitempty,max=64,excludesall=0x7C"`
	Content string `json:"content" validate:"required"`
}

type privateMessagePayload struct {
	To      string `json:"to" validate:"required,max=64,excludesall=0x7C"`
	Content string `json:"content" validate:"required"`
}

var validate = validator.New()

// decodePayload unmarshals and validates an inbound payload. Invalid input
// is dropped by the caller: clients pre-validate, the server defends anyway.
func decodePayload(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("validating payload: %w", err)
	}
	return nil
}
