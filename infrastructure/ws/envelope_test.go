package ws

import (
	"encoding/json"
	"strings"
	"testing"

	"chat-relay/domain/event"

	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Register(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "valid", data: `{"identity":"alice"}`, wantErr: false},
		{name: "missing identity", data: `{}`, wantErr: true},
		{name: "empty identity", data: `{"identity":""}`, wantErr: true},
		{name: "identity with separator", data: `{"identity":"al|ce"}`, wantErr: true},
		{name: "identity too long", data: `{"identity":"` + strings.Repeat("a", 65) + `"}`, wantErr: true},
		{name: "not json", data: `register as alice`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p registerPayload
			err := decodePayload(json.RawMessage(tc.data), &p)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDecodePayload_RoomMessage_Room_Optional(t *testing.T) {
	req := require.New(t)

	var p roomMessagePayload
	req.NoError(decodePayload(json.RawMessage(`{"content":"hello"}`), &p))
	req.Empty(p.Room)
	req.Equal("hello", p.Content)

	// Content stays mandatory
	var missingContent roomMessagePayload
	req.Error(decodePayload(json.RawMessage(`{"room":"general"}`), &missingContent))
}

func TestDecodePayload_Room_Names_Exclude_Separator(t *testing.T) {
	req := require.New(t)

	var join joinRoomPayload
	req.Error(decodePayload(json.RawMessage(`{"room":"gen|eral"}`), &join))

	var msg roomMessagePayload
	req.Error(decodePayload(json.RawMessage(`{"room":"gen|eral","content":"hi"}`), &msg))
}

func TestDecodePayload_PrivateMessage(t *testing.T) {
	req := require.New(t)

	var p privateMessagePayload
	req.NoError(decodePayload(json.RawMessage(`{"to":"bob","content":"psst"}`), &p))

	var missingTo privateMessagePayload
	req.Error(decodePayload(json.RawMessage(`{"content":"psst"}`), &missingTo))

	var separatorTo privateMessagePayload
	req.Error(decodePayload(json.RawMessage(`{"to":"b|ob","content":"psst"}`), &separatorTo))
}

func TestOutboundEnvelope_Wire_Shape(t *testing.T) {
	req := require.New(t)

	e := event.UserList{Users: []string{"alice", "bob"}}
	payload, err := json.Marshal(outboundEnvelope{Event: e.EventName(), Data: e})
	req.NoError(err)

	req.JSONEq(`{"event":"user_list","data":{"users":["alice","bob"]}}`, string(payload))
}
