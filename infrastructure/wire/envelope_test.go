package wire

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeEvent_NewMessage_Shape(t *testing.T) {
	req := require.New(t)
	message := domain.Message{ID: 1001, Text: "hi", Sender: "SAMUEL", Status: domain.StatusPending}

	env, err := EncodeEvent(event.NewMessage{Message: message})
	req.NoError(err)
	raw, err := json.Marshal(env)
	req.NoError(err)

	// Then the client-local status never leaves the process
	req.JSONEq(`{"event":"newMessage","data":{"id":1001,"text":"hi","sender":"SAMUEL","read":false}}`, string(raw))
}

func TestEncodeEvent_Presence_Shape(t *testing.T) {
	req := require.New(t)
	snapshot := domain.PresenceSnapshot{
		"SAMUEL": domain.Connected(),
		"ANJOLA": domain.Disconnected(time.UnixMilli(1700000000000)),
	}

	env, err := EncodeEvent(event.UserStatusUpdate{Presence: snapshot})
	req.NoError(err)

	req.Equal(event.NameUserStatusUpdate, env.Event)
	req.JSONEq(`{"SAMUEL":{"online":true,"lastSeen":null},"ANJOLA":{"online":false,"lastSeen":1700000000000}}`, string(env.Data))
}

func TestEncodeEvent_StopTyping_Has_No_Payload(t *testing.T) {
	req := require.New(t)

	env, err := EncodeEvent(event.StopTyping{})
	req.NoError(err)
	raw, err := json.Marshal(env)
	req.NoError(err)

	req.JSONEq(`{"event":"stopTyping"}`, string(raw))
}

func TestDecodeEvent_Presence(t *testing.T) {
	req := require.New(t)
	env := Envelope{Event: "userStatusUpdate", Data: json.RawMessage(`{"SAMUEL":{"online":false,"lastSeen":42}}`)}

	decoded, err := DecodeEvent(env)
	req.NoError(err)

	update, ok := decoded.(event.UserStatusUpdate)
	req.True(ok)
	req.False(update.Presence["SAMUEL"].Online)
	req.Equal(int64(42), *update.Presence["SAMUEL"].LastSeen)
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		env      Envelope
		expected domain.Command
	}{
		{
			name:     "login",
			env:      Envelope{Event: "login", Data: json.RawMessage(`"SAMUEL"`)},
			expected: domain.LoginCommand{Session: "s1", Identity: "SAMUEL"},
		},
		{
			name:     "typing",
			env:      Envelope{Event: "typing", Data: json.RawMessage(`"ANJOLA"`)},
			expected: domain.TypingCommand{Session: "s1", Identity: "ANJOLA"},
		},
		{
			name:     "stop typing without data",
			env:      Envelope{Event: "stopTyping"},
			expected: domain.StopTypingCommand{Session: "s1"},
		},
		{
			name: "send message drops status",
			env: Envelope{Event: "sendMessage",
				Data: json.RawMessage(`{"id":1001,"text":"hi","sender":"SAMUEL","read":false,"status":"pending"}`)},
			expected: domain.SendMessageCommand{Session: "s1",
				Message: domain.Message{ID: 1001, Text: "hi", Sender: "SAMUEL"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, err := DecodeCommand("s1", tt.env)
			req.NoError(err)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	req := require.New(t)

	_, err := DecodeCommand("s1", Envelope{Event: "newMessage"})
	req.ErrorIs(err, errors.ErrUnknownEvent)

	_, err = DecodeCommand("s1", Envelope{Event: "login"})
	req.ErrorIs(err, errors.ErrMalformedPayload)

	_, err = DecodeCommand("s1", Envelope{Event: "sendMessage", Data: json.RawMessage(`"nope"`)})
	req.ErrorIs(err, errors.ErrMalformedPayload)
}

func TestClientFrames_Decode_On_Relay(t *testing.T) {
	req := require.New(t)
	message := domain.Message{ID: 7, Text: "yo", Sender: "ANJOLA", Status: domain.StatusFailed}

	env, err := SendMessage(message)
	req.NoError(err)
	cmd, err := DecodeCommand("s9", env)
	req.NoError(err)

	req.Equal(domain.SendMessageCommand{Session: "s9", Message: message.Wire()}, cmd)
}

func TestMessageRead_Has_No_Frame(t *testing.T) {
	req := require.New(t)

	// messageRead is local to a client, it never crosses the wire
	_, err := EncodeEvent(event.MessageRead{ID: 7})
	req.ErrorIs(err, errors.ErrUnknownEvent)

	_, err = DecodeEvent(Envelope{Event: event.NameMessageRead, Data: json.RawMessage(`7`)})
	req.ErrorIs(err, errors.ErrUnknownEvent)
}
