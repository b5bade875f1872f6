// Package wire is the JSON framing shared by the relay and its clients.
// Every frame is an Envelope: {"event": "<name>", "data": <payload>}.
package wire

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data as the payload of the named event.
// A nil data produces a frame without payload.
func NewEnvelope(name string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Event: name}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", name, err)
	}
	return Envelope{Event: name, Data: raw}, nil
}

// EncodeEvent frames an event pushed by the relay.
// messageRead stays on the client and has no frame.
func EncodeEvent(e event.DomainEvent) (Envelope, error) {
	switch evt := e.(type) {
	case event.NewMessage:
		return NewEnvelope(evt.EventName(), evt.Message.Wire())
	case event.UserStatusUpdate:
		return NewEnvelope(evt.EventName(), evt.Presence)
	case event.Typing:
		return NewEnvelope(evt.EventName(), evt.Identity)
	case event.StopTyping:
		return NewEnvelope(evt.EventName(), nil)
	default:
		return Envelope{}, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, e.EventName())
	}
}

// DecodeEvent is the client side of EncodeEvent.
func DecodeEvent(env Envelope) (event.DomainEvent, error) {
	switch env.Event {
	case event.NameNewMessage:
		var message domain.Message
		if err := decode(env, &message); err != nil {
			return nil, err
		}
		return event.NewMessage{Message: message.Wire()}, nil
	case event.NameUserStatusUpdate:
		var presence domain.PresenceSnapshot
		if err := decode(env, &presence); err != nil {
			return nil, err
		}
		return event.UserStatusUpdate{Presence: presence}, nil
	case event.NameTyping:
		var id domain.Identity
		if err := decode(env, &id); err != nil {
			return nil, err
		}
		return event.Typing{Identity: id}, nil
	case event.NameStopTyping:
		return event.StopTyping{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Event)
	}
}

// DecodeCommand turns a frame received from a session into a relay command.
func DecodeCommand(session domain.SessionID, env Envelope) (domain.Command, error) {
	switch env.Event {
	case event.NameLogin:
		var id domain.Identity
		if err := decode(env, &id); err != nil {
			return nil, err
		}
		return domain.LoginCommand{Session: session, Identity: id}, nil
	case event.NameTyping:
		var id domain.Identity
		if err := decode(env, &id); err != nil {
			return nil, err
		}
		return domain.TypingCommand{Session: session, Identity: id}, nil
	case event.NameStopTyping:
		return domain.StopTypingCommand{Session: session}, nil
	case event.NameSendMessage:
		var message domain.Message
		if err := decode(env, &message); err != nil {
			return nil, err
		}
		return domain.SendMessageCommand{Session: session, Message: message.Wire()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Event)
	}
}

func Login(id domain.Identity) (Envelope, error) { return NewEnvelope(event.NameLogin, id) }

func Typing(id domain.Identity) (Envelope, error) { return NewEnvelope(event.NameTyping, id) }

func StopTyping() (Envelope, error) { return NewEnvelope(event.NameStopTyping, nil) }

func SendMessage(message domain.Message) (Envelope, error) {
	return NewEnvelope(event.NameSendMessage, message.Wire())
}

func decode(env Envelope, target any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s without data", errors.ErrMalformedPayload, env.Event)
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrMalformedPayload, env.Event, err)
	}
	return nil
}
