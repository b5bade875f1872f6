// Package event defines what the relay pushes to connected sessions.
package event

import "chat-relay/domain"

// Wire names shared by the relay and its clients.
const (
	NameLogin            = "login"
	NameTyping           = "typing"
	NameStopTyping       = "stopTyping"
	NameSendMessage      = "sendMessage"
	NameNewMessage       = "newMessage"
	NameUserStatusUpdate = "userStatusUpdate"
	NameMessageRead      = "messageRead"
)

type DomainEvent interface {
	EventName() string
}

// NewMessage carries a relayed message, unmodified.
type NewMessage struct {
	Message domain.Message
}

func (NewMessage) EventName() string { return NameNewMessage }

// UserStatusUpdate carries the full presence snapshot, never a delta.
type UserStatusUpdate struct {
	Presence domain.PresenceSnapshot
}

func (UserStatusUpdate) EventName() string { return NameUserStatusUpdate }

type Typing struct {
	Identity domain.Identity
}

func (Typing) EventName() string { return NameTyping }

type StopTyping struct{}

func (StopTyping) EventName() string { return NameStopTyping }

// MessageRead is raised locally by a client when it marks one of its messages read.
type MessageRead struct {
	ID domain.MessageID
}

func (MessageRead) EventName() string { return NameMessageRead }
