package domain

import "github.com/google/uuid"

// SessionID identifies one live transport connection on the relay.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (s SessionID) String() string { return string(s) }
