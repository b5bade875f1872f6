package sink

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"sync"
)

// SessionSink is the outbound queue of one connection.
// The relay pushes into it, the transport writer drains Events.
type SessionSink struct {
	Events chan event.DomainEvent
	once   sync.Once
	done   chan struct{}
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{
		Events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume is called by fanout
// Redirect the event through the concerned owner of the channel
// The transport writer will take it from now
func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrDisconnected
	default:
	}
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Close stops accepting events. Events is left open so a concurrent
// Consume never sends on a closed channel.
func (s *SessionSink) Close() {
	s.once.Do(func() { close(s.done) })
}

// Done is closed once the sink stops accepting events.
func (s *SessionSink) Done() <-chan struct{} {
	return s.done
}
