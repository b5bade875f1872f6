package sink

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionSink_Consume_Queues_Event(t *testing.T) {
	req := require.New(t)
	s := NewSessionSink(1)

	req.NoError(s.Consume(context.Background(), event.StopTyping{}))

	req.Equal(event.StopTyping{}, <-s.Events)
}

func TestSessionSink_Consume_Full_Buffer_Drops(t *testing.T) {
	req := require.New(t)
	s := NewSessionSink(1)

	// Given a full buffer
	req.NoError(s.Consume(context.Background(), event.StopTyping{}))

	// When another event arrives, it is dropped instead of blocking the relay
	err := s.Consume(context.Background(), event.Typing{Identity: "SAMUEL"})
	req.ErrorIs(err, errors.ErrSinkFull)
	req.Len(s.Events, 1)
}

func TestSessionSink_Closed_Rejects_Events(t *testing.T) {
	req := require.New(t)
	s := NewSessionSink(4)

	s.Close()
	s.Close()

	req.ErrorIs(s.Consume(context.Background(), event.StopTyping{}), errors.ErrDisconnected)
	req.Empty(s.Events)
}
