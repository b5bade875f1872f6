// Package client is the relay client: one instance per terminal, syncing its
// history with sibling instances through the local store.
package client

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

type Transport interface {
	Emit(env wire.Envelope) error
	Events() <-chan event.DomainEvent
	Close() error
}

var _ Transport = (*WSTransport)(nil)

// WSTransport is a websocket connection to the relay.
// Events is closed once the connection is lost.
type WSTransport struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	events    chan event.DomainEvent
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	log       *slog.Logger
}

func Dial(ctx context.Context, url string, bufferSize int, log *slog.Logger) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	t := &WSTransport{conn: conn, events: make(chan event.DomainEvent, bufferSize), done: make(chan struct{}), log: log}
	go t.readLoop()
	return t, nil
}

func (t *WSTransport) Events() <-chan event.DomainEvent { return t.events }

// Emit fails fast with ErrDisconnected once the connection is gone.
func (t *WSTransport) Emit(env wire.Envelope) error {
	if t.closed.Load() {
		return errors.ErrDisconnected
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := t.conn.WriteJSON(env); err != nil {
		t.closed.Store(true)
		return fmt.Errorf("%w: %v", errors.ErrDisconnected, err)
	}
	return nil
}

// Close releases the connection and the read loop, even when nobody
// drains Events anymore.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if !t.closed.Swap(true) {
			t.mu.Lock()
			_ = t.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
			t.mu.Unlock()
		}
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

func (t *WSTransport) readLoop() {
	defer close(t.events)
	defer t.closed.Store(true)
	for {
		var env wire.Envelope
		if err := t.conn.ReadJSON(&env); err != nil {
			if !t.closed.Load() {
				t.log.Warn("Connection to relay lost", "error", err)
			}
			_ = t.conn.Close()
			return
		}
		evt, err := wire.DecodeEvent(env)
		if err != nil {
			t.log.Warn("Frame ignored", "event", env.Event, "error", err)
			continue
		}
		select {
		case t.events <- evt:
		case <-t.done:
			return
		}
	}
}
