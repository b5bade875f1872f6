package client

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"chat-relay/projection"
	"chat-relay/storage"
	"context"
	"fmt"
	"log/slog"
)

// View is what a renderer shows after every change.
type View struct {
	Local    domain.Identity
	Messages []domain.Message
	Presence domain.PresenceSnapshot
	Typing   *domain.Identity
	Online   bool
}

type Renderer interface {
	Render(view View)
}

// Dialer opens a new connection to the relay.
type Dialer func(ctx context.Context) (Transport, error)

type action struct {
	fn   func() error
	done chan error
}

// Client owns one Reconciler and is its only writer: network events,
// sibling writes and user actions are handled one at a time by Run.
type Client struct {
	reconciler *projection.Reconciler
	transport  Transport
	dial       Dialer
	events     <-chan event.DomainEvent
	changes    <-chan storage.ChangeEvent
	sessions   *storage.SessionStore
	renderer   Renderer
	actions    chan action
	connected  bool
	log        *slog.Logger
}

// NewClient starts from an open transport. dial is used by Retry to reconnect
// once that transport is lost; a nil dial disables reconnection.
func NewClient(reconciler *projection.Reconciler, transport Transport, dial Dialer,
	changes <-chan storage.ChangeEvent, sessions *storage.SessionStore, renderer Renderer, log *slog.Logger) *Client {
	return &Client{
		reconciler: reconciler,
		transport:  transport,
		dial:       dial,
		changes:    changes,
		sessions:   sessions,
		renderer:   renderer,
		actions:    make(chan action),
		connected:  true,
		log:        log,
	}
}

// Run sends the login event then reconciles until ctx is done.
// Losing the relay does not stop the loop: history and sibling sync keep
// working and sends are recorded as failed.
func (c *Client) Run(ctx context.Context) error {
	if err := c.reconciler.Restore(); err != nil {
		return err
	}
	if err := c.emit(wire.Login(c.reconciler.Local())); err != nil {
		c.log.Warn("Login event not sent", "error", err)
	}
	c.render()

	c.events = c.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-c.events:
			if !ok {
				c.log.Warn("Relay unreachable, working offline")
				c.events = nil
				c.connected = false
				break
			}
			if err := c.reconciler.Apply(evt); err != nil {
				c.log.Error("Event not applied", "event", evt.EventName(), "error", err)
			}
		case change := <-c.changes:
			if change.Key != storage.HistoryKey {
				continue
			}
			// Malformed writes are already logged, the view stays as is
			_ = c.reconciler.ApplyStorageChange(change.NewValue)
		case a := <-c.actions:
			a.done <- a.fn()
		}
		c.render()
	}
}

// do runs fn on the loop goroutine and waits for its result.
func (c *Client) do(ctx context.Context, fn func() error) error {
	a := action{fn: fn, done: make(chan error, 1)}
	select {
	case c.actions <- a:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-a.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send appends the message locally, then submits it to the relay.
// When the relay step is dropped the message stays in the history as failed
// and ErrDisconnected is returned.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.do(ctx, func() error {
		m, err := c.reconciler.Compose(text)
		if err != nil {
			return err
		}
		sendErr := c.submit(m)
		if err := c.emit(wire.StopTyping()); err != nil {
			c.log.Debug("Stop typing not sent", "error", err)
		}
		if err := c.reconciler.MarkRead(m.ID); err != nil {
			return err
		}
		return sendErr
	})
}

// Retry submits every failed message again, with its original id.
// A lost connection is dialed again first, then the login is replayed.
// It returns how many were handed to the transport.
func (c *Client) Retry(ctx context.Context) (int, error) {
	retried := 0
	err := c.do(ctx, func() error {
		if err := c.reconnect(ctx); err != nil {
			return err
		}
		for _, failed := range c.reconciler.Failed() {
			m, ok, err := c.reconciler.MarkPending(failed.ID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := c.submit(m); err != nil {
				return err
			}
			retried++
		}
		return nil
	})
	return retried, err
}

func (c *Client) reconnect(ctx context.Context) error {
	if c.connected {
		return nil
	}
	if c.dial == nil {
		return errors.ErrDisconnected
	}
	transport, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDisconnected, err)
	}
	_ = c.transport.Close()
	c.transport = transport
	c.events = transport.Events()
	c.connected = true
	c.log.Info("Reconnected to relay")
	return c.emit(wire.Login(c.reconciler.Local()))
}

func (c *Client) submit(m domain.Message) error {
	if err := c.emit(wire.SendMessage(m)); err != nil {
		c.log.Warn("Message not relayed", "id", m.ID, "error", err)
		if markErr := c.reconciler.MarkFailed(m.ID); markErr != nil {
			return markErr
		}
		return err
	}
	return nil
}

func (c *Client) Typing(ctx context.Context) error {
	return c.do(ctx, func() error {
		return c.emit(wire.Typing(c.reconciler.Local()))
	})
}

func (c *Client) StopTyping(ctx context.Context) error {
	return c.do(ctx, func() error { return c.emit(wire.StopTyping()) })
}

func (c *Client) MarkRead(ctx context.Context, id domain.MessageID) error {
	return c.do(ctx, func() error { return c.reconciler.MarkRead(id) })
}

// Clear empties the history of every instance sharing the store.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, c.reconciler.Clear)
}

// Logout forgets the identity of this instance and closes the connection,
// which takes the user offline on the relay.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, func() error {
		if err := c.sessions.Clear(); err != nil {
			return err
		}
		c.connected = false
		return c.transport.Close()
	})
}

func (c *Client) View(ctx context.Context) (View, error) {
	var view View
	err := c.do(ctx, func() error {
		view = c.view()
		return nil
	})
	return view, err
}

func (c *Client) emit(env wire.Envelope, err error) error {
	if err != nil {
		return err
	}
	if !c.connected {
		return errors.ErrDisconnected
	}
	if err := c.transport.Emit(env); err != nil {
		c.connected = false
		return err
	}
	return nil
}

func (c *Client) view() View {
	view := View{
		Local:    c.reconciler.Local(),
		Messages: c.reconciler.Messages(),
		Presence: c.reconciler.Presence(),
		Online:   c.connected,
	}
	if who, ok := c.reconciler.Typing(); ok {
		view.Typing = &who
	}
	return view
}

func (c *Client) render() {
	if c.renderer != nil {
		c.renderer.Render(c.view())
	}
}
