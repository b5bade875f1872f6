package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"context"
	"fmt"
	"log/slog"
)

// RelayState is the single-writer state the relay loop mutates.
// runtime.Registry implements it.
type RelayState interface {
	Attach(sessionID domain.SessionID, sink contract.EventSink)
	Bind(sessionID domain.SessionID, id domain.Identity) bool
	Unbind(sessionID domain.SessionID) (domain.Identity, bool)
	BoundIdentity(sessionID domain.SessionID) (domain.Identity, bool)
	Presence() domain.PresenceSnapshot
	Sinks() []contract.EventSink
	SinksExcept(origin domain.SessionID) []contract.EventSink
	SessionCount() int
	BoundCount() int
}

// ConnectCommand registers the outbound sink of a new connection.
type ConnectCommand struct {
	Session domain.SessionID
	Sink    contract.EventSink
}

func (c ConnectCommand) SessionID() domain.SessionID { return c.Session }

// SnapshotCommand asks the loop for a copy of the presence mapping.
// Reply must be buffered, the loop never waits on it.
type SnapshotCommand struct {
	Reply chan domain.PresenceSnapshot
}

func (SnapshotCommand) SessionID() domain.SessionID { return "" }

// RelayWorker is the relay event loop: every command runs to completion
// before the next one is read, so the state needs no lock.
type RelayWorker struct {
	state      RelayState
	commands   chan domain.Command
	fanout     *EventFanout
	metrics    *observability.RelayMetrics
	log        *slog.Logger
	bindSender bool
}

func NewRelayWorker(state RelayState, commands chan domain.Command, fanout *EventFanout,
	metrics *observability.RelayMetrics, log *slog.Logger, bindSender bool) *RelayWorker {
	return &RelayWorker{
		state:      state,
		commands:   commands,
		fanout:     fanout,
		metrics:    metrics,
		log:        log,
		bindSender: bindSender,
	}
}

func (w *RelayWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping relay worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			w.Handle(ctx, cmd)
		}
	}
}

// Handle applies one command to the state and fans out what it produced.
func (w *RelayWorker) Handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case ConnectCommand:
		w.state.Attach(c.Session, c.Sink)
		w.log.Debug("Session connected", "session_id", c.Session)
	case domain.LoginCommand:
		w.login(ctx, c)
	case domain.DisconnectCommand:
		w.disconnect(ctx, c)
	case domain.SendMessageCommand:
		w.sendMessage(ctx, c)
	case domain.TypingCommand:
		w.metrics.IncrTypingSignals()
		w.fanout.Fanout(ctx, event.Typing{Identity: c.Identity}, w.state.SinksExcept(c.Session))
	case domain.StopTypingCommand:
		w.metrics.IncrTypingSignals()
		w.fanout.Fanout(ctx, event.StopTyping{}, w.state.SinksExcept(c.Session))
	case SnapshotCommand:
		select {
		case c.Reply <- w.state.Presence():
		default:
			w.log.Warn("Snapshot reply dropped")
		}
	default:
		w.log.Warn("Unknown command", "type", fmt.Sprintf("%T", cmd))
	}
	w.refreshGauges()
}

// login is a silent no-op for a non-member, the transport gets no answer.
func (w *RelayWorker) login(ctx context.Context, c domain.LoginCommand) {
	if !w.state.Bind(c.Session, c.Identity) {
		w.metrics.IncrRejectedLogins()
		w.log.Info("Login ignored", "session_id", c.Session, "identity", c.Identity)
		return
	}
	w.log.Info("User logged in", "session_id", c.Session, "identity", c.Identity)
	w.broadcastPresence(ctx)
}

func (w *RelayWorker) disconnect(ctx context.Context, c domain.DisconnectCommand) {
	id, wasBound := w.state.Unbind(c.Session)
	if !wasBound {
		w.log.Debug("Anonymous session left", "session_id", c.Session)
		return
	}
	w.log.Info("User disconnected", "session_id", c.Session, "identity", id)
	w.broadcastPresence(ctx)
}

// broadcastPresence sends the full presence mapping to every session,
// the one that triggered the change included.
func (w *RelayWorker) broadcastPresence(ctx context.Context) {
	w.metrics.IncrPresenceBroadcasts()
	w.fanout.Fanout(ctx, event.UserStatusUpdate{Presence: w.state.Presence()}, w.state.Sinks())
}

// sendMessage echoes the message to every session, the sender included.
// Unbound sessions may send, their sender field is trusted as is.
func (w *RelayWorker) sendMessage(ctx context.Context, c domain.SendMessageCommand) {
	message := c.Message.Wire()
	if bound, ok := w.state.BoundIdentity(c.Session); ok && w.bindSender && message.Sender != bound {
		w.log.Warn("Sender rewritten to bound identity",
			"session_id", c.Session, "claimed", message.Sender, "identity", bound)
		message.Sender = bound
	}
	w.metrics.IncrMessagesRelayed()
	w.fanout.Fanout(ctx, event.NewMessage{Message: message}, w.state.Sinks())
}

func (w *RelayWorker) refreshGauges() {
	w.metrics.SetSessions(w.state.SessionCount(), w.state.BoundCount(), len(w.state.Presence().Online()))
}
