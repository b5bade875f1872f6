// Package runtime owns the relay state and the event loop that mutates it.
// It wires workers together without containing protocol rules itself.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ contract.IRelay = (*Orchestrator)(nil)

type Orchestrator struct {
	mu                sync.Mutex
	log               *slog.Logger
	permanentSinks    []contract.EventSink
	supervisor        contract.ISupervisor
	registry          *Registry
	commands          chan domain.Command
	stopped           chan struct{}
	stopOnce          sync.Once
	messageRepository repositories.IMessageRepository
	metrics           *observability.RelayMetrics
	sinkTimeout       time.Duration
	heartbeatInterval time.Duration
	bindSender        bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	messageRepository repositories.IMessageRepository, metrics *observability.RelayMetrics,
	bufferSize int, sinkTimeout, heartbeatInterval time.Duration, bindSender bool) *Orchestrator {
	return &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		registry:          registry,
		commands:          make(chan domain.Command, bufferSize),
		stopped:           make(chan struct{}),
		messageRepository: messageRepository,
		metrics:           metrics,
		sinkTimeout:       sinkTimeout,
		heartbeatInterval: heartbeatInterval,
		bindSender:        bindSender,
	}
}

// Add registers sinks that receive every relayed event, whoever is connected.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// CheckMembership only reads the allow-list, it is safe from any goroutine.
func (o *Orchestrator) CheckMembership(identity domain.Identity) bool {
	return o.registry.CheckMembership(identity)
}

// Connect hands the sink of a new connection to the event loop.
func (o *Orchestrator) Connect(ctx context.Context, session domain.SessionID, sink contract.EventSink) error {
	return o.Dispatch(ctx, workers.ConnectCommand{Session: session, Sink: sink})
}

// Dispatch queues a command for the event loop.
// It blocks while the queue is full, until ctx is done or the relay stops.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case <-o.stopped:
		return errors.ErrRelayStopped
	default:
	}
	select {
	case o.commands <- cmd:
		return nil
	case <-o.stopped:
		return errors.ErrRelayStopped
	case <-ctx.Done():
		o.log.Warn("Command not dispatched", "session_id", cmd.SessionID(), "error", ctx.Err())
		return ctx.Err()
	}
}

// Snapshot asks the event loop for the current presence mapping.
func (o *Orchestrator) Snapshot(ctx context.Context) (domain.PresenceSnapshot, error) {
	reply := make(chan domain.PresenceSnapshot, 1)
	if err := o.Dispatch(ctx, workers.SnapshotCommand{Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Messages returns the transient relay log, oldest first.
func (o *Orchestrator) Messages() ([]repositories.LoggedMessage, error) {
	return o.messageRepository.GetMessages()
}

func (o *Orchestrator) Stats() observability.RelayStats {
	return o.metrics.GetLatest()
}

// Start registers the relay loop and the sampling workers to the supervisor and
// blocks until they all stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	fanout := workers.NewEventFanout(o.log, o.permanentSinks, o.sinkTimeout, o.metrics)
	o.supervisor.Add(workers.NewRelayWorker(o.registry, o.commands, fanout, o.metrics, o.log, o.bindSender))
	if o.heartbeatInterval > 0 {
		o.supervisor.Add(
			workers.NewHeartbeatWorker(o.log, o.metrics, o.heartbeatInterval),
			workers.NewChannelCapacityWorker(o.log,
				[]workers.NamedChannel{{Name: "commands", Channel: o.commands}},
				o.metrics, o.heartbeatInterval, cap(o.commands)/10),
		)
	}
	o.mu.Unlock()

	o.log.Info("Starting relay and all supervised workers",
		"allowed", o.registry.allowList.Identities(), "bind_sender", o.bindSender)
	o.supervisor.Run(ctx)
	return nil
}

// Stop refuses new commands and cancels the supervised workers.
// Queued commands that were not handled yet are dropped.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopped)
		o.supervisor.Stop()
		o.log.Info("Relay stopped")
	})
}
