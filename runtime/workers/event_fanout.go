package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"
)

// EventFanout delivers relay events to session sinks and to permanent sinks.
//
// Delivery is best effort: a sink that fails or times out loses the event,
// nothing is retried or queued. Sinks are visited one after the other so that
// every session observes events in the order the relay produced them.
type EventFanout struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
	metrics        *observability.RelayMetrics
}

func NewEventFanout(log *slog.Logger, permanentSinks []contract.EventSink,
	sinkTimeout time.Duration, metrics *observability.RelayMetrics) *EventFanout {
	return &EventFanout{
		log:            log,
		permanentSinks: permanentSinks,
		sinkTimeout:    sinkTimeout,
		metrics:        metrics,
	}
}

// Fanout sends evt to every permanent sink, then to each recipient.
// It returns how many recipients accepted the event.
func (f *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent, recipients []contract.EventSink) int {
	for _, sink := range f.permanentSinks {
		if err := f.deliver(ctx, sink, evt); err != nil {
			f.log.Error("Permanent sink failed", "event", evt.EventName(), "error", err)
		}
	}

	delivered := 0
	for _, sink := range recipients {
		if err := f.deliver(ctx, sink, evt); err != nil {
			f.metrics.IncrDroppedDeliveries()
			f.log.Warn("Event dropped for session", "event", evt.EventName(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (f *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) error {
	sinkCtx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
	defer cancel()
	return sink.Consume(sinkCtx, evt)
}
