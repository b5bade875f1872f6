package workers

import (
	"chat-relay/observability"
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically samples the length of buffered channels.
// Reading len and cap is non-blocking, so this won't interfere with the
// goroutines using them. A queue close to full means the relay loop is
// falling behind and connections will start to block on Dispatch.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metrics              *observability.RelayMetrics
	interval             time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metrics *observability.RelayMetrics, interval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		metrics:              metrics,
		interval:             interval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w ChannelCapacityWorker) sample() {
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		capacity, length := v.Cap(), v.Len()
		w.metrics.SetBacklog(nc.Name, length)
		w.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", nc.Name, length, capacity))
		if capacity <= 0 {
			// In case of unbuffered channel
			continue
		}
		capacityLeft := capacity - length
		if capacityLeft <= w.lowCapacityThreshold {
			w.log.Warn(fmt.Sprintf("Channel %s capacity left : %d", nc.Name, capacityLeft))
		}
	}
}
