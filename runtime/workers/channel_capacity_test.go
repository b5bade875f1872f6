package workers

import (
	"chat-relay/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Records_Backlog(t *testing.T) {
	req := require.New(t)
	metrics := observability.NewRelayMetrics()

	// Given a queue holding three pending items
	queue := make(chan int, 4)
	queue <- 1
	queue <- 2
	queue <- 3

	w := NewChannelCapacityWorker(slog.Default(), []NamedChannel{
		{Name: "commands", Channel: queue},
		{Name: "not-a-channel", Channel: 42},
	}, metrics, 10*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Then the backlog is exposed, the invalid entry is skipped
	req.Eventually(func() bool {
		return metrics.GetLatest().Backlog["commands"] == 3
	}, time.Second, 5*time.Millisecond)
	req.NotContains(metrics.GetLatest().Backlog, "not-a-channel")

	cancel()
	req.ErrorIs(<-done, context.Canceled)
}
