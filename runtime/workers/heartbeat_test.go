package workers

import (
	"chat-relay/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHeartbeatWorker_Updates_Process_Stats(t *testing.T) {
	req := require.New(t)
	metrics := observability.NewRelayMetrics()
	worker := NewHeartbeatWorker(slog.Default(), metrics, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then the resident memory of the test process shows up
	req.Eventually(func() bool { return metrics.GetLatest().RSSBytes > 0 }, 2*time.Second, 10*time.Millisecond)
	req.NotEmpty(metrics.GetLatest().UpdatedAt)

	cancel()
	req.ErrorIs(<-done, context.Canceled)
}
