package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayMetrics_GetLatest_Reflects_Counters(t *testing.T) {
	req := require.New(t)
	metrics := NewRelayMetrics()

	metrics.SetSessions(3, 2, 1)
	metrics.IncrMessagesRelayed()
	metrics.IncrMessagesRelayed()
	metrics.IncrPresenceBroadcasts()
	metrics.IncrTypingSignals()
	metrics.IncrDroppedDeliveries()
	metrics.UpdateProcess(1024, 1.5)

	stats := metrics.GetLatest()
	req.Equal(int64(3), stats.ConnectedSessions)
	req.Equal(int64(2), stats.BoundSessions)
	req.Equal(int64(1), stats.OnlineIdentities)
	req.Equal(uint64(2), stats.MessagesRelayed)
	req.Equal(uint64(1), stats.PresenceBroadcasts)
	req.Equal(uint64(1), stats.TypingSignals)
	req.Equal(uint64(1), stats.DroppedDeliveries)
	req.Equal(uint64(1024), stats.RSSBytes)
	req.NotEmpty(stats.UpdatedAt)
}
