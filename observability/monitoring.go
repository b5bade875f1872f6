package observability

import (
	"log/slog"
	"maps"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RelayStats aggregates every metric exposed on /stats.
type RelayStats struct {
	ConnectedSessions  int64  `json:"connected_sessions"`
	BoundSessions      int64  `json:"bound_sessions"`
	OnlineIdentities   int64  `json:"online_identities"`
	MessagesRelayed    uint64 `json:"messages_relayed"`
	PresenceBroadcasts uint64 `json:"presence_broadcasts"`
	TypingSignals      uint64 `json:"typing_signals"`
	RejectedLogins     uint64 `json:"rejected_logins"`
	DroppedDeliveries  uint64 `json:"dropped_deliveries"`

	// Backlog is the sampled length of the internal queues, by name
	Backlog map[string]int `json:"backlog,omitempty"`

	// --- PROCESS METRICS ---
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	UpdatedAt  string  `json:"updated_at"`
}

// RelayMetrics is written by the relay event loop and read by the heartbeat
// and the HTTP layer. Counters are atomic, gauges are replaced wholesale.
type RelayMetrics struct {
	connectedSessions atomic.Int64
	boundSessions     atomic.Int64
	onlineIdentities  atomic.Int64

	messagesRelayed    atomic.Uint64
	presenceBroadcasts atomic.Uint64
	typingSignals      atomic.Uint64
	rejectedLogins     atomic.Uint64
	droppedDeliveries  atomic.Uint64

	mu      sync.RWMutex
	process RelayStats
	backlog map[string]int
}

func NewRelayMetrics() *RelayMetrics {
	return &RelayMetrics{backlog: make(map[string]int)}
}

// SetSessions is called by the relay loop after each connection change.
func (m *RelayMetrics) SetSessions(connected, bound, online int) {
	m.connectedSessions.Store(int64(connected))
	m.boundSessions.Store(int64(bound))
	m.onlineIdentities.Store(int64(online))
}

func (m *RelayMetrics) IncrMessagesRelayed()    { m.messagesRelayed.Add(1) }
func (m *RelayMetrics) IncrPresenceBroadcasts() { m.presenceBroadcasts.Add(1) }
func (m *RelayMetrics) IncrTypingSignals()      { m.typingSignals.Add(1) }
func (m *RelayMetrics) IncrRejectedLogins()     { m.rejectedLogins.Add(1) }
func (m *RelayMetrics) IncrDroppedDeliveries()  { m.droppedDeliveries.Add(1) }

// UpdateProcess records process level metrics collected by the heartbeat.
func (m *RelayMetrics) UpdateProcess(rss uint64, cpu float64) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.process.RSSBytes = rss
	m.process.CPUPercent = cpu
	m.process.AllocMemMb = mem.Alloc / 1024 / 1024
	m.process.NumGC = mem.NumGC
	m.process.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// SetBacklog records the current length of a named queue.
func (m *RelayMetrics) SetBacklog(name string, length int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backlog[name] = length
}

func (m *RelayMetrics) GetLatest() RelayStats {
	m.mu.RLock()
	stats := m.process
	if len(m.backlog) > 0 {
		stats.Backlog = maps.Clone(m.backlog)
	}
	m.mu.RUnlock()

	stats.ConnectedSessions = m.connectedSessions.Load()
	stats.BoundSessions = m.boundSessions.Load()
	stats.OnlineIdentities = m.onlineIdentities.Load()
	stats.MessagesRelayed = m.messagesRelayed.Load()
	stats.PresenceBroadcasts = m.presenceBroadcasts.Load()
	stats.TypingSignals = m.typingSignals.Load()
	stats.RejectedLogins = m.rejectedLogins.Load()
	stats.DroppedDeliveries = m.droppedDeliveries.Load()
	return stats
}

// LogValue lets a RelayStats be passed directly to slog.
func (s RelayStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("sessions", s.ConnectedSessions),
		slog.Int64("bound", s.BoundSessions),
		slog.Int64("online", s.OnlineIdentities),
		slog.Uint64("messages", s.MessagesRelayed),
		slog.Uint64("presence_broadcasts", s.PresenceBroadcasts),
		slog.Uint64("typing", s.TypingSignals),
		slog.Uint64("dropped", s.DroppedDeliveries),
		slog.Uint64("rss_bytes", s.RSSBytes),
		slog.Float64("cpu_percent", s.CPUPercent),
	)
}
