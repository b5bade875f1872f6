package client

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"chat-relay/projection"
	"chat-relay/storage"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// flakyRelay drops its first connection right after the login frame,
// later connections echo sendMessage frames as newMessage.
type flakyRelay struct {
	url         string
	connections atomic.Int32
	mu          sync.Mutex
	received    []string
}

func startFlakyRelay(t *testing.T) *flakyRelay {
	relay := &flakyRelay{}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		first := relay.connections.Add(1) == 1
		for {
			var env wire.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			if first {
				return
			}
			relay.record(env.Event)
			if env.Event != "sendMessage" {
				continue
			}
			env.Event = "newMessage"
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	relay.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	return relay
}

func (r *flakyRelay) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, name)
}

func (r *flakyRelay) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.received...)
}

func TestClient_Retry_Redials_Lost_Relay(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	relay := startFlakyRelay(t)
	ctx, cancel := context.WithCancel(context.Background())

	store, err := storage.NewLocalStore(t.TempDir())
	req.NoError(err)
	sessions := storage.NewSessionStore(store, "test")
	reconciler := projection.NewReconciler("SAMUEL", storage.NewHistoryStore(store),
		NewTerminalNotifier(io.Discard), NewAttentionState(true), domain.NewIDGenerator(), log)

	dial := func(ctx context.Context) (Transport, error) { return Dial(ctx, relay.url, 4, log) }
	transport, err := dial(ctx)
	req.NoError(err)
	c := NewClient(reconciler, transport, dial, make(chan storage.ChangeEvent), sessions, nil, log)

	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = c.transport.Close()
	})

	// Given the relay dropped the first connection after the login
	req.Eventually(func() bool { return !view(t, c).Online }, 2*time.Second, 10*time.Millisecond)

	// When SAMUEL sends, the message is kept as failed
	req.ErrorIs(c.Send(ctx, "hello"), errors.ErrDisconnected)
	failed := view(t, c).Messages[0]
	req.Equal(domain.StatusFailed, failed.Status)

	// When SAMUEL retries
	retried, err := c.Retry(ctx)
	req.NoError(err)
	req.Equal(1, retried)

	// Then the relay got a fresh login then the same message, and echoed it
	req.Eventually(func() bool {
		v := view(t, c)
		return v.Online && len(v.Messages) == 1 && v.Messages[0].Status == domain.StatusSent
	}, 2*time.Second, 10*time.Millisecond)
	req.Equal(failed.ID, view(t, c).Messages[0].ID)
	req.Equal([]string{"login", "sendMessage"}, relay.events())
	req.Equal(int32(2), relay.connections.Load())
}
