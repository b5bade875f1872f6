package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, store *LocalStore, keys ...string) <-chan ChangeEvent {
	t.Helper()
	out := make(chan ChangeEvent, 16)
	watcher, err := NewWatcher(store, out, logs.GetLoggerFromLevel(slog.LevelDebug), keys...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = watcher.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return out
}

func TestWatcher_Reports_Sibling_Writes_Only(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	mine, err := NewLocalStore(dir)
	req.NoError(err)
	sibling, err := NewLocalStore(dir)
	req.NoError(err)
	changes := startWatcher(t, mine, HistoryKey)

	// When this instance writes
	req.NoError(mine.Set(HistoryKey, []byte(`[{"id":1,"text":"a","sender":"SAMUEL","read":false}]`)))
	// Then nothing is reported
	req.Never(func() bool { return len(changes) > 0 }, 200*time.Millisecond, 10*time.Millisecond)

	// When a sibling writes
	written := []byte(`[{"id":2,"text":"b","sender":"ANJOLA","read":false}]`)
	req.NoError(sibling.Set(HistoryKey, written))

	// Then the new value is reported
	select {
	case change := <-changes:
		req.Equal(HistoryKey, change.Key)
		req.Equal(written, change.NewValue)
	case <-time.After(2 * time.Second):
		req.Fail("sibling write not reported")
	}
}

func TestWatcher_Ignores_Other_Keys(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	mine, err := NewLocalStore(dir)
	req.NoError(err)
	sibling, err := NewLocalStore(dir)
	req.NoError(err)
	changes := startWatcher(t, mine, HistoryKey)

	req.NoError(sibling.Set("session-tab-2", []byte("ANJOLA")))

	req.Never(func() bool { return len(changes) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestWatcher_Reports_Removal(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	mine, err := NewLocalStore(dir)
	req.NoError(err)
	sibling, err := NewLocalStore(dir)
	req.NoError(err)
	req.NoError(sibling.Set(HistoryKey, []byte(`[]`)))
	changes := startWatcher(t, mine)

	req.NoError(sibling.Remove(HistoryKey))

	select {
	case change := <-changes:
		req.Equal(HistoryKey, change.Key)
		req.Nil(change.NewValue)
	case <-time.After(2 * time.Second):
		req.Fail("removal not reported")
	}
}
