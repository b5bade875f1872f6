package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// ChangeEvent tells an instance that a sibling rewrote a key.
// NewValue is nil when the key was removed.
type ChangeEvent struct {
	Key      string
	NewValue []byte
}

// Watcher turns file system notifications on a LocalStore directory into
// ChangeEvents. Writes made by the owning instance are not reported.
type Watcher struct {
	store   *LocalStore
	keys    []string
	out     chan<- ChangeEvent
	log     *slog.Logger
	watcher *fsnotify.Watcher
	seen    map[string][sha256.Size]byte
}

// NewWatcher watches the given keys, every key when none is given.
func NewWatcher(store *LocalStore, out chan<- ChangeEvent, log *slog.Logger, keys ...string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(store.Dir()); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch store dir: %w", err)
	}
	return &Watcher{
		store:   store,
		keys:    keys,
		out:     out,
		log:     log,
		watcher: fsWatcher,
		seen:    make(map[string][sha256.Size]byte),
	}, nil
}

// Run forwards changes until ctx is done. It closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			key, ok := keyOf(evt.Name)
			if !ok || (len(w.keys) > 0 && !lo.Contains(w.keys, key)) {
				continue
			}
			change, ok := w.changeOf(key, evt)
			if !ok {
				continue
			}
			select {
			case w.out <- change:
			case <-ctx.Done():
				return ctx.Err()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Store watcher error", "error", err)
		}
	}
}

// changeOf reads the key again: one write usually fires several events,
// only the first one carrying new content is forwarded.
func (w *Watcher) changeOf(key string, evt fsnotify.Event) (ChangeEvent, bool) {
	if evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if _, err := os.Stat(evt.Name); os.IsNotExist(err) {
			delete(w.seen, key)
			return ChangeEvent{Key: key}, true
		}
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return ChangeEvent{}, false
	}
	value, found, err := w.store.Get(key)
	if err != nil {
		w.log.Warn("Changed key not readable", "key", key, "error", err)
		return ChangeEvent{}, false
	}
	if !found {
		return ChangeEvent{}, false
	}
	sum := sha256.Sum256(value)
	if last, ok := w.seen[key]; ok && last == sum {
		return ChangeEvent{}, false
	}
	w.seen[key] = sum
	if w.store.WroteLast(key, value) {
		return ChangeEvent{}, false
	}
	return ChangeEvent{Key: key, NewValue: value}, true
}
