// Package storage is the durable store shared by client instances on one
// machine. Values are files in a directory, one per key; instances watch the
// directory to learn about each other's writes.
package storage

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const fileSuffix = ".json"

type KeyValueStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

var _ KeyValueStore = (*LocalStore)(nil)

// LocalStore writes each key atomically (temp file then rename), so a
// watcher never reads half a value.
type LocalStore struct {
	mu      sync.Mutex
	dir     string
	written map[string][sha256.Size]byte
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, written: make(map[string][sha256.Size]byte)}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

// Get returns false when the key was never written or was removed.
func (s *LocalStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *LocalStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := filepath.Join(s.dir, "."+key+"-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", key, err)
	}
	s.written[key] = sha256.Sum256(value)
	return nil
}

func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.written, key)
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WroteLast reports whether value is what this instance last wrote under key.
// The watcher uses it to skip notifications about its own writes.
func (s *LocalStore) WroteLast(key string, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.written[key]
	return ok && last == sha256.Sum256(value)
}

// keyOf maps a file name back to its key. Temp files have no key.
func keyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, fileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(base, fileSuffix), true
}
