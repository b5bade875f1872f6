package storage

import "chat-relay/domain"

// SessionStore remembers who is logged in on one client instance.
// Each instance uses its own key, siblings never share it.
type SessionStore struct {
	store KeyValueStore
	key   string
}

func NewSessionStore(store KeyValueStore, instance string) *SessionStore {
	return &SessionStore{store: store, key: "session-" + instance}
}

func (s *SessionStore) Load() (domain.Identity, bool, error) {
	raw, ok, err := s.store.Get(s.key)
	if err != nil || !ok || len(raw) == 0 {
		return "", false, err
	}
	return domain.Identity(raw), true, nil
}

func (s *SessionStore) Save(identity domain.Identity) error {
	return s.store.Set(s.key, []byte(identity))
}

// Clear is the logout.
func (s *SessionStore) Clear() error {
	return s.store.Remove(s.key)
}
