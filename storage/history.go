package storage

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// HistoryKey holds the JSON array of every message an instance knows about.
const HistoryKey = "messages"

type HistoryStore struct {
	store KeyValueStore
}

func NewHistoryStore(store KeyValueStore) *HistoryStore {
	return &HistoryStore{store: store}
}

// Load returns an empty history when nothing was saved yet.
func (h *HistoryStore) Load() ([]domain.Message, error) {
	raw, ok, err := h.store.Get(HistoryKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Message{}, nil
	}
	return DecodeHistory(raw)
}

// Save replaces the stored history with the full sequence.
func (h *HistoryStore) Save(messages []domain.Message) error {
	if messages == nil {
		messages = []domain.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return h.store.Set(HistoryKey, raw)
}

// DecodeHistory parses a stored history. Entries repeating an id are
// dropped, the first occurrence wins.
func DecodeHistory(raw []byte) ([]domain.Message, error) {
	if len(raw) == 0 {
		return []domain.Message{}, nil
	}
	var messages []domain.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedHistory, err)
	}
	if messages == nil {
		return []domain.Message{}, nil
	}
	return lo.UniqBy(messages, func(m domain.Message) domain.MessageID { return m.ID }), nil
}
