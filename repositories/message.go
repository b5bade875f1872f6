//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// MessagePrefix is the key namespace of the transient relay log.
const MessagePrefix = "msg:"

type IMessageRepository interface {
	StoreMessage(message domain.Message, at time.Time) (LoggedMessage, error)
	GetMessages() ([]LoggedMessage, error)
	Count() uint64
}

// MessageRepository is the relay's append-only message log.
// The relay opens badger in memory, so the log disappears with the process.
// It is only an audit trail: history is never replayed to late joiners.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
	sequence      *atomic.Uint64
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages, sequence: &atomic.Uint64{}}
}

// OpenInMemory opens a badger instance that never touches the disk.
func OpenInMemory() (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.WARNING))
}

// LoggedMessage is a relayed message with its arrival rank on the relay.
type LoggedMessage struct {
	Seq     uint64
	Message domain.Message
	At      time.Time
}

type diskMessage struct {
	Seq    uint64 `json:"seq"`
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
	Read   bool   `json:"read"`
	At     int64  `json:"at"`
}

// StoreMessage appends a message to the log.
// The key is formatted as "msg:{seq_padded}:{id}" to:
//  1. Keep arrival order using 19-digit zero padding (lexicographical order).
//  2. Keep both entries when two clients submit the same id.
func (m MessageRepository) StoreMessage(message domain.Message, at time.Time) (LoggedMessage, error) {
	logged := LoggedMessage{Seq: m.sequence.Add(1), Message: message.Wire(), At: at.UTC()}
	key := MessageKey(logged.Seq, message.ID)
	bytes, err := json.Marshal(fromLoggedMessage(logged))
	if err != nil {
		return LoggedMessage{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return LoggedMessage{}, fmt.Errorf("store message %s: %w", message.ID, err)
	}
	return logged, nil
}

func MessageKey(seq uint64, id domain.MessageID) string {
	return fmt.Sprintf("%s%019d:%d", MessagePrefix, seq, id)
}

// GetMessages returns the most recent messages in arrival order.
// It stops collecting messages once the configured limitMessages is reached.
func (m MessageRepository) GetMessages() ([]LoggedMessage, error) {
	var logged []LoggedMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(MessagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Newest first: seek past the highest possible sequence
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(logged) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				logged = append(logged, toLoggedMessage(dm))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Reverse(logged), nil
}

// Count is the number of messages stored since the relay started.
func (m MessageRepository) Count() uint64 {
	return m.sequence.Load()
}

func fromLoggedMessage(l LoggedMessage) diskMessage {
	return diskMessage{
		Seq:    l.Seq,
		ID:     int64(l.Message.ID),
		Text:   l.Message.Text,
		Sender: string(l.Message.Sender),
		Read:   l.Message.Read,
		At:     l.At.UnixNano(),
	}
}

func toLoggedMessage(dm diskMessage) LoggedMessage {
	return LoggedMessage{
		Seq: dm.Seq,
		Message: domain.Message{
			ID:     domain.MessageID(dm.ID),
			Text:   dm.Text,
			Sender: domain.Identity(dm.Sender),
			Read:   dm.Read,
		},
		At: time.Unix(0, dm.At).UTC(),
	}
}
