package repositories

import (
	"chat-relay/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Record_Multiple_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)
	at := time.Now().UTC()
	messages := []domain.Message{
		{ID: 3, Text: "first", Sender: "SAMUEL"},
		{ID: 1, Text: "second", Sender: "ANJOLA"},
		{ID: 2, Text: "third", Sender: "SAMUEL"},
	}
	for i, m := range messages {
		_, err := repository.StoreMessage(m, at.Add(time.Duration(i)*time.Second))
		req.NoError(err)
	}

	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Len(fetched, len(messages))
	// Arrival order is kept, ids are not used for ordering
	for i, l := range fetched {
		req.Equal(uint64(i+1), l.Seq)
		req.Equal(messages[i], l.Message)
	}
	req.Equal(uint64(3), repository.Count())
}

func Test_Record_Multiple_Message_And_Limit(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewMessageRepository(openTestDB(t), slog.Default(), &limit)
	at := time.Now().UTC()
	for i := 1; i <= 3; i++ {
		_, err := repository.StoreMessage(domain.Message{ID: domain.MessageID(i), Text: "hi", Sender: "SAMUEL"}, at)
		req.NoError(err)
	}

	fetched, err := repository.GetMessages()
	req.NoError(err)

	// Then only the most recent ones are returned, oldest first
	req.Len(fetched, limit)
	req.Equal(domain.MessageID(2), fetched[0].Message.ID)
	req.Equal(domain.MessageID(3), fetched[1].Message.ID)
}

func Test_Record_Duplicate_Ids_Are_Both_Kept(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)
	message := domain.Message{ID: 1001, Text: "hi", Sender: "SAMUEL"}

	_, err := repository.StoreMessage(message, time.Now())
	req.NoError(err)
	_, err = repository.StoreMessage(message, time.Now())
	req.NoError(err)

	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Len(fetched, 2)
}

func Test_Record_Strips_Delivery_Status(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	logged, err := repository.StoreMessage(domain.Message{ID: 7, Text: "x", Sender: "SAMUEL", Status: domain.StatusPending}, time.Now())
	req.NoError(err)
	req.Empty(logged.Message.Status)
}
