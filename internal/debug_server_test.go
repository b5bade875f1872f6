package internal

import (
	"chat-relay/domain"
	"chat-relay/repositories"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInspectHandler_Lists_Message_Log(t *testing.T) {
	req := require.New(t)
	db, err := repositories.OpenInMemory()
	req.NoError(err)
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slog.Default(), nil)
	_, err = repository.StoreMessage(domain.Message{ID: 1001, Text: "hi", Sender: "SAMUEL"}, time.Now())
	req.NoError(err)

	handler := NewInspectHandler(db, nil, func() map[string]any {
		return map[string]any{"messages": repository.Count()}
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), repositories.MessageKey(1, 1001))
	req.Contains(rec.Body.String(), "<td>1001</td>")
}

func TestDefaultMapper(t *testing.T) {
	req := require.New(t)

	row := DefaultMapper("msg:0000000000000000042:1001", []byte("{}"))

	req.Equal("42", row.Seq)
	req.Equal("1001", row.MessageID)
	req.Equal("Size: 2 bytes", row.Detail)
}
