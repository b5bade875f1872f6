package sink

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDiskSink_Stores_New_Message(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	message := domain.Message{ID: 1001, Text: "hi", Sender: "SAMUEL"}

	// Given the repository expects exactly one message
	repository.EXPECT().
		StoreMessage(message, gomock.Any()).
		Return(repositories.LoggedMessage{Seq: 1, Message: message}, nil).
		Times(1)

	// When the relay broadcasts it
	err := NewDiskSink(repository, slog.Default()).Consume(context.Background(), event.NewMessage{Message: message})

	req.NoError(err)
}

func TestDiskSink_Ignores_Transient_Events(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).Times(0)
	diskSink := NewDiskSink(repository, slog.Default())

	req.NoError(diskSink.Consume(context.Background(), event.Typing{Identity: "SAMUEL"}))
	req.NoError(diskSink.Consume(context.Background(), event.StopTyping{}))
	req.NoError(diskSink.Consume(context.Background(), event.UserStatusUpdate{}))
}
