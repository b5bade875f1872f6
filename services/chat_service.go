//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/repositories"
	"context"
)

// IChatService is what the transports need from the relay.
type IChatService interface {
	Join(ctx context.Context, session domain.SessionID, sink contract.EventSink) error
	Handle(ctx context.Context, cmd domain.Command) error
	Leave(ctx context.Context, session domain.SessionID) error
	Presence(ctx context.Context) (domain.PresenceSnapshot, error)
	Messages() ([]repositories.LoggedMessage, error)
	Stats() observability.RelayStats
}

type ChatService struct {
	relay contract.IRelay
}

func NewChatService(relay contract.IRelay) *ChatService {
	return &ChatService{relay: relay}
}

func (s *ChatService) Join(ctx context.Context, session domain.SessionID, sink contract.EventSink) error {
	return s.relay.Connect(ctx, session, sink)
}

func (s *ChatService) Handle(ctx context.Context, cmd domain.Command) error {
	return s.relay.Dispatch(ctx, cmd)
}

// Leave unbinds the session, which broadcasts presence if it was logged in.
func (s *ChatService) Leave(ctx context.Context, session domain.SessionID) error {
	return s.relay.Dispatch(ctx, domain.DisconnectCommand{Session: session})
}

func (s *ChatService) Presence(ctx context.Context) (domain.PresenceSnapshot, error) {
	return s.relay.Snapshot(ctx)
}

// Messages returns the relay log, limited to the most recent LIMIT_MESSAGES.
func (s *ChatService) Messages() ([]repositories.LoggedMessage, error) {
	return s.relay.Messages()
}

func (s *ChatService) Stats() observability.RelayStats {
	return s.relay.Stats()
}
