//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"log/slog"
)

type IAuthService interface {
	Login(username string) (domain.Identity, error)
}

// MembershipChecker answers whether an identity is on the allow-list.
type MembershipChecker interface {
	CheckMembership(identity domain.Identity) bool
}

type AuthService struct {
	members MembershipChecker
	log     *slog.Logger
}

func NewAuthService(members MembershipChecker, log *slog.Logger) IAuthService {
	return &AuthService{members: members, log: log}
}

// Login only checks membership. It binds nothing: the session is bound
// later by the login event on the socket.
func (s *AuthService) Login(username string) (domain.Identity, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Username: username}); err != nil {
		s.log.Debug("Login refused", "username", username, "error", err)
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidUsername, err)
	}
	identity := domain.Identity(username)
	if !s.members.CheckMembership(identity) {
		s.log.Info("Login refused, not a member", "username", username)
		return "", errors.ErrNotMember
	}
	return identity, nil
}
