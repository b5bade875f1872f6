package auth

import (
	"chat-relay/errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// ValidateLogin rejects usernames that could never be on the allow-list.
// Membership itself is checked by the caller.
func ValidateLogin(req LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isIdentityShaped(req.Username) {
		return errors.ErrInvalidUsername
	}
	return nil
}

// isIdentityShaped mirrors how the allow-list is parsed: no separators, no
// control characters.
func isIdentityShaped(s string) bool {
	if strings.ContainsRune(s, ',') {
		return false
	}
	for _, char := range s {
		if unicode.IsSpace(char) || unicode.IsControl(char) {
			return false
		}
	}
	return true
}
