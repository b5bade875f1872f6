package client

import (
	"bytes"
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Login asks the relay whether username is a member.
// A refusal is returned as ErrLoginRejected carrying the relay's message.
func Login(ctx context.Context, httpClient *http.Client, baseURL, username string) (domain.Identity, error) {
	body, err := json.Marshal(auth.LoginRequest{Username: username})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(baseURL, "/")+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Username string `json:"username"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("login response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", errors.ErrLoginRejected, payload.Error)
	}
	return domain.Identity(payload.Username), nil
}

// SocketURL derives the websocket endpoint from the relay base URL.
func SocketURL(baseURL string) string {
	url := strings.TrimSuffix(baseURL, "/")
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/socket"
}
