package client

import (
	"chat-relay/errors"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Username != "SAMUEL" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid username. Only authorised username only."}`))
			return
		}
		_, _ = w.Write([]byte(`{"username":"SAMUEL"}`))
	}))
	defer srv.Close()

	t.Run("member", func(t *testing.T) {
		req := require.New(t)

		identity, err := Login(context.Background(), srv.Client(), srv.URL+"/", "SAMUEL")

		req.NoError(err)
		req.EqualValues("SAMUEL", identity)
	})

	t.Run("non member", func(t *testing.T) {
		req := require.New(t)

		_, err := Login(context.Background(), srv.Client(), srv.URL, "MALLORY")

		req.ErrorIs(err, errors.ErrLoginRejected)
		req.Contains(err.Error(), "Only authorised username only")
	})
}

func TestSocketURL(t *testing.T) {
	req := require.New(t)

	req.Equal("ws://localhost:5000/socket", SocketURL("http://localhost:5000/"))
	req.Equal("wss://chat.example.com/socket", SocketURL("https://chat.example.com"))
}
