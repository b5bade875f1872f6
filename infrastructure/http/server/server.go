// Package server is the HTTP glue around the relay: login, health, stats,
// the websocket endpoint and the static client.
package server

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/repositories"
	"chat-relay/services"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

// loginRejection is the body of every refused login.
const loginRejection = "Invalid username. Only authorised username only."

// Options enables the optional routes. ExposeLog serves the relay log on GET /messages.
type Options struct {
	Socket    http.Handler
	Inspect   http.Handler
	ExposeLog bool
	StaticDir string
}

type Server struct {
	authService services.IAuthService
	chatService services.IChatService
	log         *slog.Logger
	mux         *http.ServeMux
}

func NewServer(log *slog.Logger, authService services.IAuthService, chatService services.IChatService, opts Options) *Server {
	s := &Server{authService: authService, chatService: chatService, log: log, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /login", s.login)
	s.mux.HandleFunc("GET /render-health", s.renderHealth)
	s.mux.HandleFunc("GET /health", s.health)
	s.mux.HandleFunc("GET /stats", s.stats)
	if opts.Socket != nil {
		s.mux.Handle("/socket", opts.Socket)
	}
	if opts.Inspect != nil {
		s.mux.Handle("GET /inspect", opts.Inspect)
	}
	if opts.ExposeLog {
		s.mux.HandleFunc("GET /messages", s.messages)
	}
	if opts.StaticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(opts.StaticDir)))
	}
	return s
}

// ServeHTTP lets any origin call the relay, like the browser client expects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

type loginResponse struct {
	Username domain.Identity `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// login only tells the caller whether the username is a member.
// It never touches presence.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.log.Debug("Login body not decoded", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: loginRejection})
		return
	}
	identity, err := s.authService.Login(body.Username)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: loginRejection})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Username: identity})
}

func (s *Server) renderHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type healthResponse struct {
	Status string            `json:"status"`
	Online []domain.Identity `json:"online"`
}

// health asks the event loop for presence, so a stuck loop shows up here.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.chatService.Presence(r.Context())
	if err != nil {
		s.log.Warn("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Online: snapshot.Online()})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.chatService.Stats())
}

type loggedMessage struct {
	Seq     uint64         `json:"seq"`
	Message domain.Message `json:"message"`
	At      int64          `json:"at"`
}

// messages lists the most recent relayed messages, oldest first.
func (s *Server) messages(w http.ResponseWriter, _ *http.Request) {
	logged, err := s.chatService.Messages()
	if err != nil {
		s.log.Error("Relay log not read", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(logged, func(l repositories.LoggedMessage, _ int) loggedMessage {
		return loggedMessage{Seq: l.Seq, Message: l.Message, At: l.At.UnixMilli()}
	}))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
