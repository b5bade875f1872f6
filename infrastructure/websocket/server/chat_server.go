package server

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"chat-relay/services"
	"chat-relay/sink"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readTimeout  = 60 * time.Second
	pingPeriod   = 30 * time.Second
	maxFrameSize = 1 << 16
)

// ChatServer upgrades HTTP requests to websocket sessions on the relay.
// Each connection gets its own SessionSink drained by a single writer goroutine.
type ChatServer struct {
	chatService          services.IChatService
	connectionBufferSize int
	writeTimeout         time.Duration
	log                  *slog.Logger
	upgrader             websocket.Upgrader
}

func NewChatServer(log *slog.Logger, chatService services.IChatService,
	connectionBufferSize int, writeTimeout time.Duration) *ChatServer {
	return &ChatServer{
		chatService:          chatService,
		connectionBufferSize: connectionBufferSize,
		writeTimeout:         writeTimeout,
		log:                  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP blocks until the client disconnects or a network error occurs.
// The session is always unbound on the way out, so a logged-in user goes
// offline whichever side closed.
func (s *ChatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	sessionID := domain.NewSessionID()
	sessionSink := sink.NewSessionSink(s.connectionBufferSize)
	ctx := r.Context()

	if err := s.chatService.Join(ctx, sessionID, sessionSink); err != nil {
		s.log.Error("Relay refused the session", "session_id", sessionID, "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "relay unavailable"),
			time.Now().Add(s.writeTimeout))
		return
	}
	s.log.Debug("Session opened", "session_id", sessionID, "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ws, sessionID, sessionSink)
	}()

	s.readLoop(ctx, ws, sessionID)

	sessionSink.Close()
	leaveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	if err := s.chatService.Leave(leaveCtx, sessionID); err != nil {
		s.log.Warn("Session not unbound", "session_id", sessionID, "error", err)
	}
	<-writerDone
	s.log.Debug("Session closed", "session_id", sessionID)
}

func (s *ChatServer) readLoop(ctx context.Context, ws *websocket.Conn, sessionID domain.SessionID) {
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var env wire.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.log.Warn("Session read failed", "session_id", sessionID, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		cmd, err := wire.DecodeCommand(sessionID, env)
		if err != nil {
			s.log.Warn("Frame ignored", "session_id", sessionID, "event", env.Event, "error", err)
			continue
		}
		if err := s.chatService.Handle(ctx, cmd); err != nil {
			s.log.Error("Command not handled", "session_id", sessionID, "event", env.Event, "error", err)
			if errors.Is(err, errors.ErrRelayStopped) {
				return
			}
		}
	}
}

// writeLoop is the only writer of frames on ws.
// A failed write closes the socket, which ends the read loop.
func (s *ChatServer) writeLoop(ws *websocket.Conn, sessionID domain.SessionID, sessionSink *sink.SessionSink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-sessionSink.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.writeTimeout))
			return
		case evt := <-sessionSink.Events:
			env, err := wire.EncodeEvent(evt)
			if err != nil {
				s.log.Error("Event not encoded", "session_id", sessionID, "event", evt.EventName(), "error", err)
				continue
			}
			_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := ws.WriteJSON(env); err != nil {
				s.log.Warn("Session write failed", "session_id", sessionID, "error", err)
				_ = ws.Close()
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = ws.Close()
				return
			}
		}
	}
}
