package main

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/http/server"
	wsserver "chat-relay/infrastructure/websocket/server"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the relay and blocks until a termination signal.
// Every defer runs before main decides the exit code.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	allowList := domain.ParseAllowList(config.AllowedUsers)
	if allowList.Len() == 0 {
		return fmt.Errorf("config error: ALLOWED_USERS is empty")
	}

	// 2. Transient message log, gone with the process
	db, err := repositories.OpenInMemory()
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	metrics := observability.NewRelayMetrics()
	registry := runtime.NewRegistry(allowList, time.Now)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, messageRepository, metrics,
		config.BufferSize, config.SinkTimeout, config.HeartbeatInterval, config.BindSender,
	)
	orchestrator.Add(sink.NewDiskSink(messageRepository, log))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		_ = orchestrator.Start(ctx)
	}()

	// 5. HTTP Server Setup
	chatService := services.NewChatService(orchestrator)
	opts := server.Options{
		Socket:    wsserver.NewChatServer(log, chatService, config.ConnectionBufferSize, config.SinkTimeout),
		ExposeLog: config.DebugInspect,
		StaticDir: config.StaticDir,
	}
	if config.DebugInspect {
		opts.Inspect = internal.NewInspectHandler(db, nil, func() map[string]any {
			stats := orchestrator.Stats()
			return map[string]any{
				"sessions": stats.ConnectedSessions,
				"bound":    stats.BoundSessions,
				"messages": messageRepository.Count(),
				"dropped":  stats.DroppedDeliveries,
			}
		})
	}
	handler := server.NewServer(log, services.NewAuthService(orchestrator, log), chatService, opts)

	address := net.JoinHostPort(config.Host, fmt.Sprint(config.Port))
	httpServer := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay", "address", address, "allowed", allowList.Identities(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case serveErr = <-errChan:
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	orchestrator.Stop()
	<-relayDone
	log.Info("Program stopped cleanly")

	return serveErr
}
