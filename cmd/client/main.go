package main

import (
	"bufio"
	"chat-relay/client"
	"chat-relay/domain"
	"chat-relay/projection"
	"chat-relay/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const help = "/who  /retry  /clear  /away  /back  /logout  /quit"

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Durable local store, shared by every instance using the same dir
	store, err := storage.NewLocalStore(config.DataDir)
	if err != nil {
		return exitConfig, err
	}
	sessions := storage.NewSessionStore(store, config.Instance)

	identity, err := resolveIdentity(ctx, config, sessions)
	if err != nil {
		return exitConfig, err
	}
	if err := sessions.Save(identity); err != nil {
		return exitRuntime, err
	}

	// 3. Sibling synchronisation
	changes := make(chan storage.ChangeEvent, config.BufferSize)
	watcher, err := storage.NewWatcher(store, changes, log, storage.HistoryKey)
	if err != nil {
		return exitRuntime, err
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("Watcher stopped", "error", err)
		}
	}()

	// 4. Relay connection
	dial := func(ctx context.Context) (client.Transport, error) {
		return client.Dial(ctx, client.SocketURL(config.ServerURL), config.BufferSize, log)
	}
	transport, err := dial(ctx)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = transport.Close() }()

	attention := client.NewAttentionState(config.Notifications)
	reconciler := projection.NewReconciler(identity, storage.NewHistoryStore(store),
		client.NewTerminalNotifier(os.Stdout), attention, domain.NewIDGenerator(), log)
	chat := client.NewClient(reconciler, transport, dial, changes, sessions,
		client.NewTerminalRenderer(os.Stdout, time.Now), log)

	runErr := make(chan error, 1)
	go func() { runErr <- chat.Run(ctx) }()

	fmt.Println(color.Gray.Sprint(help))

	// 5. Input loop
	lines := make(chan string)
	go readLines(os.Stdin, lines)
	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case err := <-runErr:
			if errors.Is(err, context.Canceled) {
				return exitOK, nil
			}
			return exitRuntime, err
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			quit, err := handleLine(ctx, chat, attention, line)
			if err != nil {
				fmt.Println(color.Red.Sprint(err))
			}
			if quit {
				return exitOK, nil
			}
		}
	}
}

// resolveIdentity reuses the identity of a previous session of this
// instance, otherwise logs in with the configured username.
func resolveIdentity(ctx context.Context, config Config, sessions *storage.SessionStore) (domain.Identity, error) {
	if config.Username == "" {
		identity, ok, err := sessions.Load()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("config error: CHAT_USERNAME is required")
		}
		return identity, nil
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return client.Login(ctx, httpClient, config.ServerURL, config.Username)
}

func handleLine(ctx context.Context, chat *client.Client, attention *client.AttentionState, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false, nil
	case "/quit":
		return true, nil
	case "/logout":
		return true, chat.Logout(ctx)
	case "/clear":
		return false, chat.Clear(ctx)
	case "/away":
		attention.SetFocused(false)
		return false, nil
	case "/back":
		attention.SetFocused(true)
		return false, nil
	case "/retry":
		n, err := chat.Retry(ctx)
		if err == nil {
			fmt.Println(color.Gray.Sprintf("%d message(s) resent", n))
		}
		return false, err
	case "/who":
		view, err := chat.View(ctx)
		if err != nil {
			return false, err
		}
		client.WritePresenceTable(os.Stdout, view.Presence, time.Now())
		return false, nil
	}
	_ = chat.Typing(ctx)
	return false, chat.Send(ctx, line)
}

func readLines(in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}
