package e2e

import (
	"chat-relay/client"
	"chat-relay/domain"
	"chat-relay/infrastructure/http/server"
	wsserver "chat-relay/infrastructure/websocket/server"
	"chat-relay/observability"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
	"chat-relay/storage"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseRelaySuite runs a complete relay behind an httptest server and
// starts terminal-less clients against it.
type BaseRelaySuite struct {
	suite.Suite
	Config       Config
	log          *slog.Logger
	orchestrator *runtime.Orchestrator
	server       *httptest.Server
	cancel       context.CancelFunc
	done         chan struct{}
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	level := slog.LevelWarn
	if s.Config.DebugLogs {
		level = slog.LevelDebug
	}
	s.log = logs.GetLoggerFromLevel(level)
}

// SetupTest starts a fresh relay so presence never leaks between tests.
func (s *BaseRelaySuite) SetupTest() {
	db, err := repositories.OpenInMemory()
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	repository := repositories.NewMessageRepository(db, s.log, nil)
	s.orchestrator = runtime.NewOrchestrator(s.log,
		workers.NewSupervisor(s.log, 10*time.Millisecond),
		runtime.NewRegistry(domain.ParseAllowList(s.Config.AllowedUsers), time.Now),
		repository, observability.NewRelayMetrics(),
		64, time.Second, 0, true)
	s.orchestrator.Add(sink.NewDiskSink(repository, s.log))

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = s.orchestrator.Start(ctx)
	}()

	chatService := services.NewChatService(s.orchestrator)
	s.server = httptest.NewServer(server.NewServer(s.log, services.NewAuthService(s.orchestrator, s.log), chatService,
		server.Options{Socket: wsserver.NewChatServer(s.log, chatService, 64, time.Second)}))
}

func (s *BaseRelaySuite) TearDownTest() {
	s.server.CloseClientConnections()
	s.server.Close()
	s.cancel()
	<-s.done
}

// Step prints a colorized header before running a scenario step.
func (s *BaseRelaySuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	fn()
}

// Instance is one running client with everything it was built from.
type Instance struct {
	Client    *client.Client
	Notifier  *RecordingNotifier
	Attention *client.AttentionState
	transport *client.WSTransport
	cancel    context.CancelFunc
	done      chan error
	stopOnce  sync.Once
}

// Disconnect closes the socket, the relay then takes the session offline.
func (i *Instance) Disconnect() {
	_ = i.transport.Close()
}

// Stop ends the client loop.
func (i *Instance) Stop() {
	i.stopOnce.Do(func() {
		i.cancel()
		<-i.done
	})
}

// StartInstance logs in over HTTP, then connects a client sharing dataDir
// with every other instance started on the same dir.
func (s *BaseRelaySuite) StartInstance(username, dataDir, instance string) *Instance {
	ctx, cancel := context.WithCancel(context.Background())

	identity, err := client.Login(ctx, http.DefaultClient, s.server.URL, username)
	s.Require().NoError(err)

	store, err := storage.NewLocalStore(dataDir)
	s.Require().NoError(err)
	sessions := storage.NewSessionStore(store, instance)
	s.Require().NoError(sessions.Save(identity))

	changes := make(chan storage.ChangeEvent, 16)
	watcher, err := storage.NewWatcher(store, changes, s.log, storage.HistoryKey)
	s.Require().NoError(err)
	go func() { _ = watcher.Run(ctx) }()

	transport, err := client.Dial(ctx, client.SocketURL(s.server.URL), 16, s.log)
	s.Require().NoError(err)

	notifier := &RecordingNotifier{}
	attention := client.NewAttentionState(true)
	reconciler := projection.NewReconciler(identity, storage.NewHistoryStore(store), notifier, attention,
		domain.NewIDGenerator(), s.log)
	chat := client.NewClient(reconciler, transport, nil, changes, sessions, nil, s.log)

	done := make(chan error, 1)
	go func() { done <- chat.Run(ctx) }()

	i := &Instance{Client: chat, Notifier: notifier, Attention: attention, transport: transport, cancel: cancel, done: done}
	s.T().Cleanup(func() {
		i.Disconnect()
		i.Stop()
	})
	return i
}

// WaitView polls the instance view until cond holds.
func (s *BaseRelaySuite) WaitView(i *Instance, msg string, cond func(view client.View) bool) client.View {
	var last client.View
	s.Require().Eventually(func() bool {
		view, err := i.Client.View(context.Background())
		if err != nil {
			return false
		}
		last = view
		return cond(view)
	}, s.Config.Timeout, 10*time.Millisecond, msg)
	return last
}

// RecordingNotifier keeps every notification it was asked to show.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (r *RecordingNotifier) Notify(m domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *RecordingNotifier) Notified() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Message(nil), r.messages...)
}
