//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/repositories"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives events pushed by the relay.
// Implementations must not block: a session that cannot keep up loses events.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRelay is what the services need from the relay event loop.
type IRelay interface {
	CheckMembership(identity domain.Identity) bool
	Connect(ctx context.Context, session domain.SessionID, sink EventSink) error
	Dispatch(ctx context.Context, cmd domain.Command) error
	Snapshot(ctx context.Context) (domain.PresenceSnapshot, error)
	Messages() ([]repositories.LoggedMessage, error)
	Stats() observability.RelayStats
	Start(ctx context.Context) error
	Stop()
}
