package sink

import (
	"chat-relay/domain/event"
	"chat-relay/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DiskSink appends every relayed message to the transient relay log.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
	now        func() time.Time
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log, now: time.Now}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.NewMessage:
		_, err := d.repository.StoreMessage(evt.Message, d.now())
		return err
	default:
		d.log.Debug(fmt.Sprintf("Not logged event : %s", evt.EventName()))
		return nil
	}
}
