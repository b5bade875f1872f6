//go:generate go run go.uber.org/mock/mockgen -source=reconciler.go -destination=../mocks/mock_reconciler.go -package=mocks
package projection

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/storage"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

type HistoryPersister interface {
	Load() ([]domain.Message, error)
	Save(messages []domain.Message) error
}

// Notifier raises a user-facing notification for an incoming message.
type Notifier interface {
	Notify(m domain.Message)
}

// Attention describes the user in front of this instance.
type Attention interface {
	Focused() bool
	NotificationsAllowed() bool
}

// Reconciler merges relay events and sibling writes into the view of one
// client instance. It must only be driven from the client event loop.
//
// Every history mutation is persisted in full; the write is what tells
// sibling instances to reload.
type Reconciler struct {
	local     domain.Identity
	timeline  *Timeline
	presence  domain.PresenceSnapshot
	typing    *domain.Identity
	history   HistoryPersister
	notifier  Notifier
	attention Attention
	ids       *domain.IDGenerator
	notified  map[domain.MessageID]struct{}
	log       *slog.Logger
}

func NewReconciler(local domain.Identity, history HistoryPersister, notifier Notifier,
	attention Attention, ids *domain.IDGenerator, log *slog.Logger) *Reconciler {
	return &Reconciler{
		local:     local,
		timeline:  NewTimeline(local),
		presence:  domain.PresenceSnapshot{},
		history:   history,
		notifier:  notifier,
		attention: attention,
		ids:       ids,
		notified:  make(map[domain.MessageID]struct{}),
		log:       log,
	}
}

// Restore loads the persisted history. An unreadable history starts empty.
func (r *Reconciler) Restore() error {
	messages, err := r.history.Load()
	if errors.Is(err, errors.ErrMalformedHistory) {
		r.log.Warn("Stored history unreadable, starting empty", "error", err)
		r.timeline.Clear()
		return nil
	}
	if err != nil {
		return err
	}
	r.timeline.Replace(messages)
	r.log.Debug("History restored", "messages", r.timeline.Len())
	return nil
}

// Apply routes a relay event to its handler.
func (r *Reconciler) Apply(e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.NewMessage:
		_, err := r.ApplyNewMessage(evt.Message)
		return err
	case event.UserStatusUpdate:
		r.ApplyPresence(evt.Presence)
	case event.Typing:
		r.ApplyTyping(evt.Identity)
	case event.StopTyping:
		r.ApplyStopTyping()
	case event.MessageRead:
		return r.MarkRead(evt.ID)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownEvent, e.EventName())
	}
	return nil
}

// ApplyNewMessage appends m unless its id is known, and reports whether it did.
// The echo of a message this instance sent confirms it: its status becomes sent.
func (r *Reconciler) ApplyNewMessage(m domain.Message) (bool, error) {
	if existing, ok := r.timeline.Get(m.ID); ok {
		if existing.Status == domain.StatusPending || existing.Status == domain.StatusFailed {
			r.timeline.SetStatus(m.ID, domain.StatusSent)
			return false, r.persist()
		}
		return false, nil
	}
	r.timeline.Append(m.Wire())
	if err := r.persist(); err != nil {
		return true, err
	}
	r.maybeNotify(m)
	return true, nil
}

// ApplyStorageChange replaces the view with what a sibling wrote.
// A nil value means the history was removed. On a malformed value the
// current view is kept.
func (r *Reconciler) ApplyStorageChange(raw []byte) error {
	messages, err := storage.DecodeHistory(raw)
	if err != nil {
		r.log.Warn("Sibling history ignored", "error", err)
		return err
	}
	r.timeline.Replace(messages)
	if latest, ok := r.timeline.Latest(); ok {
		r.maybeNotify(latest)
	}
	return nil
}

// ApplyPresence replaces the presence view wholesale.
func (r *Reconciler) ApplyPresence(snapshot domain.PresenceSnapshot) {
	r.presence = snapshot.Clone()
}

func (r *Reconciler) ApplyTyping(id domain.Identity) {
	r.typing = lo.ToPtr(id)
}

func (r *Reconciler) ApplyStopTyping() {
	r.typing = nil
}

// Compose stamps a new message from the local user and appends it before the
// relay ever sees it. It stays pending until its echo comes back.
func (r *Reconciler) Compose(text string) (domain.Message, error) {
	m := domain.Message{
		ID:     r.ids.Next(),
		Text:   text,
		Sender: r.local,
		Status: domain.StatusPending,
	}
	r.timeline.Append(m)
	return m, r.persist()
}

// MarkFailed records that the relay step of a send was dropped.
func (r *Reconciler) MarkFailed(id domain.MessageID) error {
	m, ok := r.timeline.Get(id)
	if !ok || m.Status == domain.StatusSent {
		return nil
	}
	r.timeline.SetStatus(id, domain.StatusFailed)
	return r.persist()
}

// MarkPending puts a failed message back in flight before a retry.
func (r *Reconciler) MarkPending(id domain.MessageID) (domain.Message, bool, error) {
	m, ok := r.timeline.Get(id)
	if !ok || m.Status != domain.StatusFailed {
		return domain.Message{}, false, nil
	}
	r.timeline.SetStatus(id, domain.StatusPending)
	m.Status = domain.StatusPending
	return m, true, r.persist()
}

func (r *Reconciler) MarkRead(id domain.MessageID) error {
	m, ok := r.timeline.Get(id)
	if !ok || m.Read {
		return nil
	}
	r.timeline.MarkRead(id)
	return r.persist()
}

// Clear empties the history here and, through the store, on every sibling.
func (r *Reconciler) Clear() error {
	r.timeline.Clear()
	return r.persist()
}

func (r *Reconciler) Failed() []domain.Message {
	return lo.Filter(r.timeline.Messages(), func(m domain.Message, _ int) bool {
		return m.Status == domain.StatusFailed
	})
}

func (r *Reconciler) Local() domain.Identity { return r.local }

func (r *Reconciler) Messages() []domain.Message { return r.timeline.Messages() }

func (r *Reconciler) Presence() domain.PresenceSnapshot { return r.presence.Clone() }

// Typing returns who is typing, if anyone.
func (r *Reconciler) Typing() (domain.Identity, bool) {
	if r.typing == nil {
		return "", false
	}
	return *r.typing, true
}

func (r *Reconciler) persist() error {
	if err := r.history.Save(r.timeline.Messages()); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// maybeNotify never fires twice for the same id, whichever source saw it first.
func (r *Reconciler) maybeNotify(m domain.Message) {
	if m.Sender == r.local {
		return
	}
	if _, done := r.notified[m.ID]; done {
		return
	}
	if r.attention.Focused() || !r.attention.NotificationsAllowed() {
		return
	}
	r.notified[m.ID] = struct{}{}
	r.notifier.Notify(m)
}
