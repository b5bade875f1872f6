// Package projection builds the local view of a client from observed events.
// Handles ordering, deduplication, and persistence of the message history.
// Does not talk to the network or render anything.
package projection

import (
	"chat-relay/domain"

	"github.com/samber/lo"
)

// Timeline is the ordered message history of one client instance.
// Arrival order is display order and no two entries share an id.
// It is not safe for concurrent use.
type Timeline struct {
	Owner    domain.Identity
	messages []domain.Message
	index    map[domain.MessageID]int
}

func NewTimeline(owner domain.Identity) *Timeline {
	return &Timeline{
		Owner:    owner,
		messages: []domain.Message{},
		index:    make(map[domain.MessageID]int),
	}
}

// Append adds m at the end, unless its id is already known.
func (t *Timeline) Append(m domain.Message) bool {
	if _, ok := t.index[m.ID]; ok {
		return false
	}
	t.index[m.ID] = len(t.messages)
	t.messages = append(t.messages, m)
	return true
}

// Replace swaps the whole history, keeping the first entry of a repeated id.
func (t *Timeline) Replace(messages []domain.Message) {
	t.messages = lo.UniqBy(messages, func(m domain.Message) domain.MessageID { return m.ID })
	t.index = make(map[domain.MessageID]int, len(t.messages))
	for i, m := range t.messages {
		t.index[m.ID] = i
	}
}

func (t *Timeline) Contains(id domain.MessageID) bool {
	_, ok := t.index[id]
	return ok
}

func (t *Timeline) Get(id domain.MessageID) (domain.Message, bool) {
	i, ok := t.index[id]
	if !ok {
		return domain.Message{}, false
	}
	return t.messages[i], true
}

// Update applies fn to the message in place. It reports whether the id exists.
func (t *Timeline) Update(id domain.MessageID, fn func(m *domain.Message)) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	fn(&t.messages[i])
	return true
}

func (t *Timeline) MarkRead(id domain.MessageID) bool {
	return t.Update(id, func(m *domain.Message) { m.Read = true })
}

func (t *Timeline) SetStatus(id domain.MessageID, status domain.DeliveryStatus) bool {
	return t.Update(id, func(m *domain.Message) { m.Status = status })
}

// Messages returns a copy, callers may keep it.
func (t *Timeline) Messages() []domain.Message {
	return append([]domain.Message{}, t.messages...)
}

func (t *Timeline) Latest() (domain.Message, bool) {
	if len(t.messages) == 0 {
		return domain.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

func (t *Timeline) Len() int { return len(t.messages) }

func (t *Timeline) Clear() {
	t.messages = []domain.Message{}
	t.index = make(map[domain.MessageID]int)
}
