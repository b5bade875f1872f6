package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"time"

	"github.com/samber/lo"
)

type session struct {
	sink     contract.EventSink
	identity *domain.Identity
}

// Registry is the Participant Registry and the Session Binding table.
//
// It is owned by a single writer: the relay event loop. None of its methods
// lock, so it must never be shared with another goroutine. CheckMembership is
// the exception since it only reads the immutable allow-list.
type Registry struct {
	allowList domain.AllowList
	presence  domain.PresenceSnapshot
	sessions  map[domain.SessionID]*session
	order     []domain.SessionID
	now       func() time.Time
}

// NewRegistry creates one offline record per allowed identity.
// Records are never deleted for the lifetime of the process.
func NewRegistry(allowList domain.AllowList, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	presence := make(domain.PresenceSnapshot, allowList.Len())
	for _, id := range allowList.Identities() {
		presence[id] = domain.PresenceRecord{}
	}
	return &Registry{
		allowList: allowList,
		presence:  presence,
		sessions:  make(map[domain.SessionID]*session),
		now:       now,
	}
}

func (r *Registry) CheckMembership(id domain.Identity) bool {
	return r.allowList.Contains(id)
}

// Attach registers a freshly opened connection, not yet bound to anyone.
// Attaching an already known session replaces its sink and keeps its binding.
func (r *Registry) Attach(sessionID domain.SessionID, sink contract.EventSink) {
	if s, ok := r.sessions[sessionID]; ok {
		s.sink = sink
		return
	}
	r.sessions[sessionID] = &session{sink: sink}
	r.order = append(r.order, sessionID)
}

// Bind associates a session with an identity and marks the identity online.
// It returns false, changing nothing, when the identity is not a member or the
// session is unknown. A session already bound to another identity is rebound;
// the previous identity keeps its presence record untouched.
// Several sessions may be bound to the same identity, the last login wins.
func (r *Registry) Bind(sessionID domain.SessionID, id domain.Identity) bool {
	if !r.CheckMembership(id) {
		return false
	}
	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	s.identity = lo.ToPtr(id)
	r.presence[id] = domain.Connected()
	return true
}

// Unbind forgets a closed connection. When the session was bound, its identity
// goes offline with lastSeen set to now and the identity is returned with true.
func (r *Registry) Unbind(sessionID domain.SessionID) (domain.Identity, bool) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return "", false
	}
	delete(r.sessions, sessionID)
	r.order = lo.Without(r.order, sessionID)

	if s.identity == nil {
		return "", false
	}
	id := *s.identity
	r.presence[id] = domain.Disconnected(r.now())
	return id, true
}

func (r *Registry) BoundIdentity(sessionID domain.SessionID) (domain.Identity, bool) {
	s, ok := r.sessions[sessionID]
	if !ok || s.identity == nil {
		return "", false
	}
	return *s.identity, true
}

// Presence returns a copy of the full presence mapping.
func (r *Registry) Presence() domain.PresenceSnapshot {
	return r.presence.Clone()
}

func (r *Registry) Record(id domain.Identity) (domain.PresenceRecord, bool) {
	record, ok := r.presence[id]
	return record, ok
}

// Sinks returns the sinks of every connected session, in connection order.
func (r *Registry) Sinks() []contract.EventSink {
	return lo.Map(r.order, func(id domain.SessionID, _ int) contract.EventSink {
		return r.sessions[id].sink
	})
}

// SinksExcept returns every sink but the one of the originating session.
func (r *Registry) SinksExcept(origin domain.SessionID) []contract.EventSink {
	others := lo.Without(r.order, origin)
	return lo.Map(others, func(id domain.SessionID, _ int) contract.EventSink {
		return r.sessions[id].sink
	})
}

func (r *Registry) SessionCount() int { return len(r.sessions) }

func (r *Registry) BoundCount() int {
	return lo.CountBy(lo.Values(r.sessions), func(s *session) bool {
		return s.identity != nil
	})
}
