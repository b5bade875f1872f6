// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Identity is a participant's username, drawn from a fixed allow-list.
// Comparison is case-sensitive.
type Identity string

func (i Identity) String() string { return string(i) }

// AllowList is the static set of identities allowed to log in.
// It is built once at startup and never mutated afterwards, so it can be
// read concurrently without locking.
type AllowList struct {
	members map[Identity]struct{}
	ordered []Identity
}

func NewAllowList(identities ...string) AllowList {
	list := AllowList{members: make(map[Identity]struct{}, len(identities))}
	for _, raw := range identities {
		id := Identity(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if _, ok := list.members[id]; ok {
			continue
		}
		list.members[id] = struct{}{}
		list.ordered = append(list.ordered, id)
	}
	return list
}

// ParseAllowList splits a comma or whitespace separated list of identities.
func ParseAllowList(raw string) AllowList {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	return NewAllowList(fields...)
}

func (a AllowList) Contains(id Identity) bool {
	_, ok := a.members[id]
	return ok
}

// CheckMembership is Contains, named after what login asks.
func (a AllowList) CheckMembership(id Identity) bool { return a.Contains(id) }

// Identities returns the members in declaration order.
func (a AllowList) Identities() []Identity {
	return append([]Identity(nil), a.ordered...)
}

func (a AllowList) Len() int { return len(a.ordered) }

// PresenceRecord is the online state of one identity.
// Online implies LastSeen is nil. Offline with a nil LastSeen means the
// identity never connected since the relay started.
type PresenceRecord struct {
	Online   bool   `json:"online"`
	LastSeen *int64 `json:"lastSeen"` // unix milliseconds of the last disconnect
}

// Connected returns the record of a freshly logged-in identity.
func Connected() PresenceRecord {
	return PresenceRecord{Online: true}
}

// Disconnected returns the record of an identity that left at the given time.
func Disconnected(at time.Time) PresenceRecord {
	return PresenceRecord{Online: false, LastSeen: lo.ToPtr(at.UnixMilli())}
}

// LastSeenTime converts LastSeen to a time.Time.
func (p PresenceRecord) LastSeenTime() (time.Time, bool) {
	if p.LastSeen == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*p.LastSeen), true
}

// PresenceSnapshot is the full presence mapping sent on every change.
type PresenceSnapshot map[Identity]PresenceRecord

// Clone deep-copies the snapshot so a broadcast never shares memory with
// the registry that produced it.
func (s PresenceSnapshot) Clone() PresenceSnapshot {
	out := make(PresenceSnapshot, len(s))
	for id, record := range s {
		if record.LastSeen != nil {
			record.LastSeen = lo.ToPtr(*record.LastSeen)
		}
		out[id] = record
	}
	return out
}

// Online lists the identities currently online, sorted.
func (s PresenceSnapshot) Online() []Identity {
	online := lo.Filter(lo.Keys(s), func(id Identity, _ int) bool {
		return s[id].Online
	})
	slices.Sort(online)
	return online
}
