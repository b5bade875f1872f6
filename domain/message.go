// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// The relay never alters a message, only the client marks it read.
package domain

import "strconv"

// MessageID is a unique ordinal stamped by the sending client.
type MessageID int64

func (id MessageID) String() string { return strconv.FormatInt(int64(id), 10) }

// DeliveryStatus tracks the optimistic send of a message on the client that wrote it.
// It never travels on the wire: the relay sees the message without it.
type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

// Message is the unit exchanged through the relay.
type Message struct {
	ID     MessageID      `json:"id"`
	Text   string         `json:"text"`
	Sender Identity       `json:"sender"`
	Read   bool           `json:"read"`
	Status DeliveryStatus `json:"status,omitempty"`
}

// Wire strips client-local fields before the message is submitted.
func (m Message) Wire() Message {
	m.Status = ""
	return m
}
