// Package domain contains core concepts of the artist hub.
// This file defines direct messages exchanged between two users.
// Messages are immutable once created by the gateway.
package domain

import (
	"time"
)

// UserID is the stable username supplied by the identity provider.
type UserID string

func (u UserID) String() string {
	return string(u)
}

// SenderInfo is the display information attached to a message by the backend.
type SenderInfo struct {
	Username       string
	ProfilePicture string
}

// Message represents an immutable direct message.
type Message struct {
	ID         string // opaque, assigned by the gateway
	SenderID   UserID
	ReceiverID UserID
	Body       string
	Timestamp  time.Time
	Sender     SenderInfo
}

// Counterparty returns whichever participant is not self.
func (m Message) Counterparty(self UserID) UserID {
	if m.SenderID == self {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether user is the sender or the receiver.
func (m Message) Involves(user UserID) bool {
	return m.SenderID == user || m.ReceiverID == user
}

// Conversations maps a counterparty to its message history, oldest first.
type Conversations map[UserID][]Message

// Clone returns a deep copy safe to hand out to readers.
func (c Conversations) Clone() Conversations {
	cloned := make(Conversations, len(c))
	for counterparty, messages := range c {
		cloned[counterparty] = append([]Message(nil), messages...)
	}
	return cloned
}
