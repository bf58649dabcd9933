package domain

import (
	"time"
)

// MessageFilter selects the messages of Participant, either as sender or receiver.
type MessageFilter struct {
	Participant  UserID
	Counterparty *UserID    // restrict to one conversation
	Before       *time.Time // inclusive upper bound on Timestamp
	Limit        int        // 0 means unbounded
}

// Matches reports whether message passes the filter, ignoring Limit.
func (f MessageFilter) Matches(message Message) bool {
	if !message.Involves(f.Participant) {
		return false
	}
	if f.Counterparty != nil && message.Counterparty(f.Participant) != *f.Counterparty {
		return false
	}
	if f.Before != nil && message.Timestamp.After(*f.Before) {
		return false
	}
	return true
}

type CreateMessageInput struct {
	SenderID   UserID
	ReceiverID UserID
	Body       string
	Timestamp  time.Time
}

type ProjectFilter struct {
	Owner UserID
}

type CreateProjectInput struct {
	Owner  UserID
	Fields ProjectFields
	Time   Timeline
}

type UpdateProjectInput struct {
	ID      string
	Patch   ProjectPatch
	Updated time.Time
}

// UpdateProjectResult is the subset of fields the gateway echoes after an update.
type UpdateProjectResult struct {
	ID      string
	Status  ProjectStatus
	Updated time.Time
}

type DeleteProjectInput struct {
	ID string
}

type DeleteProjectResult struct {
	ID string
}

type AddMessageInput struct {
	ProjectID string
	Sender    UserID
	Content   string
	Timestamp time.Time
}

// AddMessageResult carries the full canonical thread after the append.
type AddMessageResult struct {
	ID       string
	Messages []ProjectMessage
}
