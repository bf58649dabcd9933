// Package event defines the notifications stores publish after their state changed.
// Consumers re-read store state; events only say what moved.
package event

import (
	"artist-hub/domain"
)

type Kind string

const (
	ConversationsReplacedKind Kind = "conversations_replaced"
	ConversationUpdatedKind   Kind = "conversation_updated"
	ConversationExtendedKind  Kind = "conversation_extended"
	ProjectsReplacedKind      Kind = "projects_replaced"
	ProjectCreatedKind        Kind = "project_created"
	ProjectUpdatedKind        Kind = "project_updated"
	ProjectDeletedKind        Kind = "project_deleted"
	ProjectThreadReplacedKind Kind = "project_thread_replaced"
	InconsistencyKind         Kind = "inconsistency_detected"
)

type StoreEvent interface {
	Kind() Kind
}

// ConversationsReplaced follows a full resync of the conversation map.
type ConversationsReplaced struct {
	Owner         domain.UserID
	Conversations int
	Messages      int
}

func (ConversationsReplaced) Kind() Kind { return ConversationsReplacedKind }

// ConversationUpdated is emitted for each pushed message merged into a conversation.
type ConversationUpdated struct {
	Counterparty domain.UserID
	Message      domain.Message
}

func (ConversationUpdated) Kind() Kind { return ConversationUpdatedKind }

// ConversationExtended follows a page of older history.
type ConversationExtended struct {
	Counterparty domain.UserID
	Added        int
}

func (ConversationExtended) Kind() Kind { return ConversationExtendedKind }

type ProjectsReplaced struct {
	Owner    domain.UserID
	Projects int
}

func (ProjectsReplaced) Kind() Kind { return ProjectsReplacedKind }

type ProjectCreated struct {
	Project domain.Project
}

func (ProjectCreated) Kind() Kind { return ProjectCreatedKind }

type ProjectUpdated struct {
	ID     string
	Status domain.ProjectStatus
}

func (ProjectUpdated) Kind() Kind { return ProjectUpdatedKind }

type ProjectDeleted struct {
	ID string
}

func (ProjectDeleted) Kind() Kind { return ProjectDeletedKind }

type ProjectThreadReplaced struct {
	ID       string
	Messages int
}

func (ProjectThreadReplaced) Kind() Kind { return ProjectThreadReplacedKind }

// InconsistencyDetected reports a confirmed remote result that could not be applied locally.
type InconsistencyDetected struct {
	Operation string
	ID        string
}

func (InconsistencyDetected) Kind() Kind { return InconsistencyKind }
