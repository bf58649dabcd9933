package domain

import (
	"time"
)

type ProjectStatus string

const (
	StatusPending    ProjectStatus = "pending"
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusCancelled  ProjectStatus = "cancelled"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceMarketing ServiceType = "marketing"
	ServiceEPK       ServiceType = "epk"
	ServiceArtwork   ServiceType = "artwork"
	ServiceAdvisor   ServiceType = "advisor"
)

func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceMarketing, ServiceEPK, ServiceArtwork, ServiceAdvisor:
		return true
	}
	return false
}

type Timeline struct {
	Created  time.Time
	Updated  time.Time
	Deadline *time.Time
}

// ProjectMessage is an entry of a project thread. Threads are append-only.
type ProjectMessage struct {
	ID        string
	Sender    string
	Content   string
	Timestamp time.Time
}

// Project is a purchased creative service tracked until delivery.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	ServiceType ServiceType
	Timeline    Timeline
	Messages    []ProjectMessage
}

// Clone copies the nested thread and deadline so callers can't alias store state.
func (p Project) Clone() Project {
	cloned := p
	cloned.Messages = append([]ProjectMessage{}, p.Messages...)
	if p.Timeline.Deadline != nil {
		deadline := *p.Timeline.Deadline
		cloned.Timeline.Deadline = &deadline
	}
	return cloned
}

// ProjectFields are the caller-supplied fields of a new project.
// ID, timeline and messages are synthesized.
type ProjectFields struct {
	Name        string        `validate:"required,max=120"`
	Description string        `validate:"max=2000"`
	Status      ProjectStatus `validate:"omitempty,oneof=pending in-progress completed cancelled"`
	ServiceType ServiceType   `validate:"required,oneof=marketing epk artwork advisor"`
	Deadline    *time.Time
}

// ProjectPatch is a partial update. A nil field is left untouched.
type ProjectPatch struct {
	Name        *string        `validate:"omitempty,min=1,max=120"`
	Description *string        `validate:"omitempty,max=2000"`
	Status      *ProjectStatus `validate:"omitempty,oneof=pending in-progress completed cancelled"`
	ServiceType *ServiceType   `validate:"omitempty,oneof=marketing epk artwork advisor"`
	Deadline    *time.Time
}

func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil &&
		p.ServiceType == nil && p.Deadline == nil
}

// Apply merges the patch into project. Timeline.Updated is left to the caller.
func (p ProjectPatch) Apply(project Project) Project {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.ServiceType != nil {
		project.ServiceType = *p.ServiceType
	}
	if p.Deadline != nil {
		deadline := *p.Deadline
		project.Timeline.Deadline = &deadline
	}
	return project
}
