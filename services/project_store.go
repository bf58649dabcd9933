package services

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"artist-hub/domain/event"
	"artist-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type IProjectStore interface {
	Load(ctx context.Context) error
	CreateProject(ctx context.Context, fields domain.ProjectFields) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) error
	DeleteProject(ctx context.Context, id string) error
	AddMessage(ctx context.Context, projectID, content string) error
	Projects() []domain.Project
	Project(id string) (domain.Project, bool)
	Loading() bool
	Err() error
	Close()
}

// ProjectStore caches the current user's projects. Every mutation is applied
// locally only once the gateway confirmed it.
type ProjectStore struct {
	mu       sync.RWMutex
	gateway  contract.ProjectGateway
	identity contract.Identity
	log      *slog.Logger
	events   chan<- event.StoreEvent
	now      func() time.Time

	projects []domain.Project
	loading  int
	lastErr  error
	closed   bool
}

func NewProjectStore(gateway contract.ProjectGateway, identity contract.Identity,
	log *slog.Logger, events chan<- event.StoreEvent) *ProjectStore {
	return &ProjectStore{
		gateway:  gateway,
		identity: identity,
		log:      log,
		events:   events,
		now:      time.Now,
		projects: []domain.Project{},
	}
}

func (s *ProjectStore) Load(ctx context.Context) error {
	user, err := currentUser(s.identity)
	if err != nil {
		return err
	}

	s.startLoading()
	defer s.stopLoading()

	projects, err := s.gateway.ListProjects(ctx, domain.ProjectFilter{Owner: user})
	if err != nil {
		return s.fail(fmt.Errorf("%w: projects: %w", errors.ErrLoad, err))
	}

	loaded := lo.Map(projects, func(p domain.Project, _ int) domain.Project {
		return normalize(p)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.projects = loaded
	s.lastErr = nil
	publish(s.log, s.events, event.ProjectsReplaced{Owner: user, Projects: len(loaded)})
	return nil
}

// CreateProject submits a new project and appends the record the gateway returned.
func (s *ProjectStore) CreateProject(ctx context.Context, fields domain.ProjectFields) (domain.Project, error) {
	if fields.Status == "" {
		fields.Status = domain.StatusPending
	}
	if err := validate.Struct(fields); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", errors.ErrInvalidProject, err)
	}
	user, err := currentUser(s.identity)
	if err != nil {
		return domain.Project{}, err
	}

	now := s.now().UTC()
	created, err := s.gateway.CreateProject(ctx, domain.CreateProjectInput{
		Owner:  user,
		Fields: fields,
		Time:   domain.Timeline{Created: now, Updated: now, Deadline: fields.Deadline},
	})
	if err != nil {
		return domain.Project{}, s.fail(fmt.Errorf("%w: %w", errors.ErrCreate, err))
	}
	created = normalize(created)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return created.Clone(), nil
	}
	s.projects = append(s.projects, created)
	publish(s.log, s.events, event.ProjectCreated{Project: created.Clone()})
	return created.Clone(), nil
}

// UpdateProject sends the patch with a refreshed timestamp and merges it once confirmed.
func (s *ProjectStore) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) error {
	if err := validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidProject, err)
	}
	if _, err := currentUser(s.identity); err != nil {
		return err
	}

	updated := s.now().UTC()
	if current, ok := s.Project(id); ok && !updated.After(current.Timeline.Updated) {
		updated = current.Timeline.Updated.Add(time.Millisecond)
	}

	result, err := s.gateway.UpdateProject(ctx, domain.UpdateProjectInput{ID: id, Patch: patch, Updated: updated})
	if err != nil {
		return s.fail(fmt.Errorf("%w: %s: %w", errors.ErrUpdate, id, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if result.ID != "" && result.ID != id {
		return s.inconsistent("update", id)
	}
	_, index, found := lo.FindIndexOf(s.projects, func(p domain.Project) bool {
		return p.ID == id
	})
	if !found {
		return s.inconsistent("update", id)
	}

	project := patch.Apply(s.projects[index])
	if result.Status != "" {
		project.Status = result.Status
	}
	project.Timeline.Updated = updated
	if result.Updated.After(updated) {
		project.Timeline.Updated = result.Updated
	}
	s.projects[index] = project
	publish(s.log, s.events, event.ProjectUpdated{ID: id, Status: project.Status})
	return nil
}

func (s *ProjectStore) DeleteProject(ctx context.Context, id string) error {
	if _, err := currentUser(s.identity); err != nil {
		return err
	}

	result, err := s.gateway.DeleteProject(ctx, domain.DeleteProjectInput{ID: id})
	if err != nil {
		return s.fail(fmt.Errorf("%w: %s: %w", errors.ErrDelete, id, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if result.ID != "" && result.ID != id {
		return s.inconsistent("delete", id)
	}
	index := slices.IndexFunc(s.projects, func(p domain.Project) bool {
		return p.ID == id
	})
	if index < 0 {
		return s.inconsistent("delete", id)
	}
	s.projects = slices.Delete(slices.Clone(s.projects), index, index+1)
	publish(s.log, s.events, event.ProjectDeleted{ID: id})
	return nil
}

// AddMessage appends a note to a project thread. The local thread is replaced
// by the canonical one the gateway returns.
func (s *ProjectStore) AddMessage(ctx context.Context, projectID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyMessage
	}
	user, err := currentUser(s.identity)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	result, err := s.gateway.AddMessage(ctx, domain.AddMessageInput{
		ProjectID: projectID,
		Sender:    user,
		Content:   content,
		Timestamp: now,
	})
	if err != nil {
		return s.fail(fmt.Errorf("%w: %s: %w", errors.ErrMessage, projectID, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if result.ID != "" && result.ID != projectID {
		return s.inconsistent("add_message", projectID)
	}
	_, index, found := lo.FindIndexOf(s.projects, func(p domain.Project) bool {
		return p.ID == projectID
	})
	if !found {
		return s.inconsistent("add_message", projectID)
	}

	// The returned thread is authoritative, order included.
	thread := append([]domain.ProjectMessage{}, result.Messages...)
	if !slices.IsSortedFunc(thread, func(a, b domain.ProjectMessage) int {
		return a.Timestamp.Compare(b.Timestamp)
	}) {
		s.log.Warn("Project thread out of timestamp order", "project_id", projectID, "messages", len(thread))
	}
	project := s.projects[index]
	project.Messages = thread
	if now.After(project.Timeline.Updated) {
		project.Timeline.Updated = now
	} else {
		project.Timeline.Updated = project.Timeline.Updated.Add(time.Millisecond)
	}
	s.projects[index] = project
	publish(s.log, s.events, event.ProjectThreadReplaced{ID: projectID, Messages: len(thread)})
	return nil
}

func (s *ProjectStore) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.projects, func(p domain.Project, _ int) domain.Project {
		return p.Clone()
	})
}

func (s *ProjectStore) Project(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, found := lo.Find(s.projects, func(p domain.Project) bool {
		return p.ID == id
	})
	if !found {
		return domain.Project{}, false
	}
	return project.Clone(), true
}

func (s *ProjectStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

func (s *ProjectStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *ProjectStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// inconsistent must be called with the lock held.
func (s *ProjectStore) inconsistent(operation, id string) error {
	s.log.Warn("Confirmed result does not match local state", "operation", operation, "project_id", id)
	publish(s.log, s.events, event.InconsistencyDetected{Operation: operation, ID: id})
	err := fmt.Errorf("%w: %s %s", errors.ErrInconsistency, operation, id)
	s.lastErr = err
	return err
}

func (s *ProjectStore) startLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
}

func (s *ProjectStore) stopLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
}

func (s *ProjectStore) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.log.Error("Project store operation failed", "error", err)
	return err
}

func normalize(project domain.Project) domain.Project {
	if project.Messages == nil {
		project.Messages = []domain.ProjectMessage{}
	}
	return project.Clone()
}
