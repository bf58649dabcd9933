// Package gateway provides the two backends the stores can talk to: a local
// development backend on BadgerDB and the remote GraphQL API.
package gateway

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"artist-hub/repositories"
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// LocalGateway implements the message and project gateways on local storage.
// Created messages are pushed through the broker to both participants.
type LocalGateway struct {
	mu       sync.Mutex // serializes project read-modify-write
	messages repositories.IMessageRepository
	projects repositories.IProjectRepository
	users    repositories.IUserRepository
	broker   *Broker
	log      *slog.Logger
}

func NewLocalGateway(messages repositories.IMessageRepository, projects repositories.IProjectRepository,
	users repositories.IUserRepository, broker *Broker, log *slog.Logger) *LocalGateway {
	return &LocalGateway{messages: messages, projects: projects, users: users, broker: broker, log: log}
}

func (g *LocalGateway) ListMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.messages.GetMessages(filter)
}

func (g *LocalGateway) CreateMessage(ctx context.Context, input domain.CreateMessageInput) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Body:       input.Body,
		Timestamp:  input.Timestamp.UTC(),
		Sender:     domain.SenderInfo{Username: input.SenderID.String()},
	}
	if user, err := g.users.GetUser(input.SenderID.String()); err == nil {
		message.Sender.ProfilePicture = user.ProfilePicture
	}

	if err := g.messages.StoreMessage(message); err != nil {
		return domain.Message{}, err
	}
	g.broker.Publish(message)
	g.log.Debug("Message created", "message_id", message.ID, "from", message.SenderID, "to", message.ReceiverID)
	return message, nil
}

func (g *LocalGateway) SubscribeCreateMessage(ctx context.Context, filter domain.MessageFilter) (contract.MessageSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.broker.Subscribe(ctx, filter), nil
}

func (g *LocalGateway) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := g.projects.ListProjects(filter.Owner)
	if err != nil {
		return nil, err
	}
	projects := make([]domain.Project, 0, len(stored))
	for _, s := range stored {
		projects = append(projects, s.Project)
	}
	return projects, nil
}

func (g *LocalGateway) CreateProject(ctx context.Context, input domain.CreateProjectInput) (domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return domain.Project{}, err
	}
	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        input.Fields.Name,
		Description: input.Fields.Description,
		Status:      input.Fields.Status,
		ServiceType: input.Fields.ServiceType,
		Timeline:    input.Time,
		Messages:    []domain.ProjectMessage{},
	}
	if err := g.projects.SaveProject(repositories.StoredProject{Owner: input.Owner, Project: project}); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (g *LocalGateway) UpdateProject(ctx context.Context, input domain.UpdateProjectInput) (domain.UpdateProjectResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.UpdateProjectResult{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	stored, err := g.projects.GetProject(input.ID)
	if err != nil {
		return domain.UpdateProjectResult{}, err
	}
	stored.Project = input.Patch.Apply(stored.Project)
	stored.Project.Timeline.Updated = input.Updated
	if err := g.projects.SaveProject(stored); err != nil {
		return domain.UpdateProjectResult{}, err
	}
	return domain.UpdateProjectResult{
		ID:      stored.Project.ID,
		Status:  stored.Project.Status,
		Updated: stored.Project.Timeline.Updated,
	}, nil
}

func (g *LocalGateway) DeleteProject(ctx context.Context, input domain.DeleteProjectInput) (domain.DeleteProjectResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.DeleteProjectResult{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.projects.DeleteProject(input.ID); err != nil {
		return domain.DeleteProjectResult{}, err
	}
	return domain.DeleteProjectResult{ID: input.ID}, nil
}

func (g *LocalGateway) AddMessage(ctx context.Context, input domain.AddMessageInput) (domain.AddMessageResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.AddMessageResult{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	stored, err := g.projects.GetProject(input.ProjectID)
	if err != nil {
		return domain.AddMessageResult{}, err
	}
	stored.Project.Messages = append(stored.Project.Messages, domain.ProjectMessage{
		ID:        uuid.NewString(),
		Sender:    input.Sender.String(),
		Content:   input.Content,
		Timestamp: input.Timestamp.UTC(),
	})
	if input.Timestamp.After(stored.Project.Timeline.Updated) {
		stored.Project.Timeline.Updated = input.Timestamp.UTC()
	}
	if err := g.projects.SaveProject(stored); err != nil {
		return domain.AddMessageResult{}, err
	}
	return domain.AddMessageResult{ID: stored.Project.ID, Messages: stored.Project.Messages}, nil
}
