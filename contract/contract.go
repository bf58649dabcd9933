//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"artist-hub/domain"
	"artist-hub/domain/event"
	"context"
	"reflect"
)

// Identity resolves the signed-in user.
// CurrentUser returns errors.ErrUnauthenticated when nobody is signed in.
type Identity interface {
	CurrentUser() (domain.UserID, error)
}

// MessageGateway is the remote data boundary for direct messages.
type MessageGateway interface {
	// ListMessages returns matching messages, newest first.
	ListMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error)
	CreateMessage(ctx context.Context, input domain.CreateMessageInput) (domain.Message, error)
	SubscribeCreateMessage(ctx context.Context, filter domain.MessageFilter) (MessageSubscription, error)
}

// MessageSubscription is a live push channel of newly created messages.
// Messages is closed once the subscription ends; Err tells why.
type MessageSubscription interface {
	Messages() <-chan domain.Message
	Err() error
	Unsubscribe()
}

// ProjectGateway is the remote data boundary for projects.
type ProjectGateway interface {
	ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error)
	CreateProject(ctx context.Context, input domain.CreateProjectInput) (domain.Project, error)
	UpdateProject(ctx context.Context, input domain.UpdateProjectInput) (domain.UpdateProjectResult, error)
	DeleteProject(ctx context.Context, input domain.DeleteProjectInput) (domain.DeleteProjectResult, error)
	AddMessage(ctx context.Context, input domain.AddMessageInput) (domain.AddMessageResult, error)
}

type EventSink interface {
	Consume(ctx context.Context, e event.StoreEvent) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
