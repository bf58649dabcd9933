// Package runtime wires one signed-in user's stores to their push channel and
// to the sinks that render store events. It holds no synchronization rules itself.
package runtime

import (
	"artist-hub/contract"
	"artist-hub/domain/event"
	"artist-hub/errors"
	"artist-hub/runtime/workers"
	"artist-hub/services"
	"context"
	goerrors "errors"
	"log/slog"
	"sync"
	"time"
)

const defaultEventBufferSize = 64

type SessionConfig struct {
	EventBufferSize int
	SinkTimeout     time.Duration
	Conversation    services.ConversationConfig
}

type Session struct {
	mu            sync.Mutex
	log           *slog.Logger
	conversations *services.ConversationStore
	projects      *services.ProjectStore
	supervisor    *workers.Supervisor
	fanout        *workers.EventFanout
	started       bool
	done          chan struct{}
	closeOnce     sync.Once
}

func NewSession(messages contract.MessageGateway, projects contract.ProjectGateway, identity contract.Identity,
	log *slog.Logger, config SessionConfig, sinks ...contract.EventSink) *Session {
	if config.EventBufferSize <= 0 {
		config.EventBufferSize = defaultEventBufferSize
	}
	events := make(chan event.StoreEvent, config.EventBufferSize)
	return &Session{
		log:           log,
		conversations: services.NewConversationStore(messages, identity, log, events, config.Conversation),
		projects:      services.NewProjectStore(projects, identity, log, events),
		supervisor:    workers.NewSupervisor(log),
		fanout:        workers.NewEventFanout(log, events, config.SinkTimeout, sinks...),
		done:          make(chan struct{}),
	}
}

// Start opens the push channel first so that nothing created during the
// initial load is missed, then loads both stores.
// Load failures are returned but leave the session running on whatever state
// the stores hold.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	pump, err := s.conversations.Subscribe(ctx)
	if err != nil {
		close(s.done)
		return err
	}

	s.supervisor.Add(s.fanout, pump)
	go func() {
		defer close(s.done)
		s.supervisor.Run(ctx)
	}()
	s.log.Info("Session started", "user", pump.User())

	return goerrors.Join(
		s.load(ctx, "conversations", s.conversations.Load),
		s.load(ctx, "projects", s.projects.Load),
	)
}

func (s *Session) load(ctx context.Context, store string, load func(context.Context) error) error {
	err := load(ctx)
	if err != nil && !goerrors.Is(err, errors.ErrUnauthenticated) {
		s.log.Warn("Initial load failed", "store", store, "error", err)
	}
	return err
}

func (s *Session) Conversations() services.IConversationStore {
	return s.conversations
}

func (s *Session) Projects() services.IProjectStore {
	return s.projects
}

// Close disposes both stores and waits for the workers. Only the first call does anything.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.conversations.Close()
		s.projects.Close()
		s.supervisor.Stop()

		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
		}
		s.log.Info("Session closed")
	})
}
