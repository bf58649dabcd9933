package gateway

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"artist-hub/mocks"
	"artist-hub/repositories"
	"artist-hub/services"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2024, 11, 2, 18, 30, 0, 0, time.UTC)

func newLocalGateway(t *testing.T) (*LocalGateway, *Broker) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broker := NewBroker(log, 8)
	gateway := NewLocalGateway(
		repositories.NewMessageRepository(db, log),
		repositories.NewProjectRepository(db),
		repositories.NewUserRepository(db),
		broker,
		log,
	)
	return gateway, broker
}

func TestLocalGateway_Created_Message_Is_Pushed_To_Both_Participants(t *testing.T) {
	req := require.New(t)
	gateway, broker := newLocalGateway(t)
	ctx := context.Background()

	amara, err := gateway.SubscribeCreateMessage(ctx, domain.MessageFilter{Participant: "amara"})
	req.NoError(err)
	kofi, err := gateway.SubscribeCreateMessage(ctx, domain.MessageFilter{Participant: "kofi"})
	req.NoError(err)
	zuri, err := gateway.SubscribeCreateMessage(ctx, domain.MessageFilter{Participant: "zuri"})
	req.NoError(err)

	// When amara writes to kofi
	created, err := gateway.CreateMessage(ctx, domain.CreateMessageInput{
		SenderID: "amara", ReceiverID: "kofi", Body: "mix is done", Timestamp: t0,
	})
	req.NoError(err)
	req.NotEmpty(created.ID)

	// Then both participants receive it, and nobody else
	req.Equal(created, <-amara.Messages())
	req.Equal(created, <-kofi.Messages())
	req.Empty(zuri.Messages())

	// And it is listed for both
	listed, err := gateway.ListMessages(ctx, domain.MessageFilter{Participant: "kofi"})
	req.NoError(err)
	req.Equal([]domain.Message{created}, listed)

	amara.Unsubscribe()
	amara.Unsubscribe()
	kofi.Unsubscribe()
	zuri.Unsubscribe()
	req.Zero(broker.Len())
	_, open := <-amara.Messages()
	req.False(open)
}

func TestBroker_Ends_Subscription_With_Context(t *testing.T) {
	req := require.New(t)
	_, broker := newLocalGateway(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub := broker.Subscribe(ctx, domain.MessageFilter{Participant: "amara"})
	cancel()

	_, open := <-sub.Messages()
	req.False(open)
	req.ErrorIs(sub.Err(), context.Canceled)
	req.Zero(broker.Len())
}

func TestBroker_Drops_Slow_Subscriber(t *testing.T) {
	req := require.New(t)
	broker := NewBroker(logs.GetLoggerFromLevel(slog.LevelDebug), 1)
	sub := broker.Subscribe(context.Background(), domain.MessageFilter{Participant: "amara"})

	broker.Publish(domain.Message{ID: "m1", SenderID: "kofi", ReceiverID: "amara", Timestamp: t0})
	broker.Publish(domain.Message{ID: "m2", SenderID: "kofi", ReceiverID: "amara", Timestamp: t0})

	first, open := <-sub.Messages()
	req.True(open)
	req.Equal("m1", first.ID)
	_, open = <-sub.Messages()
	req.False(open)
	req.ErrorIs(sub.Err(), errSlowSubscriber)
}

func TestLocalGateway_Project_Lifecycle(t *testing.T) {
	req := require.New(t)
	gateway, _ := newLocalGateway(t)
	ctx := context.Background()

	created, err := gateway.CreateProject(ctx, domain.CreateProjectInput{
		Owner:  "amara",
		Fields: domain.ProjectFields{Name: "Single Cover", ServiceType: domain.ServiceArtwork, Status: domain.StatusPending},
		Time:   domain.Timeline{Created: t0, Updated: t0},
	})
	req.NoError(err)
	req.Empty(created.Messages)

	completed := domain.StatusCompleted
	result, err := gateway.UpdateProject(ctx, domain.UpdateProjectInput{
		ID: created.ID, Patch: domain.ProjectPatch{Status: &completed}, Updated: t0.Add(time.Minute),
	})
	req.NoError(err)
	req.Equal(domain.StatusCompleted, result.Status)
	req.Equal(t0.Add(time.Minute), result.Updated)

	thread, err := gateway.AddMessage(ctx, domain.AddMessageInput{
		ProjectID: created.ID, Sender: "amara", Content: "love it", Timestamp: t0.Add(2 * time.Minute),
	})
	req.NoError(err)
	req.Len(thread.Messages, 1)

	projects, err := gateway.ListProjects(ctx, domain.ProjectFilter{Owner: "amara"})
	req.NoError(err)
	req.Len(projects, 1)
	req.Len(projects[0].Messages, 1)

	deleted, err := gateway.DeleteProject(ctx, domain.DeleteProjectInput{ID: created.ID})
	req.NoError(err)
	req.Equal(created.ID, deleted.ID)

	_, err = gateway.DeleteProject(ctx, domain.DeleteProjectInput{ID: created.ID})
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestLocalGateway_Drives_Conversation_Store(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	gateway, _ := newLocalGateway(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identity := mocks.NewMockIdentity(ctrl)
	identity.EXPECT().CurrentUser().Return(domain.UserID("amara"), nil).AnyTimes()
	store := services.NewConversationStore(gateway, identity, logs.GetLoggerFromLevel(slog.LevelDebug), nil,
		services.ConversationConfig{})
	defer store.Close()

	req.NoError(store.Load(ctx))
	pump, err := store.Subscribe(ctx)
	req.NoError(err)
	go func() { _ = pump.Run(ctx) }()

	// When amara sends a message, local state only changes through the push channel
	req.NoError(store.SendMessage(ctx, "kofi", "first draft attached"))

	req.Eventually(func() bool {
		return len(store.Thread("kofi")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	req.Equal("first draft attached", store.Thread("kofi")[0].Body)
}
