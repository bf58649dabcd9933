package e2e

import (
	"artist-hub/domain"
	"artist-hub/domain/event"
	"artist-hub/services"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testSyncSuite struct {
	BaseSuite
}

func TestSyncSuite(t *testing.T) {
	suite.Run(t, &testSyncSuite{})
}

func (s *testSyncSuite) TestMessageRoundTrip() {
	ctx, cancel := s.Context()
	defer cancel()

	user := s.Identity(s.Config.User, s.Config.UserToken)
	peer := s.Identity(s.Config.Peer, s.Config.PeerToken)
	events := make(chan event.StoreEvent, 16)

	userStore := services.NewConversationStore(s.Gateway(s.T(), "sender", user), user, s.Logger(), nil, services.ConversationConfig{})
	peerStore := services.NewConversationStore(s.Gateway(s.T(), "receiver", peer), peer, s.Logger(), events, services.ConversationConfig{})
	defer userStore.Close()
	defer peerStore.Close()

	body := fmt.Sprintf("e2e %s", uuid.NewString())

	s.Run("Step 1: Receiver subscribes to its push channel", func() {
		pump, err := peerStore.Subscribe(ctx)
		s.Require().NoError(err)
		go func() { _ = pump.Run(ctx) }()
		s.Require().NoError(peerStore.Load(ctx))
	})

	s.Run("Step 2: Sender sends, receiver gets it through the push channel", func() {
		s.Require().NoError(userStore.SendMessage(ctx, peer.user, body))
		s.Require().Eventually(func() bool {
			thread := peerStore.Thread(user.user)
			return len(thread) > 0 && thread[len(thread)-1].Body == body
		}, 20*time.Second, 200*time.Millisecond)
	})

	s.Run("Step 3: A fresh load returns the same message", func() {
		s.Require().NoError(userStore.Load(ctx))
		thread := userStore.Thread(peer.user)
		s.Require().NotEmpty(thread)
		s.Require().Equal(body, thread[len(thread)-1].Body)
	})
}

func (s *testSyncSuite) TestProjectLifecycle() {
	ctx, cancel := s.Context()
	defer cancel()

	user := s.Identity(s.Config.User, s.Config.UserToken)
	store := services.NewProjectStore(s.Gateway(s.T(), "projects", user), user, s.Logger(), nil)
	defer store.Close()
	s.Require().NoError(store.Load(ctx))

	var project domain.Project
	s.Run("Step 1: Create", func() {
		created, err := store.CreateProject(ctx, domain.ProjectFields{
			Name:        "e2e " + uuid.NewString(),
			Description: "created by the end to end suite",
			ServiceType: domain.ServiceArtwork,
		})
		s.Require().NoError(err)
		s.Require().Equal(domain.StatusPending, created.Status)
		s.Require().Empty(created.Messages)
		project = created
	})

	s.Run("Step 2: Update status", func() {
		completed := domain.StatusCompleted
		s.Require().NoError(store.UpdateProject(ctx, project.ID, domain.ProjectPatch{Status: &completed}))
		updated, ok := store.Project(project.ID)
		s.Require().True(ok)
		s.Require().Equal(domain.StatusCompleted, updated.Status)
		s.Require().True(updated.Timeline.Updated.After(project.Timeline.Updated))
	})

	s.Run("Step 3: Add a note", func() {
		s.Require().NoError(store.AddMessage(ctx, project.ID, "hello"))
		updated, _ := store.Project(project.ID)
		s.Require().NotEmpty(updated.Messages)
		s.Require().Equal("hello", updated.Messages[len(updated.Messages)-1].Content)
	})

	s.Run("Step 4: Delete", func() {
		s.Require().NoError(store.DeleteProject(ctx, project.ID))
		_, ok := store.Project(project.ID)
		s.Require().False(ok)
	})
}
