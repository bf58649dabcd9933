package repositories

import (
	"artist-hub/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Messages_Are_Listed_Newest_First_For_Both_Participants(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Date(2024, 11, 2, 18, 30, 0, 123, time.UTC)
	messages := []domain.Message{
		{ID: "m1", SenderID: "amara", ReceiverID: "kofi", Body: "demo ready?", Timestamp: at},
		{ID: "m2", SenderID: "kofi", ReceiverID: "amara", Body: "tonight", Timestamp: at.Add(time.Minute)},
		{ID: "m3", SenderID: "zuri", ReceiverID: "kofi", Body: "collab?", Timestamp: at.Add(2 * time.Minute)},
	}
	for _, m := range messages {
		req.NoError(repository.StoreMessage(m))
	}

	fetched, err := repository.GetMessages(domain.MessageFilter{Participant: "amara"})
	req.NoError(err)
	req.Equal([]domain.Message{messages[1], messages[0]}, fetched)

	fetched, err = repository.GetMessages(domain.MessageFilter{Participant: "kofi"})
	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal("m3", fetched[0].ID)
}

func Test_Messages_Filter_Before_Counterparty_And_Limit(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Date(2024, 11, 2, 18, 30, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		req.NoError(repository.StoreMessage(domain.Message{
			ID: id, SenderID: "kofi", ReceiverID: "amara", Body: id, Timestamp: at.Add(time.Duration(i) * time.Minute),
		}))
	}
	req.NoError(repository.StoreMessage(domain.Message{
		ID: "z", SenderID: "zuri", ReceiverID: "amara", Body: "z", Timestamp: at.Add(time.Minute),
	}))

	kofi := domain.UserID("kofi")
	before := at.Add(2 * time.Minute)
	fetched, err := repository.GetMessages(domain.MessageFilter{
		Participant:  "amara",
		Counterparty: &kofi,
		Before:       &before,
		Limit:        2,
	})

	req.NoError(err)
	req.Equal([]string{"c", "b"}, []string{fetched[0].ID, fetched[1].ID})
	req.Len(fetched, 2)
}

func Test_Projects_Are_Scoped_To_Owner(t *testing.T) {
	req := require.New(t)
	repository := NewProjectRepository(openDB(t))
	at := time.Date(2024, 11, 2, 18, 30, 0, 0, time.UTC)

	req.NoError(repository.SaveProject(StoredProject{Owner: "amara", Project: domain.Project{
		ID: "p2", Name: "EPK", Timeline: domain.Timeline{Created: at.Add(time.Hour)},
	}}))
	req.NoError(repository.SaveProject(StoredProject{Owner: "amara", Project: domain.Project{
		ID: "p1", Name: "Cover", Timeline: domain.Timeline{Created: at},
	}}))
	req.NoError(repository.SaveProject(StoredProject{Owner: "kofi", Project: domain.Project{ID: "p3"}}))

	projects, err := repository.ListProjects("amara")
	req.NoError(err)
	req.Len(projects, 2)
	req.Equal("p1", projects[0].Project.ID)

	req.NoError(repository.DeleteProject("p1"))
	_, err = repository.GetProject("p1")
	req.Error(err)
	req.Error(repository.DeleteProject("p1"))
}
