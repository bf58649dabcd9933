package gateway

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newGraphQLServer(t *testing.T, handler func(operation gjson.Result) string) *GraphQLGateway {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		require.Equal(t, "api-key", r.Header.Get("x-api-key"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(handler(gjson.ParseBytes(body))))
	}))
	t.Cleanup(server.Close)

	gateway, err := NewGraphQLGateway(GraphQLConfig{Endpoint: server.URL, APIKey: "api-key", RequestsPerSecond: 100, Burst: 10},
		staticToken("token-123"), nil, logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	return gateway
}

func TestGraphQLGateway_ListMessages(t *testing.T) {
	req := require.New(t)
	gateway := newGraphQLServer(t, func(operation gjson.Result) string {
		req.Contains(operation.Get("query").String(), "query ListMessages")
		req.Equal("amara", operation.Get("variables.filter.or.0.senderId.eq").String())
		req.Equal("amara", operation.Get("variables.filter.or.1.receiverId.eq").String())
		return `{"data":{"listMessages":{"items":[
			{"id":"m1","senderId":"kofi","receiverId":"amara","messageBody":"older","timestamp":"2024-11-02T18:30:00Z","sender":{"username":"kofi"}},
			{"id":"m2","senderId":"amara","receiverId":"kofi","messageBody":"newer","timestamp":"2024-11-02T18:31:00.5Z","sender":{"username":"amara","profilePicture":"a.png"}}
		]}}}`
	})

	messages, err := gateway.ListMessages(context.Background(), domain.MessageFilter{Participant: "amara"})

	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("m2", messages[0].ID)
	req.Equal("a.png", messages[0].Sender.ProfilePicture)
	req.Equal(t0.Add(time.Minute+500*time.Millisecond), messages[0].Timestamp)
	req.Equal(domain.UserID("kofi"), messages[1].SenderID)
}

func TestGraphQLGateway_ListMessages_Pagination_Variables(t *testing.T) {
	req := require.New(t)
	gateway := newGraphQLServer(t, func(operation gjson.Result) string {
		req.Equal("kofi", operation.Get("variables.filter.and.1.or.0.senderId.eq").String())
		req.Equal("2024-11-02T18:30:00Z", operation.Get("variables.filter.and.2.timestamp.le").String())
		req.Equal(int64(20), operation.Get("variables.limit").Int())
		return `{"data":{"listMessages":{"items":[]}}}`
	})

	kofi := domain.UserID("kofi")
	before := t0
	messages, err := gateway.ListMessages(context.Background(), domain.MessageFilter{
		Participant: "amara", Counterparty: &kofi, Before: &before, Limit: 20,
	})

	req.NoError(err)
	req.Empty(messages)
}

func TestGraphQLGateway_Errors_Member_Fails_The_Call(t *testing.T) {
	req := require.New(t)
	gateway := newGraphQLServer(t, func(gjson.Result) string {
		return `{"data":null,"errors":[{"message":"Not Authorized to access createMessage"}]}`
	})

	_, err := gateway.CreateMessage(context.Background(), domain.CreateMessageInput{
		SenderID: "amara", ReceiverID: "kofi", Body: "hi", Timestamp: t0,
	})

	req.ErrorIs(err, errors.ErrGateway)
	req.Contains(err.Error(), "Not Authorized")
}

func TestGraphQLGateway_Http_Error(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	gateway, err := NewGraphQLGateway(GraphQLConfig{Endpoint: server.URL}, nil, nil, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)

	_, err = gateway.ListProjects(context.Background(), domain.ProjectFilter{Owner: "amara"})

	req.ErrorIs(err, errors.ErrGateway)
}

func TestGraphQLGateway_Project_Operations(t *testing.T) {
	req := require.New(t)
	gateway := newGraphQLServer(t, func(operation gjson.Result) string {
		query := operation.Get("query").String()
		input := operation.Get("variables.input")
		switch {
		case strings.Contains(query, "mutation CreateProject"):
			req.Equal("amara", input.Get("userId").String())
			req.Equal("pending", input.Get("status").String())
			return `{"data":{"createProject":{"id":"p1","name":"Single Cover","description":"","status":"pending",
				"timeline":{"created":"2024-11-02T18:30:00Z","updated":"2024-11-02T18:30:00Z","deadline":null},"serviceType":"artwork"}}}`
		case strings.Contains(query, "mutation UpdateProject"):
			req.Equal("completed", input.Get("status").String())
			req.Equal("2024-11-02T18:31:00Z", input.Get("timeline.updated").String())
			req.False(input.Get("name").Exists())
			return `{"data":{"updateProject":{"id":"p1","status":"completed","timeline":{"updated":"2024-11-02T18:31:00Z"}}}}`
		case strings.Contains(query, "mutation AddMessage"):
			req.Equal("p1", input.Get("projectId").String())
			return `{"data":{"addMessage":{"id":"p1","messages":[{"id":"n1","sender":"amara","content":"hello","timestamp":"2024-11-02T18:32:00Z"}]}}}`
		case strings.Contains(query, "mutation DeleteProject"):
			return `{"data":{"deleteProject":{"id":"p1"}}}`
		}
		return `{"errors":[{"message":"unexpected operation"}]}`
	})
	ctx := context.Background()

	created, err := gateway.CreateProject(ctx, domain.CreateProjectInput{
		Owner:  "amara",
		Fields: domain.ProjectFields{Name: "Single Cover", Status: domain.StatusPending, ServiceType: domain.ServiceArtwork},
		Time:   domain.Timeline{Created: t0, Updated: t0},
	})
	req.NoError(err)
	req.Equal("p1", created.ID)
	req.Nil(created.Timeline.Deadline)
	req.Nil(created.Messages)

	completed := domain.StatusCompleted
	updated, err := gateway.UpdateProject(ctx, domain.UpdateProjectInput{
		ID: "p1", Patch: domain.ProjectPatch{Status: &completed}, Updated: t0.Add(time.Minute),
	})
	req.NoError(err)
	req.Equal(domain.UpdateProjectResult{ID: "p1", Status: domain.StatusCompleted, Updated: t0.Add(time.Minute)}, updated)

	thread, err := gateway.AddMessage(ctx, domain.AddMessageInput{ProjectID: "p1", Sender: "amara", Content: "hello", Timestamp: t0})
	req.NoError(err)
	req.Len(thread.Messages, 1)
	req.Equal("hello", thread.Messages[0].Content)

	deleted, err := gateway.DeleteProject(ctx, domain.DeleteProjectInput{ID: "p1"})
	req.NoError(err)
	req.Equal("p1", deleted.ID)
}
