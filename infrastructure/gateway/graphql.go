package gateway

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"artist-hub/errors"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// TokenSource provides the bearer credential of the signed-in user.
type TokenSource interface {
	Token() string
}

type GraphQLConfig struct {
	Endpoint          string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// GraphQLGateway talks to the managed GraphQL data API.
// Requests are throttled client-side and never retried.
type GraphQLGateway struct {
	endpoint   string
	apiKey     string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	realtime   *RealtimeClient
	log        *slog.Logger
}

func NewGraphQLGateway(cfg GraphQLConfig, tokens TokenSource, realtime *RealtimeClient, log *slog.Logger) (*GraphQLGateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("graphql endpoint is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &GraphQLGateway{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		tokens:     tokens,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		realtime:   realtime,
		log:        log,
	}, nil
}

// ListMessages returns matching messages newest first. The API does not
// guarantee an order, so the page is sorted here.
func (g *GraphQLGateway) ListMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	data, err := g.execute(ctx, listMessagesDocument, messageFilterVariables(filter))
	if err != nil {
		return nil, err
	}
	items := data.Get("listMessages.items").Array()
	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		message, err := parseMessage(item)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
	return messages, nil
}

func (g *GraphQLGateway) CreateMessage(ctx context.Context, input domain.CreateMessageInput) (domain.Message, error) {
	data, err := g.execute(ctx, createMessageDocument, map[string]any{
		"input": map[string]any{
			"senderId":    input.SenderID,
			"receiverId":  input.ReceiverID,
			"messageBody": input.Body,
			"timestamp":   formatTime(input.Timestamp),
		},
	})
	if err != nil {
		return domain.Message{}, err
	}
	return parseMessage(data.Get("createMessage"))
}

func (g *GraphQLGateway) SubscribeCreateMessage(ctx context.Context, filter domain.MessageFilter) (contract.MessageSubscription, error) {
	if g.realtime == nil {
		return nil, fmt.Errorf("no realtime endpoint configured")
	}
	return g.realtime.Subscribe(ctx, onCreateMessageDocument, map[string]any{
		"filter": participantFilter(filter.Participant),
	})
}

func (g *GraphQLGateway) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	data, err := g.execute(ctx, listProjectsDocument, map[string]any{
		"filter": map[string]any{"userId": map[string]any{"eq": filter.Owner}},
	})
	if err != nil {
		return nil, err
	}
	items := data.Get("listProjects.items").Array()
	projects := make([]domain.Project, 0, len(items))
	for _, item := range items {
		project, err := parseProject(item)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func (g *GraphQLGateway) CreateProject(ctx context.Context, input domain.CreateProjectInput) (domain.Project, error) {
	timeline := map[string]any{
		"created": formatTime(input.Time.Created),
		"updated": formatTime(input.Time.Updated),
	}
	if input.Time.Deadline != nil {
		timeline["deadline"] = formatTime(*input.Time.Deadline)
	}
	data, err := g.execute(ctx, createProjectDocument, map[string]any{
		"input": map[string]any{
			"name":        input.Fields.Name,
			"description": input.Fields.Description,
			"status":      input.Fields.Status,
			"serviceType": input.Fields.ServiceType,
			"userId":      input.Owner,
			"timeline":    timeline,
		},
	})
	if err != nil {
		return domain.Project{}, err
	}
	return parseProject(data.Get("createProject"))
}

func (g *GraphQLGateway) UpdateProject(ctx context.Context, input domain.UpdateProjectInput) (domain.UpdateProjectResult, error) {
	fields := map[string]any{"id": input.ID}
	timeline := map[string]any{"updated": formatTime(input.Updated)}
	patch := input.Patch
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.ServiceType != nil {
		fields["serviceType"] = *patch.ServiceType
	}
	if patch.Deadline != nil {
		timeline["deadline"] = formatTime(*patch.Deadline)
	}
	fields["timeline"] = timeline

	data, err := g.execute(ctx, updateProjectDocument, map[string]any{"input": fields})
	if err != nil {
		return domain.UpdateProjectResult{}, err
	}
	updated := data.Get("updateProject")
	result := domain.UpdateProjectResult{
		ID:     updated.Get("id").String(),
		Status: domain.ProjectStatus(updated.Get("status").String()),
	}
	if at := updated.Get("timeline.updated"); at.Exists() && at.Type != gjson.Null {
		if result.Updated, err = parseTime(at.String()); err != nil {
			return domain.UpdateProjectResult{}, err
		}
	}
	return result, nil
}

func (g *GraphQLGateway) DeleteProject(ctx context.Context, input domain.DeleteProjectInput) (domain.DeleteProjectResult, error) {
	data, err := g.execute(ctx, deleteProjectDocument, map[string]any{
		"input": map[string]any{"id": input.ID},
	})
	if err != nil {
		return domain.DeleteProjectResult{}, err
	}
	return domain.DeleteProjectResult{ID: data.Get("deleteProject.id").String()}, nil
}

func (g *GraphQLGateway) AddMessage(ctx context.Context, input domain.AddMessageInput) (domain.AddMessageResult, error) {
	data, err := g.execute(ctx, addMessageDocument, map[string]any{
		"input": map[string]any{
			"projectId": input.ProjectID,
			"sender":    input.Sender,
			"content":   input.Content,
			"timestamp": formatTime(input.Timestamp),
		},
	})
	if err != nil {
		return domain.AddMessageResult{}, err
	}
	added := data.Get("addMessage")
	thread, err := parseThread(added.Get("messages"))
	if err != nil {
		return domain.AddMessageResult{}, err
	}
	return domain.AddMessageResult{ID: added.Get("id").String(), Messages: thread}, nil
}

// execute posts one operation and returns its "data" member.
// A non-empty "errors" member fails the whole call.
func (g *GraphQLGateway) execute(ctx context.Context, document string, variables map[string]any) (gjson.Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	body, err := json.Marshal(map[string]any{"query": document, "variables": variables})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	g.log.Debug("GraphQL operation", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("%w: http %d: %s", errors.ErrGateway, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}, fmt.Errorf("%w: invalid json response", errors.ErrGateway)
	}
	if graphqlErrors := gjson.GetBytes(payload, "errors"); graphqlErrors.IsArray() && len(graphqlErrors.Array()) > 0 {
		messages := make([]string, 0, len(graphqlErrors.Array()))
		for _, e := range graphqlErrors.Array() {
			messages = append(messages, e.Get("message").String())
		}
		return gjson.Result{}, fmt.Errorf("%w: %s", errors.ErrGateway, strings.Join(messages, "; "))
	}
	return gjson.GetBytes(payload, "data"), nil
}

func (g *GraphQLGateway) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("x-api-key", g.apiKey)
	}
	if g.tokens != nil {
		if token := g.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}
