package main

import (
	"artist-hub/ai"
	"artist-hub/credits"
	"artist-hub/domain"
	"artist-hub/repositories"
	"artist-hub/runtime"
	"artist-hub/services"
	"artist-hub/sink"
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

func register(_ context.Context, a *app, args []string) error {
	token, err := services.NewAuthService(a.users, a.issuer, a.log).Register(args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.saveToken(token.String()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome %s, you start with %d credits\n", args[0], a.config.InitialCredits)
	return nil
}

func login(_ context.Context, a *app, args []string) error {
	token, err := services.NewAuthService(a.users, a.issuer, a.log).Login(args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.saveToken(token.String()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", args[0])
	return nil
}

func logout(_ context.Context, a *app, _ []string) error {
	if err := os.Remove(a.config.TokenFilepath); err != nil && !os.IsNotExist(err) {
		return err
	}
	a.identity.SignOut()
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// watch keeps a session open and prints store events until interrupted.
// Lines typed as "@user message" are sent to that user.
func watch(ctx context.Context, a *app, _ []string) error {
	if err := a.signIn(); err != nil {
		return err
	}
	messages, projectGateway, err := a.gateways()
	if err != nil {
		return err
	}
	session := runtime.NewSession(messages, projectGateway, a.identity, a.log, runtime.SessionConfig{
		EventBufferSize: a.config.EventBufferSize,
		SinkTimeout:     a.config.SinkTimeout,
		Conversation:    a.conversationConfig(),
	}, sink.NewTerminalSink(a.out, a.config.Colours), sink.NewLogSink(a.log, slog.LevelDebug))
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		a.log.Warn("Session started with errors", "error", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return nil
			}
			to, body, found := strings.Cut(strings.TrimSpace(line), " ")
			if !found || !strings.HasPrefix(to, "@") {
				fmt.Fprintln(a.out, "type @user message")
				continue
			}
			if err := session.Conversations().SendMessage(ctx, domain.UserID(strings.TrimPrefix(to, "@")), body); err != nil {
				fmt.Fprintf(a.out, "not sent: %v\n", err)
			}
		}
	}
}

func send(ctx context.Context, a *app, args []string) error {
	store, err := a.conversationStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SendMessage(ctx, domain.UserID(args[0]), strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent to %s\n", args[0])
	return nil
}

func chats(ctx context.Context, a *app, _ []string) error {
	store, err := a.conversationStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Load(ctx); err != nil {
		return err
	}
	renderConversations(a.out, store.Conversations())
	return nil
}

func thread(ctx context.Context, a *app, args []string) error {
	pages := 0
	if len(args) == 2 {
		pages, _ = strconv.Atoi(args[1])
	}
	store, err := a.conversationStore()
	if err != nil {
		return err
	}
	defer store.Close()

	with := domain.UserID(args[0])
	if err := store.Load(ctx); err != nil {
		return err
	}
	for i := 0; i < pages; i++ {
		added, err := store.LoadMoreMessages(ctx, with)
		if err != nil {
			return err
		}
		if added == 0 {
			break
		}
	}
	for _, message := range store.Thread(with) {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", message.Timestamp.Local().Format(time.DateTime), message.SenderID, message.Body)
	}
	return nil
}

func projects(ctx context.Context, a *app, _ []string) error {
	store, err := a.loadedProjectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	renderProjects(a.out, store.Projects())
	return nil
}

func newProject(ctx context.Context, a *app, args []string) error {
	store, err := a.loadedProjectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	project, err := store.CreateProject(ctx, domain.ProjectFields{
		Name:        args[1],
		Description: strings.Join(args[2:], " "),
		ServiceType: domain.ServiceType(args[0]),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created project %s\n", project.ID)
	return nil
}

func status(ctx context.Context, a *app, args []string) error {
	store, err := a.loadedProjectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	next := domain.ProjectStatus(args[1])
	if err := store.UpdateProject(ctx, args[0], domain.ProjectPatch{Status: &next}); err != nil {
		return err
	}
	project, _ := store.Project(args[0])
	fmt.Fprintf(a.out, "Project %s is %s\n", project.ID, project.Status)
	return nil
}

func note(ctx context.Context, a *app, args []string) error {
	store, err := a.loadedProjectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.AddMessage(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	project, _ := store.Project(args[0])
	for _, message := range project.Messages {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", message.Timestamp.Local().Format(time.DateTime), message.Sender, message.Content)
	}
	return nil
}

func deleteProject(ctx context.Context, a *app, args []string) error {
	store, err := a.loadedProjectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.DeleteProject(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted project %s\n", args[0])
	return nil
}

func plans(_ context.Context, a *app, args []string) error {
	catalog := credits.Catalog
	if len(args) == 1 {
		catalog = credits.PlansFor(domain.ServiceType(args[0]))
	}
	renderPlans(a.out, catalog)
	return nil
}

func purchase(ctx context.Context, a *app, args []string) error {
	data := make(map[string]string)
	for _, pair := range args[2:] {
		key, value, _ := strings.Cut(pair, "=")
		data[key] = value
	}

	store, err := a.loadedProjectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	ledger, err := a.ledger()
	if err != nil {
		return err
	}

	project, err := services.NewPurchaseService(ledger, store, a.log).Purchase(ctx, domain.ServicePurchase{
		Service: domain.ServiceType(args[0]),
		PlanID:  args[1],
		Data:    data,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Project %s created, %d credits left\n", project.ID, ledger.Balance())
	return nil
}

func balance(_ context.Context, a *app, _ []string) error {
	if err := a.signIn(); err != nil {
		return err
	}
	ledger, err := a.ledger()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %d credits\n", ledger.Balance())
	renderTransactions(a.out, ledger.History())
	return nil
}

func buyCredits(_ context.Context, a *app, args []string) error {
	amount, _ := strconv.Atoi(args[0])
	if err := a.signIn(); err != nil {
		return err
	}
	ledger, err := a.ledger()
	if err != nil {
		return err
	}
	if _, err := ledger.Purchase(amount); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %d credits\n", ledger.Balance())
	return nil
}

func advise(ctx context.Context, a *app, args []string) error {
	advisor, err := a.advisor()
	if err != nil {
		return err
	}
	advice, err := advisor.Advise(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, suggestion := range advice.Suggestions {
		fmt.Fprintln(a.out, suggestion)
	}
	fmt.Fprintf(a.out, "\nsentiment: %s  language: %s\n", advice.Sentiment, advice.Language)
	if len(advice.KeyPhrases) > 0 {
		fmt.Fprintf(a.out, "key phrases: %s\n", strings.Join(advice.KeyPhrases, ", "))
	}
	return nil
}

func artwork(ctx context.Context, a *app, args []string) error {
	advisor, err := a.advisor()
	if err != nil {
		return err
	}
	brief, err := advisor.ArtworkBrief(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, brief)
	return nil
}

func inspect(_ context.Context, a *app, args []string) error {
	prefix := "project:"
	if len(args) == 1 {
		prefix = args[0]
	}
	return renderKeys(a.out, a.db, prefix)
}

func (a *app) conversationConfig() services.ConversationConfig {
	return services.ConversationConfig{HistoryLimit: a.config.HistoryLimit, PageSize: a.config.PageSize}
}

func (a *app) conversationStore() (*services.ConversationStore, error) {
	if err := a.signIn(); err != nil {
		return nil, err
	}
	messages, _, err := a.gateways()
	if err != nil {
		return nil, err
	}
	return services.NewConversationStore(messages, a.identity, a.log, nil, a.conversationConfig()), nil
}

// loadedProjectStore returns a store already synchronized, mutations need the current list.
func (a *app) loadedProjectStore(ctx context.Context) (*services.ProjectStore, error) {
	if err := a.signIn(); err != nil {
		return nil, err
	}
	_, projectGateway, err := a.gateways()
	if err != nil {
		return nil, err
	}
	store := services.NewProjectStore(projectGateway, a.identity, a.log, nil)
	if err := store.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func (a *app) ledger() (*credits.Ledger, error) {
	user, err := a.identity.CurrentUser()
	if err != nil {
		return nil, err
	}
	return credits.OpenLedger(a.log, a.config.InitialCredits, user, repositories.NewCreditRepository(a.db))
}

func (a *app) advisor() (ai.IAdvisor, error) {
	if a.config.AdvisorEndpoint == "" {
		return nil, fmt.Errorf("ADVISOR_ENDPOINT is not configured")
	}
	return ai.NewAdvisor(ai.Config{
		Endpoint: a.config.AdvisorEndpoint,
		Model:    a.config.AdvisorModel,
		APIKey:   a.config.AdvisorAPIKey,
	}, a.log), nil
}
