package main

import (
	"artist-hub/auth"
	"artist-hub/contract"
	"artist-hub/infrastructure/gateway"
	"artist-hub/internal"
	"artist-hub/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var (
	errUsage          = goerrors.New("usage")
	errUnknownCommand = goerrors.New("unknown command")
)

func main() {
	code, err := run(os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

// run executes one command and maps its outcome to an exit code.
// Deferred cleanups all run before main picks the exit code.
func run(args []string, in io.Reader, out io.Writer) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{in: in, out: out}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	cmd, err := root.ExecuteContextC(ctx)
	switch {
	case err == nil:
		return exitOK, nil
	case goerrors.Is(err, errUnknownCommand):
		fmt.Fprint(out, root.UsageString())
		return exitUsage, err
	case goerrors.Is(err, errUsage):
		if cmd == nil || !cmd.HasParent() {
			fmt.Fprint(out, root.UsageString())
		} else {
			fmt.Fprintf(out, "usage: %s\n", cmd.UseLine())
		}
		return exitUsage, nil
	default:
		return exitError, err
	}
}

type app struct {
	config   internal.Config
	log      *slog.Logger
	db       *badger.DB
	issuer   *auth.TokenIssuer
	identity *auth.TokenIdentity
	users    repositories.IUserRepository
	in       io.Reader
	out      io.Writer

	logLevel string
}

// open wires the client from the environment, once per process.
func (a *app) open() error {
	if a.db != nil {
		return nil
	}

	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	a.config = config
	a.log = logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	a.db = db

	// 3. Identity
	a.issuer = auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	a.identity = auth.NewTokenIdentity(a.issuer)
	a.users = repositories.NewUserRepository(db)
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	a.log.Debug("Closing BadgerDB...")
	_ = a.db.Close()
}

// signIn restores the session saved by the last login.
func (a *app) signIn() error {
	token, err := os.ReadFile(a.config.TokenFilepath)
	if err != nil {
		if goerrors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("not signed in, run login first")
		}
		return err
	}
	user, err := a.identity.SignIn(strings.TrimSpace(string(token)))
	if err != nil {
		return fmt.Errorf("session expired, run login again: %w", err)
	}
	a.log.Debug("Signed in", "user", user)
	return nil
}

func (a *app) saveToken(token string) error {
	return os.WriteFile(a.config.TokenFilepath, []byte(token+"\n"), 0o600)
}

// gateways picks the backend: badger in this process, or the managed GraphQL API.
func (a *app) gateways() (contract.MessageGateway, contract.ProjectGateway, error) {
	if a.config.Backend == internal.BackendRemote {
		realtime := gateway.NewRealtimeClient(gateway.RealtimeConfig{
			Endpoint:   a.config.RealtimeEndpoint,
			APIKey:     a.config.APIKey,
			BufferSize: a.config.PushBufferSize,
		}, a.identity, a.log)
		remote, err := gateway.NewGraphQLGateway(gateway.GraphQLConfig{
			Endpoint:          a.config.GraphQLEndpoint,
			APIKey:            a.config.APIKey,
			RequestsPerSecond: a.config.RequestsPerSecond,
			Burst:             a.config.RequestBurst,
		}, a.identity, realtime, a.log)
		if err != nil {
			return nil, nil, err
		}
		return remote, remote, nil
	}

	local := gateway.NewLocalGateway(
		repositories.NewMessageRepository(a.db, a.log),
		repositories.NewProjectRepository(a.db),
		a.users,
		gateway.NewBroker(a.log, a.config.PushBufferSize),
		a.log,
	)
	return local, local, nil
}
