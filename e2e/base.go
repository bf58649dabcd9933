package e2e

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"artist-hub/infrastructure/gateway"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.GraphQLEndpoint == "" {
		s.T().Skip("E2E_GRAPHQL_ENDPOINT not set")
	}
}

// staticIdentity is a user signed in with a token issued by the backend.
type staticIdentity struct {
	user  domain.UserID
	token string
}

func (i staticIdentity) CurrentUser() (domain.UserID, error) {
	if i.user == "" {
		return "", errors.ErrUnauthenticated
	}
	return i.user, nil
}

func (i staticIdentity) Token() string { return i.token }

func (s *BaseSuite) Identity(user, token string) staticIdentity {
	return staticIdentity{user: domain.UserID(user), token: token}
}

// Gateway connects to the deployed backend on behalf of identity.
func (s *BaseSuite) Gateway(t *testing.T, name string, identity staticIdentity) *gateway.GraphQLGateway {
	// Print a colorized header for the connection step in logs
	header := fmt.Sprintf("  ====== %s (%s) ======", name, identity.user)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	log := s.Logger()
	realtime := gateway.NewRealtimeClient(gateway.RealtimeConfig{
		Endpoint: s.Config.RealtimeEndpoint,
		APIKey:   s.Config.APIKey,
	}, identity, log)
	remote, err := gateway.NewGraphQLGateway(gateway.GraphQLConfig{
		Endpoint:          s.Config.GraphQLEndpoint,
		APIKey:            s.Config.APIKey,
		RequestsPerSecond: 5,
		Burst:             2,
	}, identity, realtime, log)
	s.Require().NoError(err, "Failed to build the gateway for "+s.Config.GraphQLEndpoint)
	return remote
}

func (s *BaseSuite) Logger() *slog.Logger {
	if s.Config.DebugLogs {
		return logs.GetLoggerFromLevel(slog.LevelDebug)
	}
	return logs.GetLoggerFromLevel(slog.LevelWarn)
}

func (s *BaseSuite) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}
