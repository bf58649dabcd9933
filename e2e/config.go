package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config points the suite at a deployed backend. Scenarios are skipped when
// E2E_GRAPHQL_ENDPOINT is empty.
type Config struct {
	GraphQLEndpoint  string `envconfig:"E2E_GRAPHQL_ENDPOINT"`
	RealtimeEndpoint string `envconfig:"E2E_REALTIME_ENDPOINT"`
	APIKey           string `envconfig:"E2E_API_KEY"`
	// Tokens of two existing users, the second one being the counterparty
	User      string `envconfig:"E2E_USER"`
	UserToken string `envconfig:"E2E_USER_TOKEN"`
	Peer      string `envconfig:"E2E_PEER"`
	PeerToken string `envconfig:"E2E_PEER_TOKEN"`
	// E2E_DEBUG_LOGS prints the debug logs of the gateways
	DebugLogs bool `envconfig:"E2E_DEBUG_LOGS" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
