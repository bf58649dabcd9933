package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config is the client configuration, read from the environment.
// The remote endpoints are only required when BACKEND=remote.
type Config struct {
	Backend           string        `env:"BACKEND,default=local" validate:"oneof=local remote"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=data/badger"`
	GraphQLEndpoint   string        `env:"GRAPHQL_ENDPOINT" validate:"required_if=Backend remote,omitempty,url"`
	RealtimeEndpoint  string        `env:"REALTIME_ENDPOINT" validate:"required_if=Backend remote,omitempty,url"`
	APIKey            string        `env:"API_KEY"`
	AuthSecret        string        `env:"AUTH_SECRET,required=true" validate:"min=16"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h" validate:"gt=0"`
	TokenFilepath     string        `env:"TOKEN_FILEPATH,default=.artist-hub-token"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	HistoryLimit      int           `env:"HISTORY_LIMIT,default=0" validate:"gte=0"`
	PageSize          int           `env:"PAGE_SIZE,default=50" validate:"gt=0"`
	EventBufferSize   int           `env:"EVENT_BUFFER_SIZE,default=64" validate:"gt=0"`
	PushBufferSize    int           `env:"PUSH_BUFFER_SIZE,default=32" validate:"gt=0"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"gt=0"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND,default=10" validate:"gt=0"`
	RequestBurst      int           `env:"REQUEST_BURST,default=5" validate:"gt=0"`
	InitialCredits    int           `env:"INITIAL_CREDITS,default=250" validate:"gte=0"`
	AdvisorEndpoint   string        `env:"ADVISOR_ENDPOINT" validate:"omitempty,url"`
	AdvisorModel      string        `env:"ADVISOR_MODEL,default=anthropic.claude-v2"`
	AdvisorAPIKey     string        `env:"ADVISOR_API_KEY"`
	Colours           bool          `env:"COLOURS,default=true"`
}

func Load() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}
