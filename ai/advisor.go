// Package ai talks to the hosted text model behind the marketing advisor and
// artwork services. It is independent from the synchronization layer.
package ai

import (
	"artist-hub/errors"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const (
	DefaultModel   = "anthropic.claude-v2"
	anthropicAPI   = "bedrock-2023-05-31"
	stopSequence   = "\n\nHuman:"
	maxTokens      = 2048
	defaultTimeout = 60 * time.Second
)

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

type Advice struct {
	Suggestions []string
	Sentiment   Sentiment
	Entities    []string
	KeyPhrases  []string
	Language    string
}

type IAdvisor interface {
	Advise(ctx context.Context, prompt string) (Advice, error)
	ArtworkBrief(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Client   *http.Client
}

type Advisor struct {
	config Config
	log    *slog.Logger
}

type invokeRequest struct {
	Prompt           string   `json:"prompt"`
	MaxTokens        int      `json:"max_tokens_to_sample"`
	Temperature      float64  `json:"temperature"`
	TopK             int      `json:"top_k"`
	TopP             float64  `json:"top_p"`
	StopSequences    []string `json:"stop_sequences"`
	AnthropicVersion string   `json:"anthropic_version"`
}

var (
	entityPattern    = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	keyPhrasePattern = regexp.MustCompile(`"([^"]+)"`)
)

func NewAdvisor(config Config, log *slog.Logger) *Advisor {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: defaultTimeout}
	}
	return &Advisor{config: config, log: log}
}

// Advise asks for marketing suggestions and extracts the highlights of the answer.
func (a *Advisor) Advise(ctx context.Context, prompt string) (Advice, error) {
	completion, err := a.invoke(ctx, invokeRequest{
		Prompt:      frame(prompt, "Let me help you with that."),
		Temperature: 0.7,
	})
	if err != nil {
		return Advice{}, err
	}
	return analyse(completion), nil
}

// ArtworkBrief returns the raw design brief for an album cover.
func (a *Advisor) ArtworkBrief(ctx context.Context, prompt string) (string, error) {
	return a.invoke(ctx, invokeRequest{
		Prompt:      frame("Generate album artwork: "+prompt, "Let me help with that design."),
		Temperature: 0.9,
	})
}

func (a *Advisor) invoke(ctx context.Context, input invokeRequest) (string, error) {
	input.MaxTokens = maxTokens
	input.TopK = 250
	input.TopP = 0.999
	input.StopSequences = []string{stopSequence}
	input.AnthropicVersion = anthropicAPI

	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrInference, err)
	}
	endpoint := strings.TrimRight(a.config.Endpoint, "/") + "/model/" + url.PathEscape(a.config.Model) + "/invoke"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrInference, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	start := time.Now()
	resp, err := a.config.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrInference, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrInference, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", errors.ErrInference, resp.StatusCode,
			gjson.GetBytes(raw, "message").String())
	}
	completion := gjson.GetBytes(raw, "completion")
	if !completion.Exists() {
		return "", fmt.Errorf("%w: response has no completion", errors.ErrInference)
	}

	a.log.Debug("Inference done", "model", a.config.Model, "latency_ms", time.Since(start).Milliseconds(),
		"stop_reason", gjson.GetBytes(raw, "stop_reason").String())
	return completion.String(), nil
}

func frame(prompt, opening string) string {
	return fmt.Sprintf("\n\nHuman: %s\n\nAssistant: %s", prompt, opening)
}

func analyse(completion string) Advice {
	lower := strings.ToLower(completion)
	sentiment := SentimentNeutral
	switch {
	case strings.Contains(lower, "positive"):
		sentiment = SentimentPositive
	case strings.Contains(lower, "negative"):
		sentiment = SentimentNegative
	}

	suggestions := lo.Filter(strings.Split(completion, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	keyPhrases := lo.Map(keyPhrasePattern.FindAllStringSubmatch(completion, -1), func(match []string, _ int) string {
		return match[1]
	})

	return Advice{
		Suggestions: suggestions,
		Sentiment:   sentiment,
		Entities:    lo.Uniq(entityPattern.FindAllString(completion, -1)),
		KeyPhrases:  keyPhrases,
		Language:    whatlanggo.Detect(completion).Lang.Iso6391(),
	}
}
