// Package planner submits the daily-plan prompt to an OpenAI-compatible chat
// completion API.
package planner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"dayplan/internal/config"
	"dayplan/internal/log"
)

const (
	// SystemPrompt sets the assistant's role for every plan request.
	SystemPrompt = "Você é um assistente pessoal organizado e direto."

	// Temperature biases toward consistent but not identical phrasing.
	Temperature float32 = 0.6

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// APITimeout is the default timeout for one completion request.
	APITimeout = 120 * time.Second
)

// ErrPlanUnavailable is returned when the API produced no usable plan.
// The caller must skip plan delivery.
var ErrPlanUnavailable = errors.New("plan unavailable")

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements service.PlanGenerator.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New creates a Client.
func New(opts Options) *Client {
	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = normalizeBaseURL(opts.BaseURL)
	}
	if opts.HTTPClient != nil {
		clientConfig.HTTPClient = opts.HTTPClient
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
	}
}

// FromConfig creates a Client from run configuration.
func FromConfig(cfg *config.Config) *Client {
	return New(Options{
		APIKey:  cfg.ChatAPIKey,
		BaseURL: cfg.ChatBaseURL,
		Model:   cfg.Model,
	})
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// normalizeBaseURL strips trailing slashes and the "/chat/completions" suffix
// so the path is never doubled when the client appends it itself.
//
// Expectations:
//   - Strips a trailing "/chat/completions" suffix
//   - Strips a trailing slash
//   - Returns the URL unchanged when neither suffix is present
func normalizeBaseURL(raw string) string {
	s := strings.TrimRight(raw, "/")
	return strings.TrimSuffix(s, "/chat/completions")
}

// GeneratePlan implements service.PlanGenerator.
//
// Expectations:
//   - Sends the fixed system prompt and the given prompt as the user message
//   - Sends temperature 0.6 and the configured model
//   - Returns the first choice's content on success
//   - Logs status and body and returns ErrPlanUnavailable on a non-success response
//   - Returns ErrPlanUnavailable when the response has no choices or empty content
func (c *Client) GeneratePlan(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("planner: empty prompt: %w", ErrPlanUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: Temperature,
	}

	log.Debug().
		Str("model", c.model).
		Str("prompt", prompt).
		Float32("temperature", Temperature).
		Msg("planner: request")

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logFailure(err)
		return "", fmt.Errorf("planner: %w: %w", ErrPlanUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		log.Error().Str("model", c.model).Msg("planner: response has no choices")
		return "", fmt.Errorf("planner: no choices: %w", ErrPlanUnavailable)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		log.Error().Str("model", c.model).Msg("planner: empty completion")
		return "", fmt.Errorf("planner: empty completion: %w", ErrPlanUnavailable)
	}

	log.Info().
		Str("finishReason", string(resp.Choices[0].FinishReason)).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Msg("planner: plan generated")
	return content, nil
}

// logFailure records the HTTP status and response detail of a failed call.
func logFailure(err error) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		log.Error().
			Int("status", apiErr.HTTPStatusCode).
			Str("type", apiErr.Type).
			Str("body", apiErr.Message).
			Msg("planner: API error")
		return
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		log.Error().
			Int("status", reqErr.HTTPStatusCode).
			Err(reqErr).
			Msg("planner: request error")
		return
	}
	log.Error().Err(err).Msg("planner: request failed")
}
