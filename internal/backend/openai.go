package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"gradebench/internal/spec"
)

// ollamaAPIKey is sent when no key is configured; Ollama ignores it.
const ollamaAPIKey = "ollama"

// OpenAIBackend queries an OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	policy      RetryPolicy
	limiter     *rate.Limiter
	logger      *zerolog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

// Option customizes an OpenAIBackend.
type Option func(*OpenAIBackend)

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *OpenAIBackend) {
		b.sleep = sleep
	}
}

// WithClock replaces the latency clock.
func WithClock(now func() time.Time) Option {
	return func(b *OpenAIBackend) {
		b.now = now
	}
}

// NewClient builds a go-openai client for the configured endpoint.
func NewClient(cfg spec.BackendConfig) *openai.Client {
	apiKey := cfg.APIKey
	if apiKey == "" && cfg.Provider == "ollama" {
		apiKey = ollamaAPIKey
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(clientConfig)
}

// NewLimiter paces requests at cfg.RequestsPerSecond; zero means unlimited.
func NewLimiter(cfg spec.BackendConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
}

// NewOpenAI builds a backend from config. A nil logger disables logging.
func NewOpenAI(cfg spec.BackendConfig, logger *zerolog.Logger, opts ...Option) *OpenAIBackend {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	backend := &OpenAIBackend{
		client:      NewClient(cfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
		policy: RetryPolicy{
			MaxAttempts:      max(cfg.MaxRetries, 1),
			RetryDelay:       cfg.RetryDelay,
			RateLimitBackoff: cfg.RateLimitBackoff,
			MaxBackoff:       cfg.MaxBackoff,
			RequestDelay:     cfg.RequestDelay,
		},
		limiter: NewLimiter(cfg),
		logger:  logger,
		sleep:   sleepContext,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(backend)
	}
	return backend
}

// Query sends prompt, retrying transient failures per the retry policy.
func (b *OpenAIBackend) Query(ctx context.Context, prompt string) Response {
	if strings.TrimSpace(prompt) == "" {
		return failure(ErrEmptyPrompt)
	}
	var lastErr error
	for attempt := 0; attempt < b.policy.MaxAttempts; attempt++ {
		if err := b.limiter.Wait(ctx); err != nil {
			return failure(fmt.Errorf("rate limiter: %w", err))
		}
		start := b.now()
		text, err := b.complete(ctx, prompt)
		latency := b.now().Sub(start).Milliseconds()
		if err == nil {
			// Pacing only; a cancelled pause does not void the answer.
			_ = b.sleep(ctx, b.policy.RequestDelay)
			return Response{Text: text, LatencyMs: latency, Success: true}
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}

		rateLimited := isRateLimited(err)
		wait, retry := b.policy.retryWait(attempt, rateLimited)
		event := b.logger.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", b.policy.MaxAttempts)
		if !retry {
			event.Msg("backend call failed, giving up")
			break
		}
		if rateLimited {
			event.Dur("backoff", wait).Msg("rate limited by backend")
		} else {
			event.Dur("retry_in", wait).Msg("backend call failed")
		}
		if err := b.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}
	return failure(lastErr)
}

func (b *OpenAIBackend) complete(ctx context.Context, prompt string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: b.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the model ids served by the endpoint.
func (b *OpenAIBackend) ListModels(ctx context.Context) ([]string, error) {
	resp, err := b.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		ids = append(ids, model.ID)
	}
	return ids, nil
}

// HasModel reports whether the configured model is listed by the endpoint.
// Ollama lists models with a tag, so "llama3.2" matches "llama3.2:latest".
func (b *OpenAIBackend) HasModel(ctx context.Context) (bool, error) {
	ids, err := b.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == b.model || strings.TrimSuffix(id, ":latest") == b.model {
			return true, nil
		}
	}
	return false, nil
}

// Model returns the configured model name.
func (b *OpenAIBackend) Model() string {
	return b.model
}
