package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gradebench/internal/spec"
)

var supportedProviders = map[string]struct{}{
	"openai": {},
	"ollama": {},
}

func validateBackend(issues *issueCollector, backend spec.BackendConfig) {
	if _, ok := supportedProviders[backend.Provider]; !ok {
		issues.add("backend.provider", fmt.Sprintf("unsupported provider %q", backend.Provider))
	}
	if strings.TrimSpace(backend.Model) == "" {
		issues.add("backend.model", "is required")
	}
	if backend.BaseURL != "" {
		if parsed, err := url.Parse(backend.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			issues.add("backend.base_url", fmt.Sprintf("invalid url %q", backend.BaseURL))
		}
	}
	if backend.MaxRetries < 1 {
		issues.add("backend.max_retries", "must be >= 1")
	}
	if backend.Temperature < 0 || backend.Temperature > 2 {
		issues.add("backend.temperature", "must be between 0 and 2")
	}
	if backend.RequestsPerSecond < 0 {
		issues.add("backend.requests_per_second", "must be >= 0")
	}
	durations := []struct {
		field string
		value time.Duration
	}{
		{"backend.retry_delay", backend.RetryDelay},
		{"backend.request_delay", backend.RequestDelay},
		{"backend.rate_limit_backoff", backend.RateLimitBackoff},
		{"backend.max_backoff", backend.MaxBackoff},
		{"backend.timeout", backend.Timeout},
	}
	for _, duration := range durations {
		if duration.value < 0 {
			issues.add(duration.field, "must be >= 0")
		}
	}
	if backend.MaxBackoff > 0 && backend.RateLimitBackoff > backend.MaxBackoff {
		issues.add("backend.rate_limit_backoff", "must not exceed max_backoff")
	}
}

func validateEvaluator(issues *issueCollector, cfg *spec.Config) {
	threshold := cfg.Evaluator.SemanticThreshold
	if threshold <= 0 || threshold > 1 {
		issues.add("evaluator.semantic_threshold", "must be in (0, 1]")
	}
	if cfg.Evaluator.Semantic && strings.TrimSpace(cfg.Backend.EmbeddingModel) == "" {
		issues.add("backend.embedding_model", "is required when evaluator.semantic is enabled")
	}
}
