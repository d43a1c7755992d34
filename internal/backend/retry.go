package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// RetryPolicy controls how failed calls are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls made for one prompt.
	MaxAttempts int
	// RetryDelay grows linearly: the n-th retry waits n*RetryDelay.
	RetryDelay time.Duration
	// RateLimitBackoff doubles on every rate-limited attempt up to MaxBackoff.
	RateLimitBackoff time.Duration
	MaxBackoff       time.Duration
	// RequestDelay pauses after each successful call.
	RequestDelay time.Duration
}

// retryWait returns how long to wait after a failed attempt (0-based) and
// whether another attempt follows.
func (p RetryPolicy) retryWait(attempt int, rateLimited bool) (time.Duration, bool) {
	if attempt >= p.MaxAttempts-1 {
		return 0, false
	}
	if !rateLimited {
		return p.RetryDelay * time.Duration(attempt+1), true
	}
	wait := p.RateLimitBackoff << attempt
	if p.MaxBackoff > 0 && (wait > p.MaxBackoff || wait < 0) {
		wait = p.MaxBackoff
	}
	return wait, true
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
