// Package backend sends prompts to a language model and reports the
// outcome of each call.
package backend

import (
	"context"
	"errors"
)

// ErrEmptyPrompt is reported for blank prompts, which are never sent.
var ErrEmptyPrompt = errors.New("empty prompt")

// Response is the outcome of one query. Failures are carried in Err rather
// than returned, so callers record them alongside successful calls.
type Response struct {
	Text      string
	LatencyMs int64
	Success   bool
	Err       string
}

// Backend answers prompts.
type Backend interface {
	Query(ctx context.Context, prompt string) Response
}

// Func adapts a function to Backend.
type Func func(ctx context.Context, prompt string) Response

// Query calls f.
func (f Func) Query(ctx context.Context, prompt string) Response {
	return f(ctx, prompt)
}

func failure(err error) Response {
	return Response{Err: err.Error()}
}
