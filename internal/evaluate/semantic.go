package evaluate

import (
	"context"
	"errors"
	"math"
)

// ErrNoEmbedder is returned by NoEmbedder.
var ErrNoEmbedder = errors.New("embedding capability not configured")

// Embedder turns texts into embedding vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// NoEmbedder is the absent embedding capability.
type NoEmbedder struct{}

// Embed always fails with ErrNoEmbedder.
func (NoEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrNoEmbedder
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

func (e *Evaluator) semantic(ctx context.Context, in *comparison) Verdict {
	if _, absent := e.embedder.(NoEmbedder); absent {
		return firstMatch(Contains, in, containsRules)
	}
	vectors, err := e.embedder.Embed(ctx, []string{in.response, in.expected})
	if err != nil || len(vectors) != 2 {
		return firstMatch(Contains, in, containsRules)
	}
	similarity := CosineSimilarity(vectors[0], vectors[1])
	return Verdict{
		Correct:    similarity >= e.threshold,
		Confidence: clamp(similarity),
		Strategy:   Semantic,
	}
}

// CosineSimilarity returns the cosine of the angle between a and b. A
// zero-norm vector, or vectors of differing length, yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp(value float64) float64 {
	switch {
	case math.IsNaN(value) || value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
