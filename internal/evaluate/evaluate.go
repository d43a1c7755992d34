package evaluate

import (
	"context"
	"strings"

	"gradebench/internal/normalize"
)

// DefaultSemanticThreshold is the cosine similarity a semantic match must reach.
const DefaultSemanticThreshold = 0.8

// Verdict is the outcome of grading one response.
type Verdict struct {
	Correct    bool
	Confidence float64
	// Strategy is the strategy that produced the verdict. It differs from the
	// requested answer type when a semantic match falls back to Contains.
	Strategy AnswerType
}

// Evaluator grades model responses against expected answers.
type Evaluator struct {
	normalizer *normalize.Normalizer
	embedder   Embedder
	threshold  float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithEmbedder enables the semantic strategy.
func WithEmbedder(embedder Embedder) Option {
	return func(e *Evaluator) {
		e.embedder = embedder
	}
}

// WithSemanticThreshold sets the similarity a semantic match must reach.
func WithSemanticThreshold(threshold float64) Option {
	return func(e *Evaluator) {
		e.threshold = threshold
	}
}

// WithNormalizer replaces the default text normalizer.
func WithNormalizer(normalizer *normalize.Normalizer) Option {
	return func(e *Evaluator) {
		if normalizer != nil {
			e.normalizer = normalizer
		}
	}
}

// New builds an Evaluator. Without WithEmbedder, semantic answers are graded
// with the Contains strategy.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		normalizer: normalize.New(),
		embedder:   NoEmbedder{},
		threshold:  DefaultSemanticThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.embedder == nil {
		e.embedder = NoEmbedder{}
	}
	return e
}

// Evaluate grades response against expected using the given strategy.
func (e *Evaluator) Evaluate(response, expected string, answerType AnswerType) Verdict {
	return e.EvaluateContext(context.Background(), response, expected, answerType)
}

// EvaluateContext is Evaluate with a context for the embedding call made by
// the semantic strategy. The other strategies ignore ctx.
func (e *Evaluator) EvaluateContext(ctx context.Context, response, expected string, answerType AnswerType) Verdict {
	in := e.prepare(response, expected)
	switch answerType {
	case Numeric:
		return e.numeric(in)
	case Contains:
		return firstMatch(Contains, in, containsRules)
	case Semantic:
		return e.semantic(ctx, in)
	default:
		return firstMatch(Exact, in, exactRules)
	}
}

// comparison holds both sides of a grading call in every form the rules read.
type comparison struct {
	response           string
	expected           string
	normalizedResponse string
	normalizedExpected string
	responseWords      map[string]struct{}
	expectedWords      map[string]struct{}
	synonymResponse    string
}

func (e *Evaluator) prepare(response, expected string) *comparison {
	response = strings.ToLower(strings.TrimSpace(response))
	expected = strings.ToLower(strings.TrimSpace(expected))
	in := &comparison{
		response:           response,
		expected:           expected,
		normalizedResponse: e.normalizer.Normalize(response),
		normalizedExpected: e.normalizer.Normalize(expected),
		responseWords:      e.normalizer.Words(response),
		expectedWords:      e.normalizer.Words(expected),
	}
	in.synonymResponse = e.normalizer.ApplySynonyms(in.normalizedResponse)
	return in
}
