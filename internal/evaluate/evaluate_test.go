package evaluate

import (
	"context"
	"errors"
	"math"
	"testing"
)

type gradeCase struct {
	name       string
	response   string
	expected   string
	correct    bool
	confidence float64
}

func runGradeCases(t *testing.T, answerType AnswerType, cases []gradeCase) {
	t.Helper()
	evaluator := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluator.Evaluate(tc.response, tc.expected, answerType)
			if got.Correct != tc.correct || math.Abs(got.Confidence-tc.confidence) > 1e-9 {
				t.Fatalf("Evaluate(%q, %q, %s) = (%v, %v), want (%v, %v)",
					tc.response, tc.expected, answerType, got.Correct, got.Confidence, tc.correct, tc.confidence)
			}
		})
	}
}

// TestExactLadder verifies each rung of the exact strategy.
func TestExactLadder(t *testing.T) {
	runGradeCases(t, Exact, []gradeCase{
		{"raw equal", "positive", "positive", true, 1.0},
		{"case insensitive", "  PARIS ", "paris", true, 1.0},
		{"normalized equal", "positive.", "positive", true, 1.0},
		{"prefix", "Paris is the capital", "paris", true, 0.95},
		{"substring", "The answer is positive.", "positive", true, 0.9},
		{"word subset", "positive outcome overall", "overall positive", true, 0.85},
		{"too many words", "d c b a", "a b c d", false, 0},
		{"mismatch", "london", "paris", false, 0},
	})
}

// TestNumericStrategy verifies extraction and tolerance handling.
func TestNumericStrategy(t *testing.T) {
	runGradeCases(t, Numeric, []gradeCase{
		{"sentence", "The answer is 42.", "42", true, 1.0},
		{"off by one", "43", "42", false, 0},
		{"no numbers", "no numbers here", "42", false, 0},
		{"decimal", "3.14", "3.14", true, 1.0},
		{"fraction against percent", "44", "0.44", true, 0.9},
		{"percent against fraction", "0.44", "44", true, 0.9},
		{"percent sign", "30%", "0.3", true, 0.9},
		{"scaled down", "4400", "44", true, 0.9},
		{"currency", "It costs $15", "15", true, 1.0},
		{"negative", "the delta is -3", "-3", true, 1.0},
		{"word in response", "seven apples", "7", true, 1.0},
		{"word expected", "3 things", "three", true, 1.0},
		{"word inside word", "someone", "1", true, 1.0},
		{"unparsable expected", "42", "forty-two", false, 0},
		{"empty response", "", "42", false, 0},
	})
}

// TestContainsLadder verifies each rung of the contains strategy.
func TestContainsLadder(t *testing.T) {
	runGradeCases(t, Contains, []gradeCase{
		{"raw substring", "I think the answer is Paris, the capital.", "paris", true, 1.0},
		{"normalized substring", "is it new-york?", "New-York.", true, 1.0},
		{"all words", "the rate rose sharply", "sharply rose", true, 0.9},
		{"most words", "red green blue yellow", "red green blue yellow orange", true, 0.8},
		{"synonym", "it happened in autumn", "in fall", true, 0.85},
		{"mismatch", "London is a great city", "paris", false, 0},
	})
}

// TestContainsSelfMatch verifies any string contains itself.
func TestContainsSelfMatch(t *testing.T) {
	evaluator := New()
	for _, s := range []string{"", "paris", "A longer, punctuated answer!", "  spaced  ", "42%", "e-mail"} {
		got := evaluator.Evaluate(s, s, Contains)
		if !got.Correct || got.Confidence != 1.0 {
			t.Fatalf("Evaluate(%q, %q, contains) = %+v", s, s, got)
		}
	}
}

// TestUnknownAnswerTypeGradesAsExact verifies the exact fallback.
func TestUnknownAnswerTypeGradesAsExact(t *testing.T) {
	evaluator := New()
	fallback := ParseAnswerType("fuzzy")
	if fallback != Exact {
		t.Fatalf("expected exact fallback, got %s", fallback)
	}
	pairs := [][2]string{
		{"positive.", "positive"},
		{"The answer is positive.", "positive"},
		{"negative", "positive"},
	}
	for _, pair := range pairs {
		got := evaluator.Evaluate(pair[0], pair[1], fallback)
		want := evaluator.Evaluate(pair[0], pair[1], Exact)
		if got != want {
			t.Fatalf("unknown type verdict %+v differs from exact %+v", got, want)
		}
	}
}

// TestParseAnswerType verifies names round trip through String.
func TestParseAnswerType(t *testing.T) {
	for _, name := range []string{"exact", "numeric", "contains", "semantic"} {
		if got := ParseAnswerType(name).String(); got != name {
			t.Fatalf("ParseAnswerType(%q).String() = %q", name, got)
		}
		if !KnownAnswerType(name) {
			t.Fatalf("expected %q to be known", name)
		}
	}
	if ParseAnswerType(" Numeric ") != Numeric {
		t.Fatalf("expected case-insensitive parse")
	}
	if KnownAnswerType("fuzzy") {
		t.Fatalf("expected fuzzy to be unknown")
	}
}

// TestSemanticFallsBackWithoutEmbedder verifies the contains downgrade.
func TestSemanticFallsBackWithoutEmbedder(t *testing.T) {
	for _, evaluator := range []*Evaluator{New(), New(WithEmbedder(nil))} {
		got := evaluator.Evaluate("I think it is Paris", "paris", Semantic)
		if !got.Correct || got.Confidence != 1.0 || got.Strategy != Contains {
			t.Fatalf("unexpected fallback verdict: %+v", got)
		}
	}
}

// TestSemanticFallsBackOnEmbedError verifies embedding failures downgrade.
func TestSemanticFallsBackOnEmbedError(t *testing.T) {
	failing := EmbedderFunc(func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("boom")
	})
	got := New(WithEmbedder(failing)).Evaluate("London", "paris", Semantic)
	if got.Correct || got.Confidence != 0 || got.Strategy != Contains {
		t.Fatalf("unexpected verdict: %+v", got)
	}
}

// TestSemanticUsesSimilarity verifies threshold and confidence handling.
func TestSemanticUsesSimilarity(t *testing.T) {
	vectors := map[string][]float32{
		"same":     {1, 0},
		"diagonal": {1, 1},
		"opposite": {-1, 0},
		"zero":     {0, 0},
	}
	embedder := EmbedderFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			if v, ok := vectors[text]; ok {
				out[i] = v
			} else {
				out[i] = []float32{1, 0}
			}
		}
		return out, nil
	})

	evaluator := New(WithEmbedder(embedder))
	if got := evaluator.Evaluate("same", "reference", Semantic); !got.Correct || got.Confidence != 1 || got.Strategy != Semantic {
		t.Fatalf("expected identical vectors to match, got %+v", got)
	}
	if got := evaluator.Evaluate("diagonal", "reference", Semantic); got.Correct {
		t.Fatalf("expected 0.707 to be below the default threshold, got %+v", got)
	}
	if got := evaluator.Evaluate("opposite", "reference", Semantic); got.Correct || got.Confidence != 0 {
		t.Fatalf("expected negative similarity to clamp to zero, got %+v", got)
	}
	if got := evaluator.Evaluate("zero", "reference", Semantic); got.Correct || got.Confidence != 0 {
		t.Fatalf("expected zero vector to score zero, got %+v", got)
	}

	lenient := New(WithEmbedder(embedder), WithSemanticThreshold(0.7))
	got := lenient.Evaluate("diagonal", "reference", Semantic)
	if !got.Correct || math.Abs(got.Confidence-math.Sqrt2/2) > 1e-6 {
		t.Fatalf("expected lenient threshold to accept, got %+v", got)
	}
}

// TestCosineSimilarityMismatchedLengths verifies malformed vectors score zero.
func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 2}, []float32{1}); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
