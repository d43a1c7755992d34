package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gradebench/internal/question"
)

var sample = question.Case{ID: "1", Question: "What is 6*7?", Category: "math", Difficulty: 1, ExpectedAnswer: "42", AnswerType: "numeric"}

// TestSetCoversKnownTechniques verifies every name resolves to a generator.
func TestSetCoversKnownTechniques(t *testing.T) {
	set := NewSet(nil)
	for _, name := range Names() {
		if !Known(name) {
			t.Fatalf("expected %q to be known", name)
		}
		generator, err := set.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %q: %v", name, err)
		}
		if got := generator.Generate(sample); !strings.Contains(got, sample.Question) {
			t.Fatalf("%s prompt missing question: %q", name, got)
		}
	}
	if _, err := set.Lookup("tree_of_thought"); err == nil {
		t.Fatalf("expected unknown technique error")
	}
}

// TestCategoryHints verifies category-specific text and fallbacks.
func TestCategoryHints(t *testing.T) {
	if got := improved(sample); !strings.Contains(got, "Respond with only the numerical answer.") {
		t.Fatalf("missing math hint: %q", got)
	}
	other := sample
	other.Category = "geography"
	if got := improved(other); !strings.Contains(got, "Provide a clear and concise answer.") {
		t.Fatalf("missing fallback hint: %q", got)
	}
	if got := roleBased(other); !strings.HasPrefix(got, "You are a helpful assistant.") {
		t.Fatalf("missing fallback role: %q", got)
	}
}

// TestFewShotUsesThreeExamples verifies example selection and overrides.
func TestFewShotUsesThreeExamples(t *testing.T) {
	got := NewFewShot(nil).Generate(sample)
	if strings.Count(got, "Example ") != 3 || !strings.HasSuffix(got, "Answer:") {
		t.Fatalf("unexpected few-shot prompt: %q", got)
	}

	path := filepath.Join(t.TempDir(), "examples.json")
	payload := `{"math": [{"question": "1+1?", "answer": "2"}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write examples: %v", err)
	}
	examples, err := LoadExamples(path)
	if err != nil {
		t.Fatalf("load examples: %v", err)
	}
	got = NewFewShot(examples).Generate(sample)
	if strings.Count(got, "Example ") != 1 || !strings.Contains(got, "Question: 1+1?\nAnswer: 2") {
		t.Fatalf("expected overridden example, got %q", got)
	}
	if got := NewFewShot(examples).Generate(question.Case{Question: "Q", Category: "logic"}); strings.Count(got, "Example ") != 3 {
		t.Fatalf("expected default logic examples to survive, got %q", got)
	}
}
