package question

import (
	"fmt"
	"strings"

	"gradebench/internal/evaluate"
)

// Issue captures a validation problem in a test suite.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("test case validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// NormalizeSpec trims whitespace, defaults answer types, and validates a
// test suite.
func NormalizeSpec(spec Spec) (Spec, error) {
	collector := &issueCollector{}
	if spec.Version == 0 {
		collector.add("version", "is required")
	} else if spec.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", spec.Version))
	}
	if len(spec.Cases) == 0 {
		collector.add("cases", "must include at least one entry")
	}

	seenIDs := map[string]struct{}{}
	for i, item := range spec.Cases {
		prefix := fmt.Sprintf("cases[%d]", i)
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			collector.add(prefix+".id", "is required")
		} else if _, exists := seenIDs[item.ID]; exists {
			collector.add(prefix+".id", fmt.Sprintf("duplicate id %q", item.ID))
		} else {
			seenIDs[item.ID] = struct{}{}
		}

		item.Question = strings.TrimSpace(item.Question)
		if item.Question == "" {
			collector.add(prefix+".question", "is required")
		}
		item.Category = strings.TrimSpace(item.Category)
		if item.Category == "" {
			collector.add(prefix+".category", "is required")
		}
		if item.Difficulty < 1 {
			collector.add(prefix+".difficulty", "must be >= 1")
		}
		item.ExpectedAnswer = strings.TrimSpace(item.ExpectedAnswer)
		if item.ExpectedAnswer == "" {
			collector.add(prefix+".expected_answer", "is required")
		}

		item.AnswerType = strings.ToLower(strings.TrimSpace(item.AnswerType))
		if item.AnswerType == "" {
			item.AnswerType = evaluate.Exact.String()
		} else if !evaluate.KnownAnswerType(item.AnswerType) {
			collector.add(prefix+".answer_type", fmt.Sprintf("unknown answer type %q", item.AnswerType))
		}
		spec.Cases[i] = item
	}

	if err := collector.result(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
