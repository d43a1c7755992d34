package evaluate

import "strings"

// rule is one rung of a confidence ladder. It reports whether it matched and
// with what confidence.
type rule func(in *comparison) (float64, bool)

// fixed builds a rule that yields a constant confidence when pred holds.
func fixed(confidence float64, pred func(in *comparison) bool) rule {
	return func(in *comparison) (float64, bool) {
		if pred(in) {
			return confidence, true
		}
		return 0, false
	}
}

// firstMatch walks rules top to bottom and returns the first match.
func firstMatch(strategy AnswerType, in *comparison, rules []rule) Verdict {
	for _, r := range rules {
		if confidence, ok := r(in); ok {
			return Verdict{Correct: true, Confidence: confidence, Strategy: strategy}
		}
	}
	return Verdict{Strategy: strategy}
}

var exactRules = []rule{
	fixed(1.0, func(in *comparison) bool { return in.response == in.expected }),
	fixed(1.0, func(in *comparison) bool { return in.normalizedResponse == in.normalizedExpected }),
	fixed(0.95, func(in *comparison) bool { return strings.HasPrefix(in.normalizedResponse, in.normalizedExpected) }),
	fixed(0.9, func(in *comparison) bool { return strings.Contains(in.normalizedResponse, in.normalizedExpected) }),
	fixed(0.85, func(in *comparison) bool {
		return len(in.expectedWords) <= 3 && subset(in.expectedWords, in.responseWords)
	}),
}

var containsRules = []rule{
	fixed(1.0, func(in *comparison) bool { return strings.Contains(in.response, in.expected) }),
	fixed(1.0, func(in *comparison) bool { return strings.Contains(in.normalizedResponse, in.normalizedExpected) }),
	fixed(0.9, func(in *comparison) bool {
		return len(in.expectedWords) > 0 && subset(in.expectedWords, in.responseWords)
	}),
	func(in *comparison) (float64, bool) {
		if len(in.expectedWords) == 0 {
			return 0, false
		}
		ratio := float64(overlap(in.expectedWords, in.responseWords)) / float64(len(in.expectedWords))
		return ratio, ratio >= 0.8
	},
	fixed(0.85, func(in *comparison) bool { return strings.Contains(in.synonymResponse, in.normalizedExpected) }),
}

func subset(words, of map[string]struct{}) bool {
	return overlap(words, of) == len(words)
}

func overlap(words, of map[string]struct{}) int {
	count := 0
	for word := range words {
		if _, ok := of[word]; ok {
			count++
		}
	}
	return count
}
