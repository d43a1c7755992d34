package evaluate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const numericTolerance = 0.01

var (
	numberPattern   = regexp.MustCompile(`-?\d+\.?\d*`)
	numberDecorator = strings.NewReplacer("$", "", "%", "")
)

// numericRules compare one extracted candidate against the expected value.
// The last rung accepts a fraction written against a percentage ("0.44" for
// "44") so percentage-form mismatches are graded the same in both directions.
var numericRules = []struct {
	confidence float64
	match      func(candidate, expected float64) bool
}{
	{1.0, func(c, e float64) bool { return math.Abs(c-e) < numericTolerance }},
	{0.9, func(c, e float64) bool { return math.Abs(c-e*100) < numericTolerance }},
	{0.9, func(c, e float64) bool { return math.Abs(c/100-e) < numericTolerance }},
	{0.9, func(c, e float64) bool { return math.Abs(c*100-e) < numericTolerance }},
}

func (e *Evaluator) numeric(in *comparison) Verdict {
	expected, ok := e.parseExpectedNumber(in.expected)
	if !ok {
		return Verdict{Strategy: Numeric}
	}
	for _, candidate := range e.extractNumbers(in.response) {
		for _, r := range numericRules {
			if r.match(candidate, expected) {
				return Verdict{Correct: true, Confidence: r.confidence, Strategy: Numeric}
			}
		}
	}
	return Verdict{Strategy: Numeric}
}

func (e *Evaluator) parseExpectedNumber(expected string) (float64, bool) {
	if value, err := strconv.ParseFloat(expected, 64); err == nil {
		return value, true
	}
	return e.normalizer.LookupWordNumber(expected)
}

// extractNumbers returns numeric candidates in extraction order: digit
// tokens first, then every table word occurring anywhere in the text.
func (e *Evaluator) extractNumbers(text string) []float64 {
	var candidates []float64
	for _, token := range numberPattern.FindAllString(numberDecorator.Replace(text), -1) {
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, value)
	}
	lower := strings.ToLower(text)
	for _, entry := range e.normalizer.WordNumbers() {
		if strings.Contains(lower, entry.Word) {
			candidates = append(candidates, entry.Value)
		}
	}
	return candidates
}
