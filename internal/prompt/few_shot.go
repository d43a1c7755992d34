package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gradebench/internal/question"
)

const maxExamples = 3

// Example is one solved question shown before the real one.
type Example struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FewShotGenerator prefixes questions with solved examples of the same category.
type FewShotGenerator struct {
	examples map[string][]Example
}

// NewFewShot builds a few-shot generator from the default examples, with
// categories in overrides replacing the defaults.
func NewFewShot(overrides map[string][]Example) *FewShotGenerator {
	examples := make(map[string][]Example, len(defaultExamples)+len(overrides))
	for category, list := range defaultExamples {
		examples[category] = list
	}
	for category, list := range overrides {
		examples[category] = list
	}
	return &FewShotGenerator{examples: examples}
}

// Generate renders up to three examples followed by the question.
func (g *FewShotGenerator) Generate(item question.Case) string {
	examples := g.examples[item.Category]
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	blocks := make([]string, 0, len(examples))
	for i, example := range examples {
		blocks = append(blocks, "Example "+strconv.Itoa(i+1)+":\nQuestion: "+example.Question+"\nAnswer: "+example.Answer)
	}
	return "Here are some examples:\n\n" + strings.Join(blocks, "\n\n") +
		"\n\nNow answer this question:\nQuestion: " + item.Question + "\nAnswer:"
}

// LoadExamples reads few-shot examples keyed by category from a JSON file.
func LoadExamples(path string) (map[string][]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read few-shot examples: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var examples map[string][]Example
	if err := decoder.Decode(&examples); err != nil {
		return nil, fmt.Errorf("parse few-shot examples: %w", err)
	}
	return examples, nil
}

var defaultExamples = map[string][]Example{
	"sentiment": {
		{"The service was terrible and the food was cold.", "negative"},
		{"I had an amazing time at the concert!", "positive"},
		{"The weather today is partly cloudy.", "neutral"},
	},
	"math": {
		{"If a book costs $12 and you buy 3, how much do you spend?", "36"},
		{"What is 15 plus 27?", "42"},
		{"If you have 20 cookies and eat 8, how many remain?", "12"},
	},
	"logic": {
		{"All cats are animals. Whiskers is a cat. Is Whiskers an animal?", "yes"},
		{"If it rains, the ground is wet. It rained. Is the ground wet?", "yes"},
		{"All birds can fly. Penguins are birds. Can penguins fly?", "no"},
	},
	"classification": {
		{"The stock market closed higher today with tech leading gains.", "finance"},
		{"The team won the championship after a thrilling overtime.", "sports"},
		{"Scientists discovered a new species in the Amazon.", "science"},
	},
	"reading": {
		{"Text: John is 25 years old. Question: How old is John?", "25"},
		{"Text: The capital of France is Paris. Question: What is France's capital?", "Paris"},
		{"Text: Water boils at 100 degrees Celsius. Question: At what temperature does water boil?", "100 degrees Celsius"},
	},
	"commonsense": {
		{"What do you use to cut paper?", "scissors"},
		{"Where do fish live?", "water"},
		{"What season comes after summer?", "fall"},
	},
	"code": {
		{"What does print(2 + 3) output?", "5"},
		{"What does print('hello'.upper()) output?", "HELLO"},
		{"What does print(len([1, 2, 3])) output?", "3"},
	},
}
