package prompt

import (
	"fmt"
	"sort"
	"strings"

	"gradebench/internal/question"
)

// Technique names.
const (
	Baseline       = "baseline"
	Improved       = "improved"
	FewShot        = "few_shot"
	ChainOfThought = "cot"
	RoleBased      = "role_based"
)

// Generator renders the prompt sent to the model for one test case.
type Generator interface {
	Generate(item question.Case) string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(item question.Case) string

// Generate calls f.
func (f GeneratorFunc) Generate(item question.Case) string {
	return f(item)
}

var names = []string{Baseline, Improved, FewShot, ChainOfThought, RoleBased}

// Names returns the built-in techniques in report order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Known reports whether name is a built-in technique.
func Known(name string) bool {
	for _, known := range names {
		if known == name {
			return true
		}
	}
	return false
}

// Set maps technique names to generators.
type Set map[string]Generator

// NewSet builds the built-in generators. examples, when non-nil, replaces
// the few-shot examples of the categories it names.
func NewSet(examples map[string][]Example) Set {
	return Set{
		Baseline:       GeneratorFunc(baseline),
		Improved:       GeneratorFunc(improved),
		FewShot:        NewFewShot(examples),
		ChainOfThought: GeneratorFunc(chainOfThought),
		RoleBased:      GeneratorFunc(roleBased),
	}
}

// Lookup returns the generator for a technique.
func (s Set) Lookup(name string) (Generator, error) {
	if generator, ok := s[name]; ok {
		return generator, nil
	}
	available := make([]string, 0, len(s))
	for key := range s {
		available = append(available, key)
	}
	sort.Strings(available)
	return nil, fmt.Errorf("unknown technique %q (available: %s)", name, strings.Join(available, ", "))
}

const conciseSuffix = "\n\nAnswer concisely with just the answer, no explanation."

func baseline(item question.Case) string {
	return "Answer the following question:\n" + item.Question + conciseSuffix
}

var formatHints = map[string]string{
	"sentiment":      "Respond with exactly one word: positive, negative, or neutral.",
	"math":           "Respond with only the numerical answer.",
	"logic":          "Respond with only: yes or no.",
	"classification": "Respond with only the category name.",
	"reading":        "Provide a brief, direct answer.",
	"commonsense":    "Provide a brief, direct answer.",
	"code":           "Respond with only what the code prints.",
}

func improved(item question.Case) string {
	hint, ok := formatHints[item.Category]
	if !ok {
		hint = "Provide a clear and concise answer."
	}
	return "Question: " + item.Question + "\n\n" + hint + conciseSuffix
}

func chainOfThought(item question.Case) string {
	var builder strings.Builder
	builder.WriteString("Question: ")
	builder.WriteString(item.Question)
	builder.WriteString("\n\nLet's think step by step:\n")
	builder.WriteString("1. First, identify what the question is asking.\n")
	builder.WriteString("2. Break down the problem into smaller parts.\n")
	builder.WriteString("3. Work through each part carefully.\n")
	builder.WriteString("4. Arrive at the final answer.\n\n")
	builder.WriteString("Think through this step by step, then provide your answer in this format:\n")
	builder.WriteString("Reasoning: [your step-by-step thinking]\n")
	builder.WriteString("Final Answer: [your answer]")
	return builder.String()
}

var roles = map[string]string{
	"sentiment":      "You are an expert sentiment analyst with years of experience in natural language processing and emotion detection.",
	"math":           "You are a mathematics professor who specializes in problem-solving and has taught arithmetic for 20 years.",
	"logic":          "You are a logic professor and expert in formal reasoning, syllogisms, and deductive logic.",
	"classification": "You are a content categorization expert with expertise in text analysis and topic classification.",
	"reading":        "You are a reading comprehension expert and English teacher skilled at extracting key information from text.",
	"commonsense":    "You are an expert in common sense reasoning and everyday logic with extensive real-world knowledge.",
	"code":           "You are a senior software engineer with 15 years of experience who can trace code execution perfectly.",
}

// Older case files used these category names.
func init() {
	roles["logical"] = roles["logic"]
	roles["comprehension"] = roles["reading"]
}

func roleBased(item question.Case) string {
	role, ok := roles[item.Category]
	if !ok {
		role = "You are a helpful assistant."
	}
	return role + "\n\nQuestion: " + item.Question + "\n\nProvide your expert answer."
}
