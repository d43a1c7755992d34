package normalize

import (
	"strings"
	"unicode"
)

// WordNumber pairs a spelled-out number with its value.
type WordNumber struct {
	Word  string
	Value float64
}

// Normalizer canonicalizes free text for answer comparison. It owns the
// synonym and word-number tables; a Normalizer is immutable once built and
// safe for concurrent use.
type Normalizer struct {
	synonyms    map[string]string
	wordNumbers []WordNumber
}

// New returns a Normalizer loaded with the default lookup tables.
func New() *Normalizer {
	synonyms := make(map[string]string, len(defaultSynonyms))
	for from, to := range defaultSynonyms {
		synonyms[from] = to
	}
	wordNumbers := make([]WordNumber, len(defaultWordNumbers))
	copy(wordNumbers, defaultWordNumbers)
	return &Normalizer{synonyms: synonyms, wordNumbers: wordNumbers}
}

// Normalize lower-cases text, strips punctuation (keeping hyphens embedded
// inside a word), collapses whitespace and trims the result.
func (n *Normalizer) Normalize(text string) string {
	runes := []rune(strings.ToLower(text))
	var builder strings.Builder
	builder.Grow(len(runes))
	for i, r := range runes {
		switch {
		case isWordRune(r) || unicode.IsSpace(r):
			builder.WriteRune(r)
		case r == '-' && i > 0 && i < len(runes)-1 && isWordRune(runes[i-1]) && isWordRune(runes[i+1]):
			builder.WriteRune(r)
		default:
			builder.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}

// Words normalizes text and returns its distinct whitespace-separated tokens.
func (n *Normalizer) Words(text string) map[string]struct{} {
	fields := strings.Fields(n.Normalize(text))
	words := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		words[field] = struct{}{}
	}
	return words
}

// ApplySynonyms rewrites every token found in the synonym table in a single
// pass, so mutually substitutable pairs swap rather than cascade.
func (n *Normalizer) ApplySynonyms(text string) string {
	fields := strings.Fields(text)
	for i, field := range fields {
		if replacement, ok := n.synonyms[field]; ok {
			fields[i] = replacement
		}
	}
	return strings.Join(fields, " ")
}

// WordNumbers returns the word-number table in lookup order.
func (n *Normalizer) WordNumbers() []WordNumber {
	out := make([]WordNumber, len(n.wordNumbers))
	copy(out, n.wordNumbers)
	return out
}

// LookupWordNumber returns the value of a spelled-out number.
func (n *Normalizer) LookupWordNumber(word string) (float64, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	for _, entry := range n.wordNumbers {
		if entry.Word == word {
			return entry.Value, true
		}
	}
	return 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
