package normalize

import "testing"

// TestNormalize verifies punctuation stripping and whitespace collapsing.
func TestNormalize(t *testing.T) {
	n := New()
	cases := []struct {
		in   string
		want string
	}{
		{"Positive.", "positive"},
		{"  The   answer\tis  42!  ", "the answer is 42"},
		{"Send an e-mail", "send an e-mail"},
		{"trailing- dash", "trailing dash"},
		{"-leading", "leading"},
		{"Paris, France", "paris france"},
		{"", ""},
		{"don't", "don t"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestWordsCollapsesDuplicates verifies Words returns a set.
func TestWordsCollapsesDuplicates(t *testing.T) {
	words := New().Words("Yes, yes YES no")
	if len(words) != 2 {
		t.Fatalf("expected 2 distinct words, got %d (%v)", len(words), words)
	}
	for _, word := range []string{"yes", "no"} {
		if _, ok := words[word]; !ok {
			t.Fatalf("missing word %q", word)
		}
	}
}

// TestApplySynonymsSwapsPairs verifies autumn and fall substitute for each other.
func TestApplySynonymsSwapsPairs(t *testing.T) {
	n := New()
	if got := n.ApplySynonyms("it is autumn"); got != "it is fall" {
		t.Fatalf("unexpected rewrite: %q", got)
	}
	if got := n.ApplySynonyms("it is fall"); got != "it is autumn" {
		t.Fatalf("unexpected rewrite: %q", got)
	}
	if got := n.ApplySynonyms("i dont know"); got != "i don't know" {
		t.Fatalf("unexpected rewrite: %q", got)
	}
}

// TestLookupWordNumber verifies cardinal and ordinal lookups.
func TestLookupWordNumber(t *testing.T) {
	n := New()
	for word, want := range map[string]float64{"zero": 0, "twenty": 20, "hundred": 100, "Third": 3} {
		got, ok := n.LookupWordNumber(word)
		if !ok || got != want {
			t.Fatalf("LookupWordNumber(%q) = %v, %v", word, got, ok)
		}
	}
	if _, ok := n.LookupWordNumber("twenty-one"); ok {
		t.Fatalf("expected compound word to be absent")
	}
}

// TestWordNumbersReturnsCopy verifies callers cannot mutate the table.
func TestWordNumbersReturnsCopy(t *testing.T) {
	n := New()
	table := n.WordNumbers()
	table[0].Value = 99
	if got, _ := n.LookupWordNumber("zero"); got != 0 {
		t.Fatalf("table mutated through copy: %v", got)
	}
}
