package trial

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestWriteReadPreservesTrials verifies the results table keeps every field.
func TestWriteReadPreservesTrials(t *testing.T) {
	trials := []Trial{
		{
			ItemID: "1", Repetition: 1, Technique: "baseline", Category: "math", Difficulty: 2,
			Prompt: "What is 6*7?", Response: "42, \"obviously\"", Expected: "42", AnswerType: "numeric",
			Correct: true, Confidence: 1, LatencyMs: 812, Succeeded: true,
		},
		{
			ItemID: "1", Repetition: 2, Technique: "baseline", Category: "math", Difficulty: 2,
			Expected: "42", AnswerType: "numeric", Succeeded: false, Error: "timeout\nafter retries",
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, trials); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(trials) {
		t.Fatalf("expected %d trials, got %d", len(trials), len(got))
	}
	for i := range trials {
		if got[i] != trials[i] {
			t.Fatalf("trial %d mismatch:\n got %+v\nwant %+v", i, got[i], trials[i])
		}
	}
}

// TestReadAcceptsMinimalColumns verifies tables written by older tooling load.
func TestReadAcceptsMinimalColumns(t *testing.T) {
	input := "id,category,difficulty,run,prompt,response,expected,correct,confidence,latency_ms,success\n" +
		"7,sentiment,1,1,p,positive,positive,1,1.0,123.4,True\n"
	got, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 trial, got %d", len(got))
	}
	if !got[0].Correct || !got[0].Succeeded || got[0].LatencyMs != 123 || got[0].Technique != "" {
		t.Fatalf("unexpected trial: %+v", got[0])
	}
}

// TestReadRejectsMalformedRows verifies unparsable rows fail the read.
func TestReadRejectsMalformedRows(t *testing.T) {
	cases := map[string]string{
		"missing column": "id,category,run,correct\n1,math,1,1\n",
		"bad run":        "id,category,difficulty,run,correct\n1,math,1,zero,1\n",
		"bad correct":    "id,category,difficulty,run,correct\n1,math,1,1,maybe\n",
		"short row":      "id,category,difficulty,run,correct\n1,math,1,1\n",
		"zero run":       "id,category,difficulty,run,correct\n1,math,1,0,1\n",
	}
	for name, input := range cases {
		if _, err := Read(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

// TestSaveLoad verifies results round trip through the filesystem.
func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "baseline_results.csv")
	trials := []Trial{{ItemID: "a", Repetition: 1, Category: "c", Difficulty: 1, Correct: true, Confidence: 0.9, Succeeded: true}}
	if err := Save(path, trials); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != trials[0] {
		t.Fatalf("unexpected trials: %+v", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be renamed away, got %d entries", len(entries))
	}
}

// TestTruncateKeepsRunes verifies truncation never splits a rune.
func TestTruncateKeepsRunes(t *testing.T) {
	text := strings.Repeat("a", MaxPromptBytes-1) + "é"
	got := Truncate(text)
	if len(got) != MaxPromptBytes-1 {
		t.Fatalf("expected %d bytes, got %d", MaxPromptBytes-1, len(got))
	}
	if Truncate("short") != "short" {
		t.Fatalf("expected short text unchanged")
	}
}

// TestCloneIsIndependent verifies Clone copies the backing array.
func TestCloneIsIndependent(t *testing.T) {
	trials := []Trial{{ItemID: "1", Correct: false}}
	cloned := Clone(trials)
	cloned[0].Correct = true
	if trials[0].Correct {
		t.Fatalf("clone shares storage with input")
	}
	if got := Scores(cloned); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected scores: %v", got)
	}
}
