package trial

// MaxPromptBytes bounds the prompt and response text kept with a trial.
const MaxPromptBytes = 500

// Trial is one scored attempt at a test item under a technique.
type Trial struct {
	ItemID     string
	Repetition int
	Technique  string
	Category   string
	Difficulty int
	Prompt     string
	Response   string
	Expected   string
	AnswerType string
	Correct    bool
	Confidence float64
	LatencyMs  int64
	Succeeded  bool
	Error      string
}

// Key identifies a trial within one technique's trial set.
type Key struct {
	ItemID     string
	Repetition int
}

// Key returns the identity of t within its technique.
func (t Trial) Key() Key {
	return Key{ItemID: t.ItemID, Repetition: t.Repetition}
}

// Score returns 1 for a correct trial and 0 otherwise.
func (t Trial) Score() int {
	if t.Correct {
		return 1
	}
	return 0
}

// Scores returns the 0/1 correctness column of trials.
func Scores(trials []Trial) []int {
	scores := make([]int, len(trials))
	for i, t := range trials {
		scores[i] = t.Score()
	}
	return scores
}

// Clone returns an independent copy of trials.
func Clone(trials []Trial) []Trial {
	if trials == nil {
		return nil
	}
	out := make([]Trial, len(trials))
	copy(out, trials)
	return out
}

// Truncate shortens text to at most MaxPromptBytes without splitting a rune.
func Truncate(text string) string {
	if len(text) <= MaxPromptBytes {
		return text
	}
	cut := MaxPromptBytes
	for cut > 0 && !runeStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func runeStart(b byte) bool {
	return b&0xC0 != 0x80
}
