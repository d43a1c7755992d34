package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// BestTechniqueKey is the slice comparison field naming the winning technique.
const BestTechniqueKey = "best_technique"

var now = time.Now

// TechniqueSummary is a technique's overall metrics in a comparison report.
// ImprovementPct is set for every technique other than the baseline.
type TechniqueSummary struct {
	Metrics
	ImprovementPct *float64 `json:"improvement_pct,omitempty"`
}

// SliceComparison holds per-technique accuracy for one category or difficulty.
type SliceComparison struct {
	Accuracy map[string]float64
	// Best is empty when no technique scored above zero.
	Best string
}

// MarshalJSON flattens accuracies next to the best_technique field.
func (s SliceComparison) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Accuracy)+1)
	for technique, accuracy := range s.Accuracy {
		out[technique] = accuracy
	}
	if s.Best == "" {
		out[BestTechniqueKey] = nil
	} else {
		out[BestTechniqueKey] = s.Best
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON.
func (s *SliceComparison) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Accuracy = make(map[string]float64, len(raw))
	s.Best = ""
	for key, value := range raw {
		if key == BestTechniqueKey {
			var best *string
			if err := json.Unmarshal(value, &best); err != nil {
				return fmt.Errorf("%s: %w", BestTechniqueKey, err)
			}
			if best != nil {
				s.Best = *best
			}
			continue
		}
		var accuracy float64
		if err := json.Unmarshal(value, &accuracy); err != nil {
			return fmt.Errorf("accuracy for %s: %w", key, err)
		}
		s.Accuracy[key] = accuracy
	}
	return nil
}

// Comparison is the cross-technique report.
type Comparison struct {
	GeneratedAt  time.Time                   `json:"generated_at"`
	Baseline     string                      `json:"baseline"`
	Techniques   []string                    `json:"techniques"`
	ByTechnique  map[string]TechniqueSummary `json:"by_technique"`
	ByCategory   map[string]SliceComparison  `json:"by_category"`
	ByDifficulty map[string]SliceComparison  `json:"by_difficulty"`
}

// Compare builds the cross-technique report from per-technique statistics.
// Techniques are visited baseline first, then in order, then alphabetically;
// on a tied slice the first technique visited wins.
func Compare(stats map[string]Stats, baseline string, order ...string) Comparison {
	techniques := visitOrder(stats, baseline, order)
	baselineAccuracy := 0.0
	if s, ok := stats[baseline]; ok {
		baselineAccuracy = s.Overall.Accuracy
	}

	comparison := Comparison{
		GeneratedAt:  now().UTC(),
		Baseline:     baseline,
		Techniques:   techniques,
		ByTechnique:  make(map[string]TechniqueSummary, len(techniques)),
		ByCategory:   map[string]SliceComparison{},
		ByDifficulty: map[string]SliceComparison{},
	}
	for _, technique := range techniques {
		overall := stats[technique].Overall
		summary := TechniqueSummary{Metrics: overall}
		if technique != baseline {
			improvement := round2(Improvement(baselineAccuracy, overall.Accuracy))
			summary.ImprovementPct = &improvement
		}
		comparison.ByTechnique[technique] = summary
	}

	categories := sliceKeys(stats, func(s Stats) map[string]Metrics { return s.ByCategory })
	for _, key := range categories {
		comparison.ByCategory[key] = compareSlice(stats, techniques, func(s Stats) map[string]Metrics { return s.ByCategory }, key)
	}
	difficulties := sliceKeys(stats, func(s Stats) map[string]Metrics { return s.ByDifficulty })
	for _, key := range difficulties {
		comparison.ByDifficulty[key] = compareSlice(stats, techniques, func(s Stats) map[string]Metrics { return s.ByDifficulty }, key)
	}
	return comparison
}

func compareSlice(stats map[string]Stats, techniques []string, slice func(Stats) map[string]Metrics, key string) SliceComparison {
	out := SliceComparison{Accuracy: make(map[string]float64, len(techniques))}
	best := 0.0
	for _, technique := range techniques {
		accuracy := slice(stats[technique])[key].Accuracy
		out.Accuracy[technique] = accuracy
		if accuracy > best {
			best = accuracy
			out.Best = technique
		}
	}
	return out
}

func sliceKeys(stats map[string]Stats, slice func(Stats) map[string]Metrics) []string {
	seen := map[string]struct{}{}
	for _, s := range stats {
		for key := range slice(s) {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func visitOrder(stats map[string]Stats, baseline string, order []string) []string {
	techniques := make([]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	add := func(name string) {
		if _, ok := stats[name]; !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		techniques = append(techniques, name)
	}
	add(baseline)
	for _, name := range order {
		add(name)
	}
	var rest []string
	for name := range stats {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		add(name)
	}
	return techniques
}
