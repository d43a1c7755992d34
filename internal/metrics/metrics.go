package metrics

import (
	"math"
	"strconv"

	"gradebench/internal/trial"
)

// Metrics are descriptive statistics over a slice of 0/1 scores. Accuracy
// always equals Mean.
type Metrics struct {
	Accuracy float64 `json:"accuracy"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Count    int     `json:"count"`
}

// Aggregate computes count, mean and population variance of values. An empty
// slice yields zero metrics and a single value has zero variance.
func Aggregate(values []int) Metrics {
	count := len(values)
	if count == 0 {
		return Metrics{}
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(count)

	variance := 0.0
	if count > 1 {
		for _, v := range values {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(count)
	}
	return Metrics{
		Accuracy: mean,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Count:    count,
	}
}

// AggregateBy partitions trials by key and aggregates each partition.
func AggregateBy(trials []trial.Trial, key func(trial.Trial) string) map[string]Metrics {
	groups := make(map[string][]int)
	for _, t := range trials {
		k := key(t)
		groups[k] = append(groups[k], t.Score())
	}
	out := make(map[string]Metrics, len(groups))
	for k, scores := range groups {
		out[k] = Aggregate(scores)
	}
	return out
}

// ByCategory aggregates trials per category.
func ByCategory(trials []trial.Trial) map[string]Metrics {
	return AggregateBy(trials, func(t trial.Trial) string { return t.Category })
}

// ByDifficulty aggregates trials per difficulty, keyed by its decimal form.
func ByDifficulty(trials []trial.Trial) map[string]Metrics {
	return AggregateBy(trials, func(t trial.Trial) string { return strconv.Itoa(t.Difficulty) })
}

// ByTechnique aggregates trials per technique.
func ByTechnique(trials []trial.Trial) map[string]Metrics {
	return AggregateBy(trials, func(t trial.Trial) string { return t.Technique })
}

// Improvement returns the relative change of technique over baseline in
// percent. A zero baseline yields 0.
func Improvement(baseline, technique float64) float64 {
	if baseline == 0 {
		return 0
	}
	return ((technique - baseline) / baseline) * 100
}

// Stats is the per-technique statistics document.
type Stats struct {
	Overall      Metrics            `json:"overall"`
	ByCategory   map[string]Metrics `json:"by_category"`
	ByDifficulty map[string]Metrics `json:"by_difficulty"`
}

// BuildStats aggregates a technique's trials into its statistics document.
func BuildStats(trials []trial.Trial) Stats {
	return Stats{
		Overall:      Aggregate(trial.Scores(trials)),
		ByCategory:   ByCategory(trials),
		ByDifficulty: ByDifficulty(trials),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
