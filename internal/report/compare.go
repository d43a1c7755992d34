package report

import (
	"sort"

	"gradebench/internal/duckdb"
)

// TechniqueDelta is the change in overall accuracy of one technique between
// two runs. A technique missing from one side reports zero accuracy there.
type TechniqueDelta struct {
	Technique string
	Base      float64
	Head      float64
	Delta     float64
	InBase    bool
	InHead    bool
}

// Compare diffs the overall accuracy of every technique in base or head.
// Head's technique order comes first, then techniques only base ran.
func Compare(base, head Run) []TechniqueDelta {
	seen := map[string]bool{}
	var order []string
	for _, technique := range head.Comparison.Techniques {
		if !seen[technique] {
			seen[technique] = true
			order = append(order, technique)
		}
	}
	var baseOnly []string
	for _, technique := range base.Comparison.Techniques {
		if !seen[technique] {
			seen[technique] = true
			baseOnly = append(baseOnly, technique)
		}
	}
	sort.Strings(baseOnly)
	order = append(order, baseOnly...)

	deltas := make([]TechniqueDelta, 0, len(order))
	for _, technique := range order {
		baseSummary, inBase := base.Comparison.ByTechnique[technique]
		headSummary, inHead := head.Comparison.ByTechnique[technique]
		deltas = append(deltas, TechniqueDelta{
			Technique: technique,
			Base:      baseSummary.Accuracy,
			Head:      headSummary.Accuracy,
			Delta:     headSummary.Accuracy - baseSummary.Accuracy,
			InBase:    inBase,
			InHead:    inHead,
		})
	}
	return deltas
}

// SliceDelta is the change in accuracy of one technique within one category
// or difficulty between two runs.
type SliceDelta struct {
	Technique string
	Slice     string
	Base      float64
	Head      float64
	Delta     float64
	InBase    bool
	InHead    bool
}

// CompareSlices diffs stored slice accuracies of two runs, ordered by
// technique then slice.
func CompareSlices(base, head []duckdb.SliceRow) []SliceDelta {
	type key struct{ technique, slice string }
	index := map[key]int{}
	var deltas []SliceDelta
	entry := func(row duckdb.SliceRow) *SliceDelta {
		k := key{row.Technique, row.Slice}
		if i, ok := index[k]; ok {
			return &deltas[i]
		}
		index[k] = len(deltas)
		deltas = append(deltas, SliceDelta{Technique: row.Technique, Slice: row.Slice})
		return &deltas[len(deltas)-1]
	}
	for _, row := range base {
		d := entry(row)
		d.Base, d.InBase = row.Accuracy, true
	}
	for _, row := range head {
		d := entry(row)
		d.Head, d.InHead = row.Accuracy, true
	}
	for i := range deltas {
		deltas[i].Delta = deltas[i].Head - deltas[i].Base
	}
	sort.SliceStable(deltas, func(i, j int) bool {
		if deltas[i].Technique != deltas[j].Technique {
			return deltas[i].Technique < deltas[j].Technique
		}
		return deltas[i].Slice < deltas[j].Slice
	})
	return deltas
}
