package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveStats writes a technique statistics document.
func SaveStats(path string, stats Stats) error {
	return writeJSON(path, stats)
}

// LoadStats reads a technique statistics document.
func LoadStats(path string) (Stats, error) {
	var stats Stats
	if err := readJSON(path, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// SaveComparison writes a comparison report.
func SaveComparison(path string, comparison Comparison) error {
	return writeJSON(path, comparison)
}

// LoadComparison reads a comparison report.
func LoadComparison(path string) (Comparison, error) {
	var comparison Comparison
	if err := readJSON(path, &comparison); err != nil {
		return Comparison{}, err
	}
	return comparison, nil
}

func writeJSON(path string, payload any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
