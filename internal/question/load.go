package question

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CSVColumns is the header of a CSV test suite.
var CSVColumns = []string{"id", "question", "category", "difficulty", "expected_answer", "answer_type"}

// LoadSpec reads, parses, and validates a test suite. The format is chosen
// by extension: .csv, .json, or YAML otherwise.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read test cases: %w", err)
	}
	spec, err := parseSpec(data, path)
	if err != nil {
		return Spec{}, err
	}
	normalized, err := NormalizeSpec(spec)
	if err != nil {
		return Spec{}, err
	}
	return normalized, nil
}

func parseSpec(data []byte, path string) (Spec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSVSpec(data)
	case ".json":
		return parseJSONSpec(data)
	default:
		return parseYAMLSpec(data)
	}
}

func parseCSVSpec(data []byte) (Spec, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Spec{Version: 1}, nil
	}
	if err != nil {
		return Spec{}, fmt.Errorf("parse csv: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range CSVColumns[:5] {
		if _, ok := index[name]; !ok {
			return Spec{}, fmt.Errorf("parse csv: missing column %q", name)
		}
	}

	spec := Spec{Version: 1}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Spec{}, fmt.Errorf("parse csv: %w", err)
		}
		field := func(name string) string {
			if i, ok := index[name]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}
		difficulty, err := strconv.Atoi(strings.TrimSpace(field("difficulty")))
		if err != nil {
			return Spec{}, fmt.Errorf("parse csv: row %d: invalid difficulty %q", row, field("difficulty"))
		}
		spec.Cases = append(spec.Cases, Case{
			ID:             field("id"),
			Question:       field("question"),
			Category:       field("category"),
			Difficulty:     difficulty,
			ExpectedAnswer: field("expected_answer"),
			AnswerType:     field("answer_type"),
		})
	}
	return spec, nil
}

func parseJSONSpec(data []byte) (Spec, error) {
	var spec Spec
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Spec{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Spec{}, fmt.Errorf("parse json: %w", err)
	}
	return spec, nil
}

func parseYAMLSpec(data []byte) (Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Spec{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Spec{}, fmt.Errorf("parse yaml: %w", err)
	}
	return spec, nil
}
