package trial

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Columns is the header of a trial results table.
var Columns = []string{
	"id", "category", "difficulty", "run", "technique", "prompt", "response",
	"expected", "answer_type", "correct", "confidence", "latency_ms", "success", "error",
}

// Read parses a trial results table. Any unparsable row fails the whole read.
func Read(r io.Reader) ([]Trial, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var trials []Trial
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", line, len(header), len(record))
		}
		t, err := decodeRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		trials = append(trials, t)
	}
	return trials, nil
}

// Write emits trials as a results table with the Columns header.
func Write(w io.Writer, trials []Trial) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, t := range trials {
		if err := writer.Write(encodeRow(t)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Load reads a results table from path.
func Load(path string) ([]Trial, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer file.Close()
	trials, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return trials, nil
}

// Save writes trials to path atomically, creating parent directories.
func Save(path string, trials []Trial) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".results-*.csv")
	if err != nil {
		return fmt.Errorf("create results: %w", err)
	}
	if err := Write(tmp, trials); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close results: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

var requiredColumns = []string{"id", "category", "difficulty", "run", "correct"}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

func decodeRow(record []string, index map[string]int) (Trial, error) {
	field := func(name string) string {
		if i, ok := index[name]; ok {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	raw := func(name string) string {
		if i, ok := index[name]; ok {
			return record[i]
		}
		return ""
	}

	t := Trial{
		ItemID:     field("id"),
		Technique:  field("technique"),
		Category:   field("category"),
		Prompt:     raw("prompt"),
		Response:   raw("response"),
		Expected:   raw("expected"),
		AnswerType: field("answer_type"),
		Error:      raw("error"),
		Succeeded:  true,
	}
	if t.ItemID == "" {
		return Trial{}, errors.New("missing id")
	}
	var err error
	if t.Difficulty, err = strconv.Atoi(field("difficulty")); err != nil {
		return Trial{}, fmt.Errorf("invalid difficulty %q", field("difficulty"))
	}
	if t.Repetition, err = strconv.Atoi(field("run")); err != nil || t.Repetition < 1 {
		return Trial{}, fmt.Errorf("invalid run %q", field("run"))
	}
	if t.Correct, err = ParseBool(field("correct")); err != nil {
		return Trial{}, err
	}
	if value := field("confidence"); value != "" {
		if t.Confidence, err = strconv.ParseFloat(value, 64); err != nil {
			return Trial{}, fmt.Errorf("invalid confidence %q", value)
		}
	}
	if value := field("latency_ms"); value != "" {
		latency, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Trial{}, fmt.Errorf("invalid latency_ms %q", value)
		}
		t.LatencyMs = int64(latency)
	}
	if value := field("success"); value != "" {
		if t.Succeeded, err = ParseBool(value); err != nil {
			return Trial{}, err
		}
	}
	return t, nil
}

func encodeRow(t Trial) []string {
	return []string{
		t.ItemID,
		t.Category,
		strconv.Itoa(t.Difficulty),
		strconv.Itoa(t.Repetition),
		t.Technique,
		t.Prompt,
		t.Response,
		t.Expected,
		t.AnswerType,
		strconv.Itoa(t.Score()),
		strconv.FormatFloat(t.Confidence, 'f', -1, 64),
		strconv.FormatInt(t.LatencyMs, 10),
		strconv.FormatBool(t.Succeeded),
		t.Error,
	}
}

// ParseBool accepts the boolean spellings found in results and override
// tables: 0/1, true/false and yes/no, case-insensitively.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "1.0", "true", "yes", "y":
		return true, nil
	case "0", "0.0", "false", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}
