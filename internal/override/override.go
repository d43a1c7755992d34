package override

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gradebench/internal/trial"
)

// ErrMalformed marks an override table that cannot be parsed.
var ErrMalformed = errors.New("malformed override table")

// Columns is the header of an override table.
var Columns = []string{"id", "run", "technique", "correct_override", "reason"}

// Override is a human correction of one trial's verdict.
type Override struct {
	ItemID     string
	Repetition int
	Technique  string
	Corrected  bool
	Reason     string
}

// Key returns the trial identity o targets within its technique.
func (o Override) Key() trial.Key {
	return trial.Key{ItemID: o.ItemID, Repetition: o.Repetition}
}

// Load reads the override table at path. A missing file holds no overrides.
func Load(path string) ([]Override, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open overrides: %w", err)
	}
	defer file.Close()
	overrides, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return overrides, nil
}

// Parse reads an override table. Lines whose first non-blank character is
// '#' are comments. Any structural problem fails the whole table.
func Parse(r io.Reader) ([]Override, error) {
	content, err := stripComments(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var overrides []Override
	for record := 1; ; record++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, record, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: record %d: expected %d fields, got %d", ErrMalformed, record, len(header), len(row))
		}
		o, err := decode(row, index)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, record, err)
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

// ForTechnique returns the overrides addressed to technique, in order.
func ForTechnique(overrides []Override, technique string) []Override {
	var out []Override
	for _, o := range overrides {
		if o.Technique == technique {
			out = append(out, o)
		}
	}
	return out
}

func stripComments(r io.Reader) (string, error) {
	var builder strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read overrides: %w", err)
	}
	return builder.String(), nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformed, name)
		}
		index[name] = i
	}
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformed, name)
		}
	}
	return index, nil
}

func decode(row []string, index map[string]int) (Override, error) {
	field := func(name string) string {
		return strings.TrimSpace(row[index[name]])
	}
	o := Override{
		ItemID:    field("id"),
		Technique: field("technique"),
		Reason:    field("reason"),
	}
	if o.ItemID == "" {
		return Override{}, errors.New("missing id")
	}
	if o.Technique == "" {
		return Override{}, errors.New("missing technique")
	}
	run, err := strconv.Atoi(field("run"))
	if err != nil || run < 1 {
		return Override{}, fmt.Errorf("invalid run %q", field("run"))
	}
	o.Repetition = run
	if o.Corrected, err = trial.ParseBool(field("correct_override")); err != nil {
		return Override{}, err
	}
	if o.Reason == "" {
		return Override{}, errors.New("missing reason")
	}
	return o, nil
}
