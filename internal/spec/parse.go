package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrEmptyConfig reports a config file without a YAML document.
var ErrEmptyConfig = errors.New("config is empty")

// ParseConfig decodes exactly one YAML document into a Config. Unknown
// fields are rejected so typos surface instead of silently using defaults.
func ParseConfig(data []byte) (Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	switch err := decoder.Decode(&cfg); {
	case errors.Is(err, io.EOF):
		return Config{}, fmt.Errorf("parse config: %w", ErrEmptyConfig)
	case err != nil:
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var extra yaml.Node
	switch err := decoder.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("parse config: %w", err)
	default:
		return Config{}, fmt.Errorf("parse config: expected one YAML document, found another at line %d", extra.Line)
	}
}
