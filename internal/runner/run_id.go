package runner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// runIDLayout is a UTC timestamp that sorts lexically in time order.
const runIDLayout = "20060102T150405Z"

// NewRunID names a run started at now: its UTC timestamp plus eight hex
// characters, so runs started in the same second still get distinct ids.
func NewRunID(now time.Time) (string, error) {
	return NewRunIDWithRand(now, rand.Reader)
}

// NewRunIDWithRand is NewRunID drawing the suffix from r.
func NewRunIDWithRand(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("random reader is nil")
	}
	var suffix [4]byte
	if _, err := io.ReadFull(r, suffix[:]); err != nil {
		return "", fmt.Errorf("run id suffix: %w", err)
	}
	return FormatRunID(now, hex.EncodeToString(suffix[:])), nil
}

// FormatRunID joins the UTC timestamp of now and suffix.
func FormatRunID(now time.Time, suffix string) string {
	return now.UTC().Format(runIDLayout) + "-" + suffix
}
