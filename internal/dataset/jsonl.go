// Package dataset loads task examples from JSONL and CSV files.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/podiumlabs/podium/internal/models"
)

// rawExample is the JSONL line format: {"input": ..., "target": ...}.
// Targets may be strings or numbers; both normalize to string.
type rawExample struct {
	Input  string          `json:"input"`
	Target json.RawMessage `json:"target"`
}

// LoadJSONL reads examples from a JSONL file, one object per line.
// Blank lines are ignored. Malformed lines are skipped, not fatal; the
// returned count says how many were dropped so callers can warn.
func LoadJSONL(path string) (examples []models.Example, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("jsonl: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	// Some examples (SVG paths, chess games) run long.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw rawExample
		if jsonErr := json.Unmarshal([]byte(line), &raw); jsonErr != nil {
			skipped++
			continue
		}

		examples = append(examples, models.Example{
			Index:  len(examples),
			Input:  raw.Input,
			Target: targetString(raw.Target),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("jsonl: read %s: %w", path, err)
	}

	return examples, skipped, nil
}

// targetString normalizes a JSON target value to its string form.
func targetString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Limit truncates examples to at most n. A non-positive n means no
// limit.
func Limit(examples []models.Example, n int) []models.Example {
	if n <= 0 || n >= len(examples) {
		return examples
	}
	return examples[:n]
}
