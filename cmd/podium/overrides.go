package main

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/podiumlabs/podium/internal/models"
)

// applySpecOverrides applies --set key=value pairs onto a loaded spec.
// Keys use the spec file's field names, with dots for nesting, e.g.
// "scaffold.max_rounds=8" or "run.parallel=true".
func applySpecOverrides(spec *models.ExperimentSpec, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}

	overrides := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --set value %q (expected key=value)", pair)
		}
		setNested(overrides, strings.Split(strings.TrimSpace(key), "."), strings.TrimSpace(value))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           spec,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("building override decoder: %w", err)
	}
	if err := decoder.Decode(overrides); err != nil {
		return fmt.Errorf("applying --set overrides: %w", err)
	}
	return nil
}

// setNested inserts value at the dotted path, creating intermediate
// maps as needed.
func setNested(m map[string]any, path []string, value string) {
	for len(path) > 1 {
		child, ok := m[path[0]].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[path[0]] = child
		}
		m = child
		path = path[1:]
	}
	m[path[0]] = value
}
