package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExperimentSpec(t *testing.T) {
	path := writeSpec(t, `name: game-of-24
task: GameOf24
strategy: meta
dataset: data/gameof24.jsonl
model:
  id: gpt-4
scaffold:
  fresh_eyes: true
  code_execution: true
run:
  limit: 25
`)

	spec, err := LoadExperimentSpec(path)
	require.NoError(t, err)

	require.Equal(t, "game-of-24", spec.Name)
	require.True(t, spec.Scaffold.FreshEyes)
	require.True(t, spec.Scaffold.CodeExecution)
	require.Equal(t, 25, spec.Run.Limit)

	// Defaults fill in the rest.
	require.Equal(t, DefaultMaxRounds, spec.Scaffold.MaxRounds)
	require.Equal(t, DefaultRetryAttempts, spec.Run.RetryAttempts)
	require.Equal(t, DefaultRetryDelaySec, spec.Run.RetryDelaySec)
	require.Equal(t, DefaultCodeTimeoutSec, spec.Scaffold.CodeTimeoutSec)
	require.Equal(t, DefaultWorkers, spec.Run.Workers)
	require.Equal(t, "openai", spec.Model.Engine)
}

func TestLoadExperimentSpecValidation(t *testing.T) {
	t.Run("MissingName", func(t *testing.T) {
		_, err := LoadExperimentSpec(writeSpec(t, `task: GameOf24
strategy: meta
dataset: d.jsonl
model:
  id: gpt-4
`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "name is required")
	})

	t.Run("MissingModelID", func(t *testing.T) {
		_, err := LoadExperimentSpec(writeSpec(t, `name: x
task: GameOf24
strategy: meta
dataset: d.jsonl
`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "model.id is required")
	})

	t.Run("TemperatureOutOfRange", func(t *testing.T) {
		_, err := LoadExperimentSpec(writeSpec(t, `name: x
task: GameOf24
strategy: meta
dataset: d.jsonl
model:
  id: gpt-4
  temperature: 3.0
`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "temperature")
	})

	t.Run("NotYAML", func(t *testing.T) {
		_, err := LoadExperimentSpec(writeSpec(t, "{{{not yaml"))
		require.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadExperimentSpec(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestCloneMessages(t *testing.T) {
	seed := []Message{SystemMessage("sys"), UserMessage("q")}
	clone := CloneMessages(seed)
	clone = append(clone, AssistantMessage("a"))
	clone[0].Content = "changed"

	require.Len(t, seed, 2)
	require.Equal(t, "sys", seed[0].Content)
	require.Len(t, clone, 3)
}
