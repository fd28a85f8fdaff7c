package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/dataset"
	"github.com/podiumlabs/podium/internal/models"
)

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exp")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"init", dir})
	require.NoError(t, root.Execute())

	// The generated spec must load back cleanly.
	spec, err := models.LoadExperimentSpec(filepath.Join(dir, "experiment.yaml"))
	require.NoError(t, err)
	require.Equal(t, "my-experiment", spec.Name)
	require.Equal(t, "GameOf24", spec.Task)
	require.Equal(t, "meta", spec.Strategy)
	require.Equal(t, "mock", spec.Model.Engine)

	// And the example dataset must parse.
	examples, skipped, err := dataset.Load(filepath.Join(dir, "data", "examples.jsonl"))
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, examples, 3)
	require.Equal(t, "24", examples[0].Target)

	require.Contains(t, out.String(), "experiment.yaml")
}

func TestInitCommandDefaultsToCwdArg(t *testing.T) {
	dir := t.TempDir()

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"init", dir})
	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(dir, "experiment.yaml"))
	require.NoError(t, err)
}

// The generated experiment must run end to end on the mock engine.
func TestInitThenRun(t *testing.T) {
	resetRunFlags()
	dir := filepath.Join(t.TempDir(), "exp")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"init", dir})
	require.NoError(t, root.Execute())

	outDir := filepath.Join(dir, "out")
	root = newRootCommand()
	root.SetArgs([]string{"run", filepath.Join(dir, "experiment.yaml"), "--output-dir", outDir})
	require.NoError(t, root.Execute())

	matches, err := filepath.Glob(filepath.Join(outDir, "example-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 3)
}
