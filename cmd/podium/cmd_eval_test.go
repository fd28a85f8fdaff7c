package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/models"
)

func writeRunDir(t *testing.T, base, name string, records []models.OutputRecord, task string) string {
	t.Helper()
	dir := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for _, record := range records {
		data, err := json.MarshalIndent(record, "", "  ")
		require.NoError(t, err)
		path := filepath.Join(dir, fmt.Sprintf("example-%05d.json", record.Index))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}

	if task != "" {
		spec := models.ExperimentSpec{Name: name, Task: task, Strategy: "meta", Dataset: "data.jsonl"}
		data, err := json.MarshalIndent(spec, "", "  ")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "experiment.json"), data, 0o644))
	}
	return dir
}

func gameOf24Records() []models.OutputRecord {
	return []models.OutputRecord{
		{Index: 0, Input: "4 4 6 8", Target: "24", Output: ">> FINAL ANSWER: (4+8)*(6-4)", Status: models.StatusCompleted},
		{Index: 1, Input: "2 3 5 12", Target: "24", Output: "no idea", Status: models.StatusCompleted},
	}
}

func TestEvalCommandExplicitTask(t *testing.T) {
	base := t.TempDir()
	dir := writeRunDir(t, base, "run-a", gameOf24Records(), "")

	evalTask, evalMarker, evalJSON = "", "", false

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"eval", dir, "--task", "GameOf24"})
	require.NoError(t, root.Execute())
}

func TestEvalCommandTaskFromSnapshot(t *testing.T) {
	base := t.TempDir()
	writeRunDir(t, base, "run-a", gameOf24Records(), "GameOf24")
	writeRunDir(t, base, "run-b", gameOf24Records(), "GameOf24")

	evalTask, evalMarker, evalJSON = "", "", false

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"eval", filepath.Join(base, "run-*"), "--json"})

	// Capture stdout-printed JSON is not needed; success plus no error
	// already covers snapshot task resolution.
	require.NoError(t, root.Execute())
}

func TestEvalCommandNoSnapshotNoTask(t *testing.T) {
	base := t.TempDir()
	dir := writeRunDir(t, base, "run-a", gameOf24Records(), "")

	evalTask, evalMarker, evalJSON = "", "", false

	root := newRootCommand()
	root.SetArgs([]string{"eval", dir})
	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "--task")
}

func TestEvalCommandNoMatches(t *testing.T) {
	evalTask, evalMarker, evalJSON = "", "", false

	root := newRootCommand()
	root.SetArgs([]string{"eval", filepath.Join(t.TempDir(), "nope-*"), "--task", "GameOf24"})
	require.Error(t, root.Execute())
}
