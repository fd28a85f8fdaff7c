package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTasksCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"tasks"})
	require.NoError(t, root.Execute())

	require.Contains(t, out.String(), "GameOf24")
	require.Contains(t, out.String(), "CheckmateInOne")
	require.Contains(t, out.String(), "word_sorting")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcde...", truncate("abcdefgh", 5))
}
