package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/models"
)

func TestLoadJSONL(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		content := `{"input": "4 4 6 8", "target": "24"}
{"input": "2 3 5 12", "target": "24"}
`
		path := writeFile(t, t.TempDir(), "data.jsonl", content)

		examples, skipped, err := LoadJSONL(path)
		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, examples, 2)

		assert.Equal(t, 0, examples[0].Index)
		assert.Equal(t, "4 4 6 8", examples[0].Input)
		assert.Equal(t, "24", examples[0].Target)
	})

	t.Run("NumericTarget", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "data.jsonl", `{"input": "what is 6*4?", "target": 24}`+"\n")

		examples, _, err := LoadJSONL(path)
		require.NoError(t, err)
		require.Len(t, examples, 1)
		assert.Equal(t, "24", examples[0].Target)
	})

	t.Run("MalformedLinesSkipped", func(t *testing.T) {
		content := `{"input": "good one", "target": "t"}
{not json at all
{"input": "another good one", "target": "t"}
`
		path := writeFile(t, t.TempDir(), "data.jsonl", content)

		examples, skipped, err := LoadJSONL(path)
		require.NoError(t, err)
		assert.Equal(t, 1, skipped)
		require.Len(t, examples, 2)

		// Indices stay contiguous after a skip.
		assert.Equal(t, 0, examples[0].Index)
		assert.Equal(t, 1, examples[1].Index)
	})

	t.Run("BlankLinesIgnored", func(t *testing.T) {
		content := "\n" + `{"input": "a", "target": "b"}` + "\n\n"
		path := writeFile(t, t.TempDir(), "data.jsonl", content)

		examples, skipped, err := LoadJSONL(path)
		require.NoError(t, err)
		assert.Zero(t, skipped)
		assert.Len(t, examples, 1)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := LoadJSONL("/nonexistent/data.jsonl")
		require.Error(t, err)
	})
}

func TestLimit(t *testing.T) {
	examples := []models.Example{{Index: 0}, {Index: 1}, {Index: 2}}

	assert.Len(t, Limit(examples, 2), 2)
	assert.Len(t, Limit(examples, 0), 3)
	assert.Len(t, Limit(examples, -1), 3)
	assert.Len(t, Limit(examples, 10), 3)
}
