package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/models"
)

func TestDefaultTemplate(t *testing.T) {
	tmpl := Default()

	require.NotEmpty(t, tmpl.Conductor.MessageList)
	require.Equal(t, models.RoleSystem, tmpl.Conductor.MessageList[0].Role)
	require.Contains(t, tmpl.Conductor.MessageList[0].Content, "Meta-Expert")

	require.Equal(t, ">> FINAL ANSWER:", tmpl.FinalAnswerIndicator)
	require.Contains(t, tmpl.ExpertPythonMessage, "Please run this code!")
	require.NotEmpty(t, tmpl.ErrorMessage)
	require.NotEmpty(t, tmpl.IntermediateFeedback)

	require.NotNil(t, tmpl.Generator)
	require.NotNil(t, tmpl.Summarizer)
	require.NotNil(t, tmpl.Conductor.Parameters.Temperature)
	require.InDelta(t, 0.1, *tmpl.Conductor.Parameters.Temperature, 1e-9)
}

func TestLoadTemplate(t *testing.T) {
	t.Run("EmptyPathReturnsDefault", func(t *testing.T) {
		tmpl, err := Load("")
		require.NoError(t, err)
		require.Equal(t, ">> FINAL ANSWER:", tmpl.FinalAnswerIndicator)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("PartialTemplateInheritsDefaults", func(t *testing.T) {
		partial := `{
			"conductor": {
				"message-list": [
					{"role": "system", "content": "You orchestrate experts."}
				],
				"parameters": {"temperature": 0.5}
			}
		}`
		path := writeTemplate(t, partial)

		tmpl, err := Load(path)
		require.NoError(t, err)

		require.Equal(t, "You orchestrate experts.", tmpl.Conductor.MessageList[0].Content)
		require.InDelta(t, 0.5, *tmpl.Conductor.Parameters.Temperature, 1e-9)

		// Everything not overridden falls back to the embedded default.
		require.Equal(t, ">> FINAL ANSWER:", tmpl.FinalAnswerIndicator)
		require.NotNil(t, tmpl.Generator)
		require.NotEmpty(t, tmpl.ErrorMessage)
	})

	t.Run("MissingConductorFailsValidation", func(t *testing.T) {
		path := writeTemplate(t, `{"error-message": "try again"}`)

		_, err := Load(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "schema validation failed")
	})

	t.Run("BadRoleFailsValidation", func(t *testing.T) {
		path := writeTemplate(t, `{
			"conductor": {
				"message-list": [{"role": "robot", "content": "hi"}]
			}
		}`)

		_, err := Load(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "schema validation failed")
	})

	t.Run("UnknownTopLevelKeyFailsValidation", func(t *testing.T) {
		path := writeTemplate(t, `{
			"conductor": {"message-list": [{"role": "system", "content": "hi"}]},
			"verifier": {"message-list": []}
		}`)

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("NotJSON", func(t *testing.T) {
		path := writeTemplate(t, "conductor: yes")

		_, err := Load(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parsing JSON")
	})
}

func TestExpertIdentityPrompt(t *testing.T) {
	prompt := ExpertIdentityPrompt("Sort these words: pear apple")

	require.True(t, strings.HasPrefix(prompt, "For each instruction, write a high-quality description"))
	require.Contains(t, prompt, "[Instruction]:Sort these words: pear apple")
	require.True(t, strings.HasSuffix(prompt, "[Agent Description]:"))
}

func TestMultipersonaInstruction(t *testing.T) {
	instr := MultipersonaInstruction()
	require.Contains(t, instr, "identifying the participants")
	require.Contains(t, instr, "Final answer:")
}

func writeTemplate(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
