package strategy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/llm"
	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/prompts"
)

func testSpec(name string) *models.ExperimentSpec {
	spec := &models.ExperimentSpec{
		Name:     "test-run",
		Task:     "GameOf24",
		Strategy: name,
		Dataset:  "data/GameOf24.jsonl",
		Model:    models.ModelConfig{ID: "gpt-4"},
	}
	spec.ApplyDefaults()
	return spec
}

func newStrategy(t *testing.T, client llm.Client, name string) Strategy {
	t.Helper()
	s, err := New(Args{
		Client:          client,
		Spec:            testSpec(name),
		TaskDescription: "Use the four numbers to make 24.",
	})
	require.NoError(t, err)
	return s
}

var example = models.Example{Index: 0, Input: "4 4 6 8", Target: "24"}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New(Args{Client: llm.NewScripted(), Spec: testSpec("telepathy")})
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown strategy "telepathy"`)
}

func TestStandard(t *testing.T) {
	client := llm.NewScripted("(4+8)*(6-4) = 24")
	s := newStrategy(t, client, "standard")

	res, err := s.Solve(context.Background(), example)
	require.NoError(t, err)

	require.Equal(t, "(4+8)*(6-4) = 24", res.Output)
	require.Equal(t, 1, res.Rounds)
	require.Equal(t, 0, res.ExpertCalls)

	req := client.Requests()[0]
	question := req.Messages[len(req.Messages)-1].Content
	require.Contains(t, question, "Question: Use the four numbers to make 24.")
	require.Contains(t, question, "4 4 6 8")
	require.NotContains(t, question, "step by step")
}

func TestZeroShotCoT(t *testing.T) {
	client := llm.NewScripted("The answer is 24.")
	s := newStrategy(t, client, "zero-shot-cot")

	_, err := s.Solve(context.Background(), example)
	require.NoError(t, err)

	req := client.Requests()[0]
	question := req.Messages[len(req.Messages)-1].Content
	require.True(t, strings.HasSuffix(question, "Let's think step by step."))
}

func TestExpertPrompting(t *testing.T) {
	client := llm.NewScripted(
		"You are a master of mental arithmetic with decades of puzzle experience.",
		"(4+8)*(6-4)",
	)
	s := newStrategy(t, client, "expert-prompting")

	res, err := s.Solve(context.Background(), example)
	require.NoError(t, err)
	require.Equal(t, "(4+8)*(6-4)", res.Output)
	require.Equal(t, 2, client.Calls())

	// First call asks for the expert identity.
	identityReq := client.Requests()[0]
	require.Contains(t, identityReq.Messages[0].Content, "[Instruction]:4 4 6 8")
	require.True(t, strings.HasSuffix(identityReq.Messages[0].Content, "[Agent Description]:"))

	// Second call is conditioned on the generated identity.
	answerReq := client.Requests()[1]
	question := answerReq.Messages[len(answerReq.Messages)-1].Content
	require.True(t, strings.HasPrefix(question, "You are a master of mental arithmetic"))
	require.Contains(t, question, "Now given the above identity background")
}

func TestMultipersona(t *testing.T) {
	t.Run("ExtractsFinalAnswer", func(t *testing.T) {
		client := llm.NewScripted("Participants: AI Assistant; Math Expert\n\n...collaboration...\n\nFinal answer: (4+8)*(6-4) = 24")
		s := newStrategy(t, client, "multipersona")

		res, err := s.Solve(context.Background(), example)
		require.NoError(t, err)
		require.Equal(t, "(4+8)*(6-4) = 24", res.Output)

		req := client.Requests()[0]
		require.Equal(t, models.RoleSystem, req.Messages[0].Role)
		require.Contains(t, req.Messages[0].Content, "identifying the participants")
	})

	t.Run("NoMarkerKeepsFullReply", func(t *testing.T) {
		client := llm.NewScripted("an unstructured reply")
		s := newStrategy(t, client, "multipersona")

		res, err := s.Solve(context.Background(), example)
		require.NoError(t, err)
		require.Equal(t, "an unstructured reply", res.Output)
	})
}

func TestMeta(t *testing.T) {
	client := llm.NewScripted(
		"Expert Mathematician:\n\"\"\"\nCompute (4+8)*(6-4).\n\"\"\"",
		"The result is 24.",
		">> FINAL ANSWER:\n\"\"\"\n(4+8)*(6-4)\n\"\"\"",
	)
	spec := testSpec("meta")
	spec.Scaffold.FreshEyes = true

	s, err := New(Args{
		Client:          client,
		Spec:            spec,
		TaskDescription: "Use the four numbers to make 24.",
	})
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), example)
	require.NoError(t, err)

	require.Equal(t, "(4+8)*(6-4)", res.Output)
	require.Equal(t, 2, res.Rounds)
	require.Equal(t, 1, res.ExpertCalls)
	require.NotEmpty(t, res.MessageLog)

	// The meta strategy defaults to the expert-consultation suffix.
	seedQuestion := client.Requests()[0].Messages
	require.Contains(t, seedQuestion[len(seedQuestion)-1].Content, prompts.DefaultQuestionSuffix)
}

func TestStrategyError(t *testing.T) {
	client := llm.NewScripted() // no replies configured
	s := newStrategy(t, client, "standard")

	_, err := s.Solve(context.Background(), example)
	require.Error(t, err)
}
