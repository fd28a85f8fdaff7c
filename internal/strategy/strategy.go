// Package strategy maps strategy names to prompting implementations:
// single-call variants (standard, zero-shot CoT, expert prompting,
// multipersona) and the meta-prompting scaffold.
package strategy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/podiumlabs/podium/internal/llm"
	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/prompts"
	"github.com/podiumlabs/podium/internal/pyexec"
	"github.com/podiumlabs/podium/internal/scaffold"
)

// Result is what a strategy produces for one example.
type Result struct {
	Output      string
	MessageLog  []models.Message
	Rounds      int
	ExpertCalls int
	CodeRuns    int
}

// Strategy solves one example at a time. Implementations are stateless
// across examples and safe for concurrent use.
type Strategy interface {
	Name() string
	Solve(ctx context.Context, example models.Example) (*Result, error)
}

// Args are the arguments for [New].
type Args struct {
	Client   llm.Client
	Template *prompts.Template
	// Runner executes Python code for the meta strategy; may be nil
	// when code execution is disabled.
	Runner pyexec.Runner
	Spec   *models.ExperimentSpec
	// TaskDescription is the instruction text for the spec's task.
	TaskDescription string
	// QuestionPrefix and QuestionSuffix are already resolved (literal
	// text, not paths).
	QuestionPrefix string
	QuestionSuffix string
}

// New builds the strategy named by the spec. Unknown names are a
// configuration error.
func New(args Args) (Strategy, error) {
	if args.Client == nil {
		return nil, fmt.Errorf("strategy: client is required")
	}
	if args.Spec == nil {
		return nil, fmt.Errorf("strategy: spec is required")
	}
	if args.Template == nil {
		args.Template = prompts.Default()
	}
	if args.Spec.Strategy == "meta" && args.QuestionSuffix == "" {
		args.QuestionSuffix = prompts.DefaultQuestionSuffix
	}

	switch args.Spec.Strategy {
	case "standard":
		return &singleCall{args: args, name: "standard"}, nil
	case "zero-shot-cot":
		return &singleCall{args: args, name: "zero-shot-cot", suffix: "\n\nLet's think step by step."}, nil
	case "expert-prompting":
		return &expertPrompting{args: args}, nil
	case "multipersona":
		return &multipersona{args: args}, nil
	case "meta":
		return newMeta(args)
	default:
		return nil, fmt.Errorf("unknown strategy %q (known strategies: %s)", args.Spec.Strategy, strings.Join(Names(), ", "))
	}
}

// Names returns all known strategy names, sorted.
func Names() []string {
	names := []string{"standard", "zero-shot-cot", "expert-prompting", "multipersona", "meta"}
	sort.Strings(names)
	return names
}

// question assembles the user-facing question text for an example.
func (a Args) question(example models.Example) string {
	return fmt.Sprintf("%sQuestion: %s\n\n%s%s", a.QuestionPrefix, a.TaskDescription, example.Input, a.QuestionSuffix)
}

// completeOnce issues a single completion with the spec's model
// sampling parameters.
func (a Args) completeOnce(ctx context.Context, msgs []models.Message) (string, error) {
	completions, err := a.Client.Complete(ctx, llm.Request{
		Model:       a.Spec.Model.ID,
		Messages:    msgs,
		Temperature: a.Spec.Model.Temperature,
		TopP:        a.Spec.Model.TopP,
		MaxTokens:   a.Spec.Model.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(completions) == 0 {
		return "", fmt.Errorf("model returned no completions")
	}
	return completions[0].Text, nil
}

// singleCall covers the standard and zero-shot-cot strategies: one
// generator-persona call with the question, optionally suffixed.
type singleCall struct {
	args   Args
	name   string
	suffix string
}

func (s *singleCall) Name() string { return s.name }

func (s *singleCall) Solve(ctx context.Context, example models.Example) (*Result, error) {
	msgs := models.CloneMessages(s.args.Template.Generator.MessageList)
	msgs = append(msgs, models.UserMessage(s.args.question(example)+s.suffix))

	reply, err := s.args.completeOnce(ctx, msgs)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, models.AssistantMessage(reply))

	return &Result{Output: reply, MessageLog: msgs, Rounds: 1}, nil
}

// expertPrompting first asks the model to describe the ideal expert for
// the question, then answers conditioned on that identity.
type expertPrompting struct {
	args Args
}

func (s *expertPrompting) Name() string { return "expert-prompting" }

func (s *expertPrompting) Solve(ctx context.Context, example models.Example) (*Result, error) {
	identityMsgs := []models.Message{
		models.UserMessage(prompts.ExpertIdentityPrompt(example.Input)),
	}
	identity, err := s.args.completeOnce(ctx, identityMsgs)
	if err != nil {
		return nil, fmt.Errorf("generating expert identity: %w", err)
	}

	question := fmt.Sprintf("%s\n\nNow given the above identity background, please answer the following question:\n\nQuestion: %s\n\n%s",
		identity, s.args.TaskDescription, example.Input)

	msgs := models.CloneMessages(s.args.Template.Generator.MessageList)
	msgs = append(msgs, models.UserMessage(question))

	reply, err := s.args.completeOnce(ctx, msgs)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, models.AssistantMessage(reply))

	return &Result{Output: reply, MessageLog: msgs, Rounds: 1}, nil
}

// multipersona seeds a single call with the persona-collaboration
// system instruction and extracts the "Final answer:" line when
// present.
type multipersona struct {
	args Args
}

// multipersonaMarker is the answer prefix the instruction asks for.
const multipersonaMarker = "Final answer:"

func (s *multipersona) Name() string { return "multipersona" }

func (s *multipersona) Solve(ctx context.Context, example models.Example) (*Result, error) {
	msgs := []models.Message{
		models.SystemMessage(prompts.MultipersonaInstruction()),
		models.UserMessage(s.args.question(example)),
	}

	reply, err := s.args.completeOnce(ctx, msgs)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, models.AssistantMessage(reply))

	output := reply
	if idx := strings.LastIndex(reply, multipersonaMarker); idx >= 0 {
		output = strings.TrimSpace(reply[idx+len(multipersonaMarker):])
	}

	return &Result{Output: output, MessageLog: msgs, Rounds: 1}, nil
}

// meta drives the conductor/expert scaffold.
type meta struct {
	args Args
	s    *scaffold.Scaffold
}

func newMeta(args Args) (*meta, error) {
	s, err := scaffold.NewScaffold(scaffold.ScaffoldArgs{
		Client:   args.Client,
		Template: args.Template,
		Runner:   args.Runner,
		ModelID:  args.Spec.Model.ID,
		Config:   args.Spec.Scaffold,
	})
	if err != nil {
		return nil, err
	}
	return &meta{args: args, s: s}, nil
}

func (m *meta) Name() string { return "meta" }

func (m *meta) Solve(ctx context.Context, example models.Example) (*Result, error) {
	seed := models.CloneMessages(m.args.Template.Conductor.MessageList)
	seed = append(seed, models.UserMessage(m.args.question(example)))

	outcome, err := m.s.Run(ctx, seed)
	if err != nil {
		return nil, err
	}

	return &Result{
		Output:      outcome.Answer,
		MessageLog:  outcome.Transcript,
		Rounds:      outcome.Rounds,
		ExpertCalls: outcome.ExpertCalls,
		CodeRuns:    outcome.CodeRuns,
	}, nil
}
