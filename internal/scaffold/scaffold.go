// Package scaffold implements the meta-prompting dialogue loop: a
// bounded-round exchange between one conductor persona and dynamically
// named expert personas, all backed by the same underlying model, with
// optional Python code execution folded back in as observations.
package scaffold

import (
	"context"
	"fmt"
	"strings"

	"github.com/podiumlabs/podium/internal/llm"
	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/prompts"
	"github.com/podiumlabs/podium/internal/pyexec"
)

// lastRoundNudge is appended to the pending user message on the
// penultimate round.
const lastRoundNudge = "This is the last round; so, please present your final answer."

// longSolutionNotice replaces over-long expert outputs when extraction
// is enabled.
const longSolutionNotice = "Solution too long. Please try again."

// extractToken separates the preamble from the answer in expert outputs
// when extract-output mode is on.
const extractToken = "* * *"

// Outcome is the result of one scaffold invocation.
type Outcome struct {
	// Answer is the extracted final answer, or the last conductor reply
	// when no final-answer marker was ever produced.
	Answer string
	// Found reports whether the answer came from a final-answer marker.
	Found bool

	Rounds      int
	ExpertCalls int
	CodeRuns    int

	// Transcript is the full dialogue, seed messages included.
	Transcript []models.Message
}

// Scaffold drives the conductor/expert loop.
type Scaffold struct {
	client  llm.Client
	tmpl    *prompts.Template
	runner  pyexec.Runner
	modelID string
	cfg     models.ScaffoldConfig
}

// ScaffoldArgs are the arguments for [NewScaffold].
type ScaffoldArgs struct {
	// Client issues all completion requests, conductor and expert alike.
	Client llm.Client
	// Template supplies personas, sampling parameters, and marker text.
	Template *prompts.Template
	// Runner executes Python code blocks. Only consulted when
	// Config.CodeExecution is set; may be nil otherwise.
	Runner  pyexec.Runner
	ModelID string
	Config  models.ScaffoldConfig
}

// NewScaffold creates a [Scaffold].
func NewScaffold(args ScaffoldArgs) (*Scaffold, error) {
	if args.Client == nil {
		return nil, fmt.Errorf("scaffold: client is required")
	}
	if args.Template == nil {
		return nil, fmt.Errorf("scaffold: template is required")
	}
	if args.ModelID == "" {
		return nil, fmt.Errorf("scaffold: model id is required")
	}
	if args.Config.CodeExecution && args.Runner == nil {
		return nil, fmt.Errorf("scaffold: code execution enabled but no runner given")
	}

	cfg := args.Config
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = models.DefaultMaxRounds
	}

	return &Scaffold{
		client:  args.Client,
		tmpl:    args.Template,
		runner:  args.Runner,
		modelID: args.ModelID,
		cfg:     cfg,
	}, nil
}

// Run conducts the dialogue starting from the seed messages (conductor
// system instruction plus the task question) and returns when a final
// answer is found or a budget is exhausted. Budget exhaustion yields
// the last conductor reply as a degraded answer, not an error.
func (s *Scaffold) Run(ctx context.Context, seed []models.Message) (Outcome, error) {
	log := models.CloneMessages(seed)
	outcome := Outcome{}

	for round := 0; round < s.cfg.MaxRounds; round++ {
		last := len(log) - 1
		log[last].Content = fmt.Sprintf("ROUND %d:\n\n%s", round+1, log[last].Content)
		if round == s.cfg.MaxRounds-2 {
			log[last].Content += lastRoundNudge
		}

		if s.cfg.MaxTranscriptChars > 0 && transcriptChars(log) > s.cfg.MaxTranscriptChars {
			break
		}

		reply, err := s.complete(ctx, s.tmpl.Conductor.Parameters, log)
		if err != nil {
			outcome.Transcript = log
			return outcome, fmt.Errorf("conductor round %d: %w", round+1, err)
		}
		log = append(log, models.AssistantMessage(reply))
		outcome.Rounds = round + 1

		switch action := ParseReply(reply, s.tmpl.FinalAnswerIndicator).(type) {
		case FinalAnswer:
			outcome.Answer = action.Text
			outcome.Found = true
			outcome.Transcript = log
			return outcome, nil

		case CallExperts:
			observation, err := s.consultExperts(ctx, log, action.Requests, &outcome)
			if err != nil {
				outcome.Transcript = log
				return outcome, fmt.Errorf("expert round %d: %w", round+1, err)
			}
			log = append(log, models.UserMessage(observation+"\n\n"+s.tmpl.IntermediateFeedback))

		case Continue:
			log = append(log, models.UserMessage(s.tmpl.ErrorMessage))
		}
	}

	// Round cap or transcript budget hit: degrade to the last reply.
	outcome.Answer = lastAssistantContent(log)
	outcome.Found = false
	outcome.Transcript = log
	return outcome, nil
}

// consultExperts issues one isolated completion per expert request and
// folds the replies into a single observation block. Expert Python
// replies that ask for execution get their last fenced code block run.
func (s *Scaffold) consultExperts(ctx context.Context, history []models.Message, reqs []ExpertRequest, outcome *Outcome) (string, error) {
	var blocks []string

	for _, req := range reqs {
		instruction := req.Instruction
		if s.cfg.IncludeExpertName {
			instruction = fmt.Sprintf("You are %s.\n\n%s", req.Name, instruction)
		}
		if s.cfg.ZeroShotCoTExperts {
			instruction += "\n\nLet's think step by step."
		}
		if req.Name == "Expert Python" {
			instruction = fmt.Sprintf("%s.\n\n%s", s.tmpl.ExpertPythonMessage, instruction)
		}

		persona := s.tmpl.Generator
		msgs := models.CloneMessages(persona.MessageList)
		if !s.cfg.FreshEyes {
			// The expert sees the dialogue so far, minus the conductor's
			// system instruction.
			for _, m := range history {
				if m.Role != models.RoleSystem {
					msgs = append(msgs, m)
				}
			}
		}
		msgs = append(msgs, models.UserMessage(instruction))

		n := persona.Parameters.NumReturnSequences
		if n < 1 {
			n = 1
		}

		completions, err := s.completeN(ctx, persona.Parameters, msgs, n)
		if err != nil {
			return "", fmt.Errorf("calling %s: %w", req.Name, err)
		}
		outcome.ExpertCalls++

		var expertBlocks []string
		for _, completion := range completions {
			reply := completion.Text

			if req.Name == "Expert Python" {
				reply = s.maybeRunCode(ctx, reply, outcome)
			} else if s.cfg.ExtractOutput {
				reply = extractExpertOutput(reply)
			}

			expertBlocks = append(expertBlocks, fmt.Sprintf("%s's output:\n%s\n%s\n%s", req.Name, tripleQuotes, reply, tripleQuotes))
		}
		block := strings.Join(expertBlocks, "\n")

		// Multiple samples from one expert get condensed by the
		// summarizer persona before rejoining the main dialogue.
		if n > 1 && s.tmpl.Summarizer != nil {
			summary, err := s.summarize(ctx, instruction, block)
			if err != nil {
				return "", fmt.Errorf("summarizing %s outputs: %w", req.Name, err)
			}
			block = fmt.Sprintf("Here is the summary of %s's outputs:\n\n%s", req.Name, summary)
		}

		blocks = append(blocks, block)
	}

	return strings.Join(blocks, "\n"), nil
}

// maybeRunCode executes the code block in an Expert Python reply when
// the reply asks for it and code execution is enabled. Execution
// failures become observation text, never errors.
func (s *Scaffold) maybeRunCode(ctx context.Context, reply string, outcome *Outcome) string {
	if !s.cfg.CodeExecution || !strings.Contains(reply, runCodeTrigger) {
		return reply
	}

	code, ok := ExtractCodeBlock(strings.SplitN(reply, runCodeTrigger, 2)[0])
	if !ok {
		return reply
	}

	var observation string
	res, err := s.runner.Run(ctx, code)
	if err != nil {
		observation = fmt.Sprintf("Error in execution: %v", err)
	} else {
		observation = pyexec.Observation(res)
	}
	outcome.CodeRuns++

	return reply + fmt.Sprintf("Here is the Python code used to solve the problem:\n\n%s\n\nHere is the output of the code when executed:\n\n%s", code, observation)
}

func (s *Scaffold) summarize(ctx context.Context, instruction string, outputs string) (string, error) {
	msgs := models.CloneMessages(s.tmpl.Summarizer.MessageList)
	msgs = append(msgs, models.UserMessage(fmt.Sprintf(
		"Please provide a clear and concise summary of the expert outputs, emphasizing the key similarities and differences between them.\n\nPrompt: %s\n\nOutput: %s",
		instruction, outputs)))
	return s.complete(ctx, s.tmpl.Summarizer.Parameters, msgs)
}

// extractExpertOutput keeps only the text after the extraction token
// and rejects over-long solutions.
func extractExpertOutput(reply string) string {
	if strings.Contains(reply, extractToken) {
		reply = strings.TrimSpace(strings.SplitN(reply, extractToken, 2)[1])
	}
	if len(strings.Split(reply, " ")) > 128 {
		return longSolutionNotice
	}
	return reply
}

func (s *Scaffold) complete(ctx context.Context, params llm.SamplingParams, msgs []models.Message) (string, error) {
	completions, err := s.completeN(ctx, params, msgs, 1)
	if err != nil {
		return "", err
	}
	return completions[0].Text, nil
}

func (s *Scaffold) completeN(ctx context.Context, params llm.SamplingParams, msgs []models.Message, n int) ([]llm.Completion, error) {
	completions, err := s.client.Complete(ctx, llm.Request{
		Model:       s.modelID,
		Messages:    msgs,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
		N:           n,
	})
	if err != nil {
		return nil, err
	}
	if len(completions) == 0 {
		return nil, fmt.Errorf("model returned no completions")
	}
	return completions, nil
}

func transcriptChars(msgs []models.Message) int {
	total := 0
	for _, m := range msgs {
		total += len(m.Content)
	}
	return total
}

func lastAssistantContent(msgs []models.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			return msgs[i].Content
		}
	}
	return ""
}
