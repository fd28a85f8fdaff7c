// Package wizard provides the interactive form behind "podium init
// --interactive".
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/prompts"
	"github.com/podiumlabs/podium/internal/strategy"
)

// RunExperimentWizard runs an interactive huh form to collect the
// fields of a new experiment spec.
func RunExperimentWizard(in io.Reader, out io.Writer) (*models.ExperimentSpec, error) {
	var (
		name          string
		task          string
		strategyName  = "meta"
		modelID       = "gpt-4"
		datasetPath   = "data/examples.jsonl"
		maxRoundsRaw  = strconv.Itoa(models.DefaultMaxRounds)
		codeExecution bool
	)

	taskOptions := make([]huh.Option[string], 0, len(prompts.TaskNames()))
	for _, t := range prompts.TaskNames() {
		taskOptions = append(taskOptions, huh.NewOption(t, t))
	}
	strategyOptions := make([]huh.Option[string], 0, len(strategy.Names()))
	for _, s := range strategy.Names() {
		strategyOptions = append(strategyOptions, huh.NewOption(s, s))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Experiment name").
				Description("A short identifier for this experiment").
				Placeholder("my-experiment").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Task").
				Options(taskOptions...).
				Value(&task),
			huh.NewSelect[string]().
				Title("Strategy").
				Options(strategyOptions...).
				Value(&strategyName),
			huh.NewInput().
				Title("Model").
				Description("Model identifier sent to the chat-completions API").
				Value(&modelID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Dataset").
				Description("Path to a JSONL or CSV dataset, relative to the spec file").
				Value(&datasetPath),
			huh.NewInput().
				Title("Max rounds").
				Description("Round cap for the conductor/expert dialogue").
				Value(&maxRoundsRaw).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return fmt.Errorf("must be a positive integer")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Code execution").
				Description("Allow the scaffold to run Python code blocks").
				Value(&codeExecution),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	maxRounds, err := strconv.Atoi(strings.TrimSpace(maxRoundsRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid max rounds: %w", err)
	}

	spec := &models.ExperimentSpec{
		Name:     strings.TrimSpace(name),
		Task:     task,
		Strategy: strategyName,
		Dataset:  strings.TrimSpace(datasetPath),
		Model:    models.ModelConfig{ID: strings.TrimSpace(modelID)},
		Scaffold: models.ScaffoldConfig{
			MaxRounds:     maxRounds,
			CodeExecution: codeExecution,
		},
	}
	spec.ApplyDefaults()
	return spec, nil
}
