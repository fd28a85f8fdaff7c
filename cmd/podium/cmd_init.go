package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new experiment",
		Long: `Initialize a new experiment directory.

Creates an experiment.yaml spec file and a data/ directory with a small
example dataset.

Use --interactive to run a guided wizard that collects the experiment
fields instead of using the defaults.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided experiment creation wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var spec *models.ExperimentSpec
	if interactive {
		var err error
		spec, err = wizard.RunExperimentWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	} else {
		spec = &models.ExperimentSpec{
			Name:        "my-experiment",
			Description: "Experiment comparing prompting strategies.",
			Task:        "GameOf24",
			Strategy:    "meta",
			Dataset:     "data/examples.jsonl",
			Model:       models.ModelConfig{ID: "gpt-4", Engine: "mock"},
		}
		spec.ApplyDefaults()
	}

	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	specData, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal experiment spec: %w", err)
	}

	specPath := filepath.Join(dir, "experiment.yaml")
	if err := os.WriteFile(specPath, specData, 0o644); err != nil {
		return fmt.Errorf("failed to write experiment.yaml: %w", err)
	}

	// Small example dataset so "podium run --engine mock" works out of
	// the box.
	datasetContent := `{"input": "4 4 6 8", "target": "24"}
{"input": "2 9 10 12", "target": "24"}
{"input": "3 3 8 8", "target": "24"}
`
	datasetPath := filepath.Join(dataDir, "examples.jsonl")
	if err := os.WriteFile(datasetPath, []byte(datasetContent), 0o644); err != nil {
		return fmt.Errorf("failed to write example dataset: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized experiment:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", specPath)         //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", datasetPath)      //nolint:errcheck

	return nil
}
