package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/podiumlabs/podium/internal/evaluate"
	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/pyexec"
)

var (
	evalTask   string
	evalMarker string
	evalJSON   bool
)

func newEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <run-dir-glob>",
		Short: "Score finished experiment runs",
		Long: `Score the output records of one or more finished runs.

The argument is a glob over run directories, e.g. "results/GameOf24-*".
Each directory is scored independently against the task's checker. The
task is read from the run's experiment.json snapshot unless --task is
given.`,
		Args: cobra.ExactArgs(1),
		RunE: evalCommandE,
	}

	cmd.Flags().StringVar(&evalTask, "task", "", "Task name (default: read from the run's experiment.json)")
	cmd.Flags().StringVar(&evalMarker, "answer-marker", "", "Final-answer indicator to extract answers after")
	cmd.Flags().BoolVar(&evalJSON, "json", false, "Print reports as JSON")

	return cmd
}

func evalCommandE(cmd *cobra.Command, args []string) error {
	pattern := args[0]

	task := evalTask
	if task == "" {
		var err error
		task, err = taskFromSnapshot(pattern)
		if err != nil {
			return err
		}
	}

	evaluator, err := evaluate.NewEvaluator(evaluate.EvaluatorArgs{
		Task:   task,
		Marker: evalMarker,
		Runner: pyexec.NewSubprocessRunner(time.Duration(models.DefaultCodeTimeoutSec) * time.Second),
	})
	if err != nil {
		return err
	}

	reports, err := evaluator.EvaluateGlob(context.Background(), pattern)
	if err != nil {
		return err
	}

	if evalJSON {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printReports(task, reports)
	return nil
}

// taskFromSnapshot reads the task name from the experiment.json snapshot
// of the first run directory matching the pattern.
func taskFromSnapshot(pattern string) (string, error) {
	dirs, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, "experiment.json"))
		if err != nil {
			continue
		}
		var spec models.ExperimentSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			continue
		}
		if spec.Task != "" {
			return spec.Task, nil
		}
	}
	return "", fmt.Errorf("no experiment.json found under %s; pass --task explicitly", pattern)
}

func printReports(task string, reports []*evaluate.Report) {
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Printf(" EVALUATION: %s\n", task)
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	dirWidth := len("Run")
	for _, r := range reports {
		if name := filepath.Base(r.Dir); len(name) > dirWidth {
			dirWidth = len(name)
		}
	}

	fmt.Printf("%s %s %s %s\n",
		padRight("Run", dirWidth),
		padRight("Accuracy", 10),
		padRight("Correct", 10),
		"95% CI")
	fmt.Println("-" + strings.Repeat("-", 50))

	for _, r := range reports {
		ci := "—"
		if r.CI != nil {
			ci = fmt.Sprintf("[%.3f, %.3f]", r.CI.Lower, r.CI.Upper)
		}
		fmt.Printf("%s %s %s %s\n",
			padRight(filepath.Base(r.Dir), dirWidth),
			padRight(fmt.Sprintf("%.1f%%", r.Accuracy*100), 10),
			padRight(fmt.Sprintf("%d/%d", r.Correct, r.Total), 10),
			ci)
	}
	fmt.Println()
}
