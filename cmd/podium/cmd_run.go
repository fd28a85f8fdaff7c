package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/podiumlabs/podium/internal/config"
	"github.com/podiumlabs/podium/internal/dataset"
	"github.com/podiumlabs/podium/internal/harness"
	"github.com/podiumlabs/podium/internal/llm"
	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/prompts"
	"github.com/podiumlabs/podium/internal/pyexec"
	"github.com/podiumlabs/podium/internal/strategy"
)

var (
	runOutputDir     string
	runTranscriptDir string
	runLimit         int
	runModel         string
	runEngine        string
	runParallel      bool
	runWorkers       int
	runFreshEyes     bool
	runCodeExecution bool
	runExpertName    bool
	runTemperature   float64
	runVerbose       bool
	runCompress      bool
	runOverrides     []string
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <experiment.yaml>",
		Short: "Run a prompting-strategy experiment",
		Long: `Run an experiment from a spec file.

The spec file defines the task, strategy, dataset, and model. One JSON
record is written per example; the evaluate command scores them later.
Relative dataset and template paths resolve against the spec file.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "Directory for per-example records (default: results/<name>-<timestamp> next to spec)")
	cmd.Flags().StringVar(&runTranscriptDir, "transcript-dir", "", "Directory to save full dialogue transcripts")
	cmd.Flags().IntVar(&runLimit, "limit", 0, "Only run the first N examples (overrides spec)")
	cmd.Flags().StringVar(&runModel, "model", "", "Model to use (overrides spec config)")
	cmd.Flags().StringVar(&runEngine, "engine", "", "Engine: openai or mock (overrides spec config)")
	cmd.Flags().BoolVar(&runParallel, "parallel", false, "Run examples concurrently")
	cmd.Flags().IntVar(&runWorkers, "workers", 0, "Number of concurrent workers (requires --parallel)")
	cmd.Flags().BoolVar(&runFreshEyes, "fresh-eyes", false, "Hide the conductor dialogue from expert calls (overrides spec)")
	cmd.Flags().BoolVar(&runCodeExecution, "code-execution", false, "Allow the scaffold to execute Python code (overrides spec)")
	cmd.Flags().BoolVar(&runExpertName, "include-expert-name", false, "Prepend \"You are <name>.\" to expert instructions (overrides spec)")
	cmd.Flags().Float64Var(&runTemperature, "temperature", -1, "Conductor sampling temperature (overrides spec)")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Verbose output with detailed progress")
	cmd.Flags().BoolVar(&runCompress, "compress-transcripts", false, "zstd-compress saved transcripts")
	cmd.Flags().StringArrayVar(&runOverrides, "set", nil, "Override a spec field, e.g. --set scaffold.max_rounds=8 (can be repeated)")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	specPath := args[0]

	spec, err := models.LoadExperimentSpec(specPath)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}

	if err := applySpecOverrides(spec, runOverrides); err != nil {
		return err
	}

	// CLI flags override spec config
	if runModel != "" {
		spec.Model.ID = runModel
	}
	if runEngine != "" {
		spec.Model.Engine = runEngine
	}
	if runLimit > 0 {
		spec.Run.Limit = runLimit
	}
	if runParallel {
		spec.Run.Parallel = true
	}
	if runWorkers > 0 {
		spec.Run.Workers = runWorkers
	}
	if cmd.Flags().Changed("fresh-eyes") {
		spec.Scaffold.FreshEyes = runFreshEyes
	}
	if cmd.Flags().Changed("code-execution") {
		spec.Scaffold.CodeExecution = runCodeExecution
	}
	if cmd.Flags().Changed("include-expert-name") {
		spec.Scaffold.IncludeExpertName = runExpertName
	}
	if cmd.Flags().Changed("temperature") {
		spec.Model.Temperature = &runTemperature
	}

	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid spec: %w", err)
	}

	specDir := filepath.Dir(specPath)
	if !filepath.IsAbs(specDir) {
		if absSpecDir, err := filepath.Abs(specDir); err == nil {
			specDir = absSpecDir
		}
	}

	outputDir := runOutputDir
	if outputDir == "" {
		outputDir = filepath.Join(specDir, "results", fmt.Sprintf("%s-%d", spec.Name, time.Now().Unix()))
	}

	templatePath := spec.Template
	if templatePath != "" && !filepath.IsAbs(templatePath) {
		templatePath = filepath.Join(specDir, templatePath)
	}
	template, err := prompts.Load(templatePath)
	if err != nil {
		return err
	}

	taskDescription, err := prompts.Description(spec.Task)
	if err != nil {
		return err
	}
	questionPrefix, err := prompts.ResolveTextOrPath(spec.Run.QuestionPrefix, specDir)
	if err != nil {
		return fmt.Errorf("resolving question prefix: %w", err)
	}
	questionSuffix, err := prompts.ResolveTextOrPath(spec.Run.QuestionSuffix, specDir)
	if err != nil {
		return fmt.Errorf("resolving question suffix: %w", err)
	}

	// Create client based on spec
	var client llm.Client

	switch spec.Model.Engine {
	case "mock":
		client = llm.NewMock(template.FinalAnswerIndicator + " (mock)")
	case "openai":
		client = llm.NewOpenAIClient(llm.OpenAIClientArgs{BaseURL: spec.Model.BaseURL})
	default:
		return fmt.Errorf("unknown engine: %s (supported: openai, mock)", spec.Model.Engine)
	}

	client = llm.NewRetrying(client, llm.RetryPolicy{
		MaxAttempts: spec.Run.RetryAttempts,
		Delay:       time.Duration(spec.Run.RetryDelaySec) * time.Second,
	})

	var codeRunner pyexec.Runner
	if spec.Scaffold.CodeExecution {
		codeRunner = pyexec.NewSubprocessRunner(time.Duration(spec.Scaffold.CodeTimeoutSec) * time.Second)
	}

	strat, err := strategy.New(strategy.Args{
		Client:          client,
		Template:        template,
		Runner:          codeRunner,
		Spec:            spec,
		TaskDescription: taskDescription,
		QuestionPrefix:  questionPrefix,
		QuestionSuffix:  questionSuffix,
	})
	if err != nil {
		return err
	}

	datasetPath := spec.Dataset
	if !filepath.IsAbs(datasetPath) {
		datasetPath = filepath.Join(specDir, datasetPath)
	}
	examples, skipped, err := dataset.Load(datasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d malformed dataset line(s)\n", skipped)
	}
	examples = dataset.Limit(examples, spec.Run.Limit)
	if len(examples) == 0 {
		return fmt.Errorf("dataset %s contains no examples", datasetPath)
	}

	cfg := config.NewRunConfig(spec,
		config.WithOutputDir(outputDir),
		config.WithTranscriptDir(runTranscriptDir),
		config.WithVerbose(runVerbose),
		config.WithCompressTranscripts(runCompress),
	)

	runner := harness.NewRunner(cfg, strat, examples)
	if cfg.Verbose() {
		runner.OnProgress(verboseProgressListener)
	} else {
		runner.OnProgress(simpleProgressListener)
	}

	ctx := context.Background()

	fmt.Printf("Running experiment: %s\n", spec.Name)
	fmt.Printf("Task: %s\n", spec.Task)
	fmt.Printf("Strategy: %s\n", spec.Strategy)
	fmt.Printf("Engine: %s\n", spec.Model.Engine)
	fmt.Printf("Model: %s\n", spec.Model.ID)
	fmt.Printf("Examples: %d\n", len(examples))
	if spec.Run.Parallel {
		fmt.Printf("Parallel: %d workers\n", spec.Run.Workers)
	}
	fmt.Println()

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printRunSummary(summary, outputDir)

	if summary.Failed > 0 {
		return &RunFailureError{
			Message: fmt.Sprintf("run completed with %d failed example(s)", summary.Failed),
		}
	}

	return nil
}

func verboseProgressListener(event harness.ProgressEvent) {
	switch event.EventType {
	case harness.EventRunStart:
		fmt.Printf("Starting run with %d example(s)...\n\n", event.TotalExamples)
	case harness.EventExampleStart:
		fmt.Printf("[%d/%d] Running example...\n", event.ExampleNum, event.TotalExamples)
	case harness.EventExampleComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("[%d/%d] %s (%v)", event.ExampleNum, event.TotalExamples, event.Status, duration)
		if rounds, ok := event.Details["rounds"].(int); ok && rounds > 0 {
			fmt.Printf("  rounds=%d", rounds)
		}
		if experts, ok := event.Details["expert_calls"].(int); ok && experts > 0 {
			fmt.Printf("  experts=%d", experts)
		}
		if codeRuns, ok := event.Details["code_runs"].(int); ok && codeRuns > 0 {
			fmt.Printf("  code_runs=%d", codeRuns)
		}
		fmt.Println()
	case harness.EventExampleFailed:
		if msg, ok := event.Details["error"].(string); ok {
			fmt.Printf("[%d/%d] failed: %s\n", event.ExampleNum, event.TotalExamples, msg)
		}
	case harness.EventExampleSkipped:
		fmt.Printf("[%d/%d] skipped (blank input)\n", event.ExampleNum, event.TotalExamples)
	case harness.EventRunComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("\nRun completed in %v\n", duration)
	}
}

func simpleProgressListener(event harness.ProgressEvent) {
	switch event.EventType {
	case harness.EventExampleComplete:
		fmt.Printf("✓ [%d/%d]\n", event.ExampleNum, event.TotalExamples)
	case harness.EventExampleFailed:
		fmt.Printf("✗ [%d/%d]\n", event.ExampleNum, event.TotalExamples)
	case harness.EventExampleSkipped:
		fmt.Printf("- [%d/%d]\n", event.ExampleNum, event.TotalExamples)
	}
}

func printRunSummary(summary *models.RunSummary, outputDir string) {
	fmt.Println()
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println(" RUN RESULTS")
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	fmt.Printf("Run ID:     %s\n", summary.RunID)
	fmt.Printf("Total:      %d\n", summary.Total)
	fmt.Printf("Completed:  %d\n", summary.Completed)
	fmt.Printf("Failed:     %d\n", summary.Failed)
	fmt.Printf("Skipped:    %d\n", summary.Skipped)

	duration := time.Duration(summary.DurationMs) * time.Millisecond
	fmt.Printf("Duration:   %v\n", duration)
	fmt.Println()

	if summary.Failed > 0 {
		fmt.Println("Failed Examples:")
		fmt.Printf("%s %s %s\n", padRight("Index", 8), padRight("Duration", 12), "Error")
		fmt.Println("-" + strings.Repeat("-", 50))
		for _, ex := range summary.Examples {
			if ex.Status != models.StatusFailed {
				continue
			}
			d := time.Duration(ex.DurationMs) * time.Millisecond
			fmt.Printf("%s %s %s\n",
				padRight(fmt.Sprintf("%d", ex.Index), 8),
				padRight(d.String(), 12),
				ex.ErrorMsg)
		}
		fmt.Println()
	}

	fmt.Printf("Records saved to: %s\n", outputDir)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
