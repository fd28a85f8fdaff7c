package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/pyexec"
	"github.com/podiumlabs/podium/internal/statistics"
)

// ExampleScore is one example's verdict.
type ExampleScore struct {
	Index   int    `json:"index"`
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
	Target  string `json:"target"`
}

// Report aggregates the scores for one run directory.
type Report struct {
	Dir      string                         `json:"dir"`
	Task     string                         `json:"task"`
	Total    int                            `json:"total"`
	Correct  int                            `json:"correct"`
	Accuracy float64                        `json:"accuracy"`
	CI       *statistics.ConfidenceInterval `json:"confidence_interval,omitempty"`
	Examples []ExampleScore                 `json:"examples"`
}

// EvaluatorArgs are the arguments for [NewEvaluator].
type EvaluatorArgs struct {
	Task string
	// Marker is the final-answer indicator; empty means
	// DefaultAnswerMarker.
	Marker string
	// Runner executes code for tasks that verify answers by running
	// them; may be nil for other tasks.
	Runner pyexec.Runner
}

// Evaluator scores output records for one task.
type Evaluator struct {
	checker Checker
	marker  string
}

// NewEvaluator creates an [Evaluator]. Unsupported tasks return
// *ErrUnsupportedTask.
func NewEvaluator(args EvaluatorArgs) (*Evaluator, error) {
	checker, err := NewChecker(args.Task, args.Runner)
	if err != nil {
		return nil, err
	}
	marker := args.Marker
	if marker == "" {
		marker = DefaultAnswerMarker
	}
	return &Evaluator{checker: checker, marker: marker}, nil
}

// EvaluateDir reads every example record in a run directory and scores
// it. Failed or skipped examples count as incorrect, and so do
// unparseable outputs; neither is an evaluator error.
func (e *Evaluator) EvaluateDir(ctx context.Context, dir string) (*Report, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "example-*.json"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no example records found in %s", dir)
	}
	sort.Strings(paths)

	report := &Report{Dir: dir, Task: e.checker.Name()}

	for _, path := range paths {
		record, err := readRecord(path)
		if err != nil {
			return nil, err
		}

		score := ExampleScore{Index: record.Index, Target: record.Target}
		if record.Status == models.StatusCompleted {
			score.Answer = ExtractAnswer(record.Output, e.marker)
			example := models.Example{Index: record.Index, Input: record.Input, Target: record.Target}
			correct, err := e.checker.Check(ctx, example, score.Answer)
			if err != nil {
				return nil, fmt.Errorf("checking example %d: %w", record.Index, err)
			}
			score.Correct = correct
		}

		report.Examples = append(report.Examples, score)
		report.Total++
		if score.Correct {
			report.Correct++
		}
	}

	report.Accuracy = float64(report.Correct) / float64(report.Total)

	if report.Total >= 2 {
		correct := make([]bool, 0, len(report.Examples))
		for _, s := range report.Examples {
			correct = append(correct, s.Correct)
		}
		ci := statistics.BootstrapCI(statistics.Scores(correct), 0.95)
		report.CI = &ci
	}

	return report, nil
}

// EvaluateGlob scores every run directory matching the pattern.
func (e *Evaluator) EvaluateGlob(ctx context.Context, pattern string) ([]*Report, error) {
	dirs, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}

	var reports []*Report
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		report, err := e.EvaluateDir(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", dir, err)
		}
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("no run directories matched %s", pattern)
	}
	return reports, nil
}

func readRecord(path string) (*models.OutputRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", path, err)
	}
	var record models.OutputRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return &record, nil
}
