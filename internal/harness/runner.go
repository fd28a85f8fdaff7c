// Package harness runs a strategy over a dataset and persists one
// output record per example, plus a run summary and a config snapshot.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/podiumlabs/podium/internal/config"
	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/strategy"
)

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event.
type EventType string

// EventType constants
const (
	EventRunStart        EventType = "run_start"
	EventRunComplete     EventType = "run_complete"
	EventExampleStart    EventType = "example_start"
	EventExampleComplete EventType = "example_complete"
	EventExampleFailed   EventType = "example_failed"
	EventExampleSkipped  EventType = "example_skipped"
)

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	EventType     EventType
	ExampleNum    int
	TotalExamples int
	Status        models.Status
	DurationMs    int64
	Details       map[string]any
}

// Runner executes one experiment run.
type Runner struct {
	cfg      *config.RunConfig
	strat    strategy.Strategy
	examples []models.Example

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithListeners registers progress listeners at construction time.
func WithListeners(listeners ...ProgressListener) RunnerOption {
	return func(r *Runner) {
		r.listeners = append(r.listeners, listeners...)
	}
}

// NewRunner creates a Runner over the given examples.
func NewRunner(cfg *config.RunConfig, strat strategy.Strategy, examples []models.Example, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:       cfg,
		strat:     strat,
		examples:  examples,
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run processes every example and returns the run summary. Per-example
// strategy failures are recorded and do not abort the run; only I/O
// errors writing records are fatal.
func (r *Runner) Run(ctx context.Context) (*models.RunSummary, error) {
	startTime := time.Now()
	spec := r.cfg.Spec()

	if err := os.MkdirAll(r.cfg.OutputDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if dir := r.cfg.TranscriptDir(); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating transcript directory: %w", err)
		}
	}

	r.notifyProgress(ProgressEvent{
		EventType:     EventRunStart,
		TotalExamples: len(r.examples),
	})

	var records []models.OutputRecord
	var err error
	if spec.Run.Parallel {
		records, err = r.runParallel(ctx)
	} else {
		records, err = r.runSequential(ctx)
	}
	if err != nil {
		return nil, err
	}

	summary := r.buildSummary(records, startTime)

	if err := r.writeJSON("summary.json", summary); err != nil {
		return nil, err
	}
	// Snapshot the spec so the run stays interpretable after the
	// experiment file changes.
	if err := r.writeJSON("experiment.json", spec); err != nil {
		return nil, err
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventRunComplete,
		DurationMs: time.Since(startTime).Milliseconds(),
	})

	return summary, nil
}

func (r *Runner) runSequential(ctx context.Context) ([]models.OutputRecord, error) {
	records := make([]models.OutputRecord, 0, len(r.examples))
	for i, example := range r.examples {
		record := r.processExample(ctx, example, i+1, len(r.examples))
		if err := r.persistRecord(record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Runner) runParallel(ctx context.Context) ([]models.OutputRecord, error) {
	workers := r.cfg.Spec().Run.Workers
	if workers <= 0 {
		workers = models.DefaultWorkers
	}

	records := make([]models.OutputRecord, len(r.examples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, example := range r.examples {
		g.Go(func() error {
			records[i] = r.processExample(ctx, example, i+1, len(r.examples))
			return r.persistRecord(records[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

// processExample invokes the strategy and converts the outcome (or the
// failure) into an output record. No cross-example state.
func (r *Runner) processExample(ctx context.Context, example models.Example, num, total int) models.OutputRecord {
	record := models.OutputRecord{
		Index:  example.Index,
		Input:  example.Input,
		Target: example.Target,
	}

	if strings.TrimSpace(example.Input) == "" {
		record.Status = models.StatusSkipped
		record.ErrorMsg = "blank input"
		r.notifyProgress(ProgressEvent{
			EventType:     EventExampleSkipped,
			ExampleNum:    num,
			TotalExamples: total,
			Status:        record.Status,
		})
		return record
	}

	r.notifyProgress(ProgressEvent{
		EventType:     EventExampleStart,
		ExampleNum:    num,
		TotalExamples: total,
	})

	start := time.Now()
	result, err := r.strat.Solve(ctx, example)
	record.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		record.Status = models.StatusFailed
		record.ErrorMsg = err.Error()
		r.notifyProgress(ProgressEvent{
			EventType:     EventExampleFailed,
			ExampleNum:    num,
			TotalExamples: total,
			Status:        record.Status,
			DurationMs:    record.DurationMs,
			Details:       map[string]any{"error": err.Error()},
		})
		return record
	}

	record.Status = models.StatusCompleted
	record.Output = result.Output
	record.Rounds = result.Rounds
	record.ExpertCalls = result.ExpertCalls
	record.CodeRuns = result.CodeRuns
	if r.cfg.Spec().Run.SaveTranscripts {
		record.MessageLog = result.MessageLog
	}

	r.notifyProgress(ProgressEvent{
		EventType:     EventExampleComplete,
		ExampleNum:    num,
		TotalExamples: total,
		Status:        record.Status,
		DurationMs:    record.DurationMs,
		Details: map[string]any{
			"rounds":       record.Rounds,
			"expert_calls": record.ExpertCalls,
			"code_runs":    record.CodeRuns,
		},
	})

	if dir := r.cfg.TranscriptDir(); dir != "" && len(result.MessageLog) > 0 {
		if err := r.writeTranscript(dir, example.Index, result.MessageLog); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] failed to write transcript for example %d: %v\n", example.Index, err)
		}
	}

	return record
}

// persistRecord writes one example record. A record is a single write;
// a failure here is fatal for the run.
func (r *Runner) persistRecord(record models.OutputRecord) error {
	name := fmt.Sprintf("example-%05d.json", record.Index)
	return r.writeJSON(name, record)
}

func (r *Runner) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(r.cfg.OutputDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// writeTranscript persists a full message log, zstd-compressed when
// configured.
func (r *Runner) writeTranscript(dir string, index int, log []models.Message) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}

	if !r.cfg.CompressTranscripts() {
		path := filepath.Join(dir, fmt.Sprintf("transcript-%05d.json", index))
		return os.WriteFile(path, data, 0o644)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := encoder.EncodeAll(data, nil)
	if err := encoder.Close(); err != nil {
		return err
	}

	path := filepath.Join(dir, fmt.Sprintf("transcript-%05d.json.zst", index))
	return os.WriteFile(path, compressed, 0o644)
}

func (r *Runner) buildSummary(records []models.OutputRecord, startTime time.Time) *models.RunSummary {
	spec := r.cfg.Spec()

	summary := &models.RunSummary{
		RunID:      fmt.Sprintf("run-%d", startTime.Unix()),
		Task:       spec.Task,
		Strategy:   spec.Strategy,
		ModelID:    spec.Model.ID,
		Timestamp:  startTime,
		Total:      len(records),
		DurationMs: time.Since(startTime).Milliseconds(),
	}

	for _, record := range records {
		switch record.Status {
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusFailed:
			summary.Failed++
		case models.StatusSkipped:
			summary.Skipped++
		}
		summary.Examples = append(summary.Examples, models.ExampleResult{
			Index:      record.Index,
			Status:     record.Status,
			DurationMs: record.DurationMs,
			ErrorMsg:   record.ErrorMsg,
		})
	}

	return summary
}
