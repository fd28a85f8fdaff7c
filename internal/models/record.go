package models

import "time"

// Status represents the outcome status of one example.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Example is a single dataset entry: an input question and an optional
// ground-truth answer. Immutable once loaded.
type Example struct {
	Index  int    `json:"index"`
	Input  string `json:"input"`
	Target string `json:"target,omitempty"`
}

// OutputRecord is the persisted result for one example. Created once,
// never mutated, read later by the evaluator.
type OutputRecord struct {
	Index       int       `json:"index"`
	Input       string    `json:"input"`
	Target      string    `json:"target,omitempty"`
	Output      string    `json:"output"`
	Status      Status    `json:"status"`
	ErrorMsg    string    `json:"error,omitempty"`
	Rounds      int       `json:"rounds,omitempty"`
	ExpertCalls int       `json:"expert_calls,omitempty"`
	CodeRuns    int       `json:"code_runs,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	MessageLog  []Message `json:"message_log,omitempty"`
}

// ExampleResult is the per-example entry in a run summary.
type ExampleResult struct {
	Index      int    `json:"index"`
	Status     Status `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	ErrorMsg   string `json:"error,omitempty"`
}

// RunSummary aggregates one experiment run.
type RunSummary struct {
	RunID      string          `json:"run_id"`
	Task       string          `json:"task"`
	Strategy   string          `json:"strategy"`
	ModelID    string          `json:"model_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	Failed     int             `json:"failed"`
	Skipped    int             `json:"skipped"`
	DurationMs int64           `json:"duration_ms"`
	Examples   []ExampleResult `json:"examples"`
}
