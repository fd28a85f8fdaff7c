package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExperimentSpec represents a complete experiment specification.
type ExperimentSpec struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Task        string         `yaml:"task" json:"task"`
	Strategy    string         `yaml:"strategy" json:"strategy"`
	Dataset     string         `yaml:"dataset" json:"dataset"`
	Template    string         `yaml:"template,omitempty" json:"template,omitempty"`
	Model       ModelConfig    `yaml:"model" json:"model"`
	Scaffold    ScaffoldConfig `yaml:"scaffold,omitempty" json:"scaffold"`
	Run         RunConfig      `yaml:"run,omitempty" json:"run"`
}

// ModelConfig holds the model identifier and sampling parameters for the
// conductor. Expert calls use the parameters from the prompt template.
type ModelConfig struct {
	ID          string   `yaml:"id" json:"id"`
	Engine      string   `yaml:"engine,omitempty" json:"engine,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	TopP        *float64 `yaml:"top_p,omitempty" json:"top_p,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}

// ScaffoldConfig controls the conductor/expert dialogue loop.
type ScaffoldConfig struct {
	MaxRounds          int  `yaml:"max_rounds,omitempty" json:"max_rounds"`
	FreshEyes          bool `yaml:"fresh_eyes,omitempty" json:"fresh_eyes"`
	CodeExecution      bool `yaml:"code_execution,omitempty" json:"code_execution"`
	IncludeExpertName  bool `yaml:"include_expert_name,omitempty" json:"include_expert_name"`
	ZeroShotCoTExperts bool `yaml:"zero_shot_cot_experts,omitempty" json:"zero_shot_cot_experts"`
	ExtractOutput      bool `yaml:"extract_output,omitempty" json:"extract_output"`
	MaxTranscriptChars int  `yaml:"max_transcript_chars,omitempty" json:"max_transcript_chars"`
	CodeTimeoutSec     int  `yaml:"code_timeout_seconds,omitempty" json:"code_timeout_sec"`
}

// RunConfig controls execution behavior for a run.
type RunConfig struct {
	Limit           int    `yaml:"limit,omitempty" json:"limit"`
	Parallel        bool   `yaml:"parallel,omitempty" json:"parallel"`
	Workers         int    `yaml:"max_workers,omitempty" json:"workers,omitempty"`
	RetryAttempts   int    `yaml:"retry_attempts,omitempty" json:"retry_attempts"`
	RetryDelaySec   int    `yaml:"retry_delay_seconds,omitempty" json:"retry_delay_sec"`
	QuestionPrefix  string `yaml:"question_prefix,omitempty" json:"question_prefix,omitempty"`
	QuestionSuffix  string `yaml:"question_suffix,omitempty" json:"question_suffix,omitempty"`
	SaveTranscripts bool   `yaml:"save_transcripts,omitempty" json:"save_transcripts"`
}

// Defaults applied by LoadExperimentSpec when the spec leaves them unset.
const (
	DefaultMaxRounds      = 16
	DefaultRetryAttempts  = 7
	DefaultRetryDelaySec  = 5
	DefaultCodeTimeoutSec = 3
	DefaultWorkers        = 6
)

// LoadExperimentSpec loads a spec from a YAML file, fills defaults, and
// validates it.
func LoadExperimentSpec(path string) (*ExperimentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec ExperimentSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}

	spec.ApplyDefaults()

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (s *ExperimentSpec) ApplyDefaults() {
	if s.Scaffold.MaxRounds <= 0 {
		s.Scaffold.MaxRounds = DefaultMaxRounds
	}
	if s.Scaffold.CodeTimeoutSec <= 0 {
		s.Scaffold.CodeTimeoutSec = DefaultCodeTimeoutSec
	}
	if s.Run.RetryAttempts <= 0 {
		s.Run.RetryAttempts = DefaultRetryAttempts
	}
	if s.Run.RetryDelaySec <= 0 {
		s.Run.RetryDelaySec = DefaultRetryDelaySec
	}
	if s.Run.Workers <= 0 {
		s.Run.Workers = DefaultWorkers
	}
	if s.Model.Engine == "" {
		s.Model.Engine = "openai"
	}
}

// Validate checks that the spec is valid.
func (s *ExperimentSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Task == "" {
		return fmt.Errorf("task is required")
	}
	if s.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if s.Model.ID == "" {
		return fmt.Errorf("model.id is required")
	}
	if s.Scaffold.MaxRounds < 1 {
		return fmt.Errorf("scaffold.max_rounds must be at least 1, got %d", s.Scaffold.MaxRounds)
	}
	if t := s.Model.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("model.temperature must be in [0, 2], got %v", *t)
	}
	if p := s.Model.TopP; p != nil && (*p <= 0 || *p > 1) {
		return fmt.Errorf("model.top_p must be in (0, 1], got %v", *p)
	}
	return nil
}
