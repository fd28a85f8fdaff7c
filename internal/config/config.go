package config

import (
	"github.com/podiumlabs/podium/internal/models"
)

// RunConfig bundles an experiment spec with run-time settings that come
// from the CLI rather than the spec file.
type RunConfig struct {
	spec *models.ExperimentSpec

	outputDir           string
	transcriptDir       string
	verbose             bool
	compressTranscripts bool
}

// Option configures a RunConfig.
type Option func(*RunConfig)

// WithOutputDir sets the directory for per-example output records.
func WithOutputDir(dir string) Option {
	return func(c *RunConfig) {
		c.outputDir = dir
	}
}

// WithTranscriptDir sets the directory for full dialogue transcripts.
func WithTranscriptDir(dir string) Option {
	return func(c *RunConfig) {
		c.transcriptDir = dir
	}
}

// WithVerbose enables detailed progress output.
func WithVerbose(v bool) Option {
	return func(c *RunConfig) {
		c.verbose = v
	}
}

// WithCompressTranscripts enables zstd compression for transcript files.
func WithCompressTranscripts(v bool) Option {
	return func(c *RunConfig) {
		c.compressTranscripts = v
	}
}

// NewRunConfig creates a RunConfig for the given spec.
func NewRunConfig(spec *models.ExperimentSpec, opts ...Option) *RunConfig {
	c := &RunConfig{spec: spec}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RunConfig) Spec() *models.ExperimentSpec { return c.spec }
func (c *RunConfig) OutputDir() string            { return c.outputDir }
func (c *RunConfig) TranscriptDir() string        { return c.transcriptDir }
func (c *RunConfig) Verbose() bool                { return c.verbose }
func (c *RunConfig) CompressTranscripts() bool    { return c.compressTranscripts }
