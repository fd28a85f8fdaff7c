// Package llm wraps the hosted chat-completion API behind a small client
// interface so the scaffold and strategies can be driven by scripted
// responses in tests.
package llm

import (
	"context"

	"github.com/podiumlabs/podium/internal/models"
)

// Request is one chat-completion request.
type Request struct {
	Model       string
	Messages    []models.Message
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	// N is the number of completions to request. Zero means one.
	N int
}

// Completion is one generated choice.
type Completion struct {
	Text        string
	TotalTokens int64
}

// Client sends role-tagged messages plus sampling parameters and returns
// completion text or an error. Implementations must be safe for
// concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) ([]Completion, error)
}

// SamplingParams is the parameter block attached to each persona in a
// prompt template.
type SamplingParams struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	TopP               *float64 `json:"top_p,omitempty"`
	MaxTokens          *int     `json:"max_tokens,omitempty"`
	NumReturnSequences int      `json:"num_return_sequences,omitempty"`
}

// Float returns a pointer to v, for filling optional sampling fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for filling optional sampling fields.
func Int(v int) *int { return &v }
