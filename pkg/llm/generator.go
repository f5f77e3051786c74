// Package llm defines the generative-model adapter boundary: text
// completion with optional per-token log-probabilities.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration is returned when a completion fails after the adapter's
// retry budget is exhausted. It is fatal for the current request.
var ErrGeneration = errors.New("generation failed")

// Generation is the result of one completion call.
type Generation struct {
	// Text is the generated answer text.
	Text string `json:"text"`

	// ModelVersion identifies the model that produced the text.
	ModelVersion string `json:"model_version"`

	// Logprobs holds per-token log-probabilities aligned to Text, when the
	// provider supports them. Nil otherwise.
	Logprobs []float64 `json:"logprobs,omitempty"`
}

// Generator produces completions for fully rendered prompt text.
// Implementations retry transient failures internally per their configured
// retry policy and wrap exhausted failures in ErrGeneration.
type Generator interface {
	// Generate produces a completion for promptText. When wantLogprobs is
	// true and the provider supports it, per-token log-probabilities are
	// included in the result.
	Generate(ctx context.Context, promptText string, wantLogprobs bool) (*Generation, error)

	// Close releases any resources held by the generator.
	Close() error
}
