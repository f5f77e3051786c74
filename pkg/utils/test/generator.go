package testutils

import (
	"context"
	"fmt"

	"github.com/contractminer/contractminer/pkg/llm"
)

// MockGenerator is a test generator that returns a fixed response and
// counts calls.
type MockGenerator struct {
	// Response is returned for every call. Defaults to "mock answer".
	Response string

	// ModelVersion tags every generation. Defaults to "test-model".
	ModelVersion string

	// Logprobs is attached to every generation when wantLogprobs is true.
	Logprobs []float64

	// Fail causes Generate to return an error.
	Fail bool

	// Prompts accumulates every prompt text in call order.
	Prompts []string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Response:     "mock answer",
		ModelVersion: "test-model",
	}
}

func (m *MockGenerator) Generate(_ context.Context, promptText string, wantLogprobs bool) (*llm.Generation, error) {
	if m.Fail {
		return nil, fmt.Errorf("%w: mock generation failure", llm.ErrGeneration)
	}

	m.Prompts = append(m.Prompts, promptText)

	gen := &llm.Generation{
		Text:         m.Response,
		ModelVersion: m.ModelVersion,
	}
	if wantLogprobs {
		gen.Logprobs = m.Logprobs
	}
	return gen, nil
}

// CallCount reports how many generations succeeded.
func (m *MockGenerator) CallCount() int {
	return len(m.Prompts)
}

func (m *MockGenerator) Close() error {
	return nil
}
