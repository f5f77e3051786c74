// Package llmutils is the generator utility package
package llmutils

import (
	"fmt"

	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/llm/ollama"
	"github.com/contractminer/contractminer/pkg/llm/openai"
	"github.com/contractminer/contractminer/pkg/retry"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	MaxTokens    int
	Retry        retry.Policy
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewGenerator(ollama.GeneratorConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Retry:   o.Retry,
		})
	case "openai":
		return openai.NewGenerator(openai.GeneratorConfig{
			APIKey:    o.APIKey,
			BaseURL:   o.TargetURL,
			Model:     o.Model,
			MaxTokens: o.MaxTokens,
			Retry:     o.Retry,
		})
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", o.ProviderType)
	}
}
