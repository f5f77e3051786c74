// Package openai implements pkg/llm's Generator against the OpenAI chat
// completions API, including per-token log-probabilities.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/retry"
)

const (
	// DefaultModel is the default chat completion model.
	DefaultModel = "gpt-4o-mini"

	// DefaultMaxTokens bounds a single completion.
	DefaultMaxTokens = 512
)

// Generator wraps the OpenAI chat completions API with bounded retries.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
	policy    retry.Policy
}

// GeneratorConfig holds configuration for the OpenAI generator.
type GeneratorConfig struct {
	// APIKey authenticates against the OpenAI API. Required.
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a compatible gateway.
	BaseURL string

	// Model is the chat model. Defaults to DefaultModel.
	Model string

	// MaxTokens bounds the completion length. Defaults to DefaultMaxTokens.
	MaxTokens int

	// Retry bounds the backoff schedule for transient failures.
	Retry retry.Policy
}

// NewGenerator creates a new generator using the OpenAI chat API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Generator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		policy:    cfg.Retry,
	}, nil
}

// Generate produces a completion, deterministic settings (temperature 0).
func (g *Generator) Generate(ctx context.Context, promptText string, wantLogprobs bool) (*llm.Generation, error) {
	var gen *llm.Generation

	err := g.policy.Do(ctx, func(ctx context.Context) error {
		req := openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: promptText},
			},
			MaxTokens:   g.maxTokens,
			Temperature: 0,
			TopP:        1,
			LogProbs:    wantLogprobs,
		}

		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices returned")
		}

		choice := resp.Choices[0]
		gen = &llm.Generation{
			Text:         choice.Message.Content,
			ModelVersion: resp.Model,
		}

		if wantLogprobs && choice.LogProbs != nil {
			logprobs := make([]float64, 0, len(choice.LogProbs.Content))
			for _, lp := range choice.LogProbs.Content {
				logprobs = append(logprobs, lp.LogProb)
			}
			gen.Logprobs = logprobs
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrGeneration, err)
	}

	return gen, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)
