// Package ollama implements pkg/llm's Generator against Ollama's generate
// API. Ollama does not expose per-token log-probabilities, so Generation
// results carry no logprobs and the confidence scorer falls back to its
// neutral model sub-score.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/retry"
)

const (
	// DefaultModel is the default generation model.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Generator wraps Ollama's generate API with bounded retries.
type Generator struct {
	baseURL    string
	model      string
	policy     retry.Policy
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the Ollama generator.
type GeneratorConfig struct {
	// BaseURL is the Ollama API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model. Defaults to DefaultModel if empty.
	Model string

	// Retry bounds the backoff schedule for transient failures.
	Retry retry.Policy
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a new generator using Ollama's generate API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: baseURL,
		model:   model,
		policy:  cfg.Retry,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// Generate produces a completion. wantLogprobs is accepted for interface
// compatibility; the result never carries logprobs.
func (g *Generator) Generate(ctx context.Context, promptText string, _ bool) (*llm.Generation, error) {
	var gen *llm.Generation

	err := g.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		gen, err = g.generateOnce(ctx, promptText)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrGeneration, err)
	}

	return gen, nil
}

func (g *Generator) generateOnce(ctx context.Context, promptText string) (*llm.Generation, error) {
	jsonBody, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: promptText,
		Stream: false,
		Options: map[string]any{
			"temperature": 0,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &llm.Generation{
		Text:         genResp.Response,
		ModelVersion: genResp.Model,
	}, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)
