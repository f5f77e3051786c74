// Package explain estimates token importance by perturbing the response
// and measuring the shift in model certainty.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/logger"
	"github.com/contractminer/contractminer/pkg/prompt"
	"github.com/contractminer/contractminer/pkg/vector"
)

// MaskToken replaces the perturbed token in the evaluation prompt.
const MaskToken = "[MASK]"

// DefaultTopN bounds the number of masked evaluation calls per explanation.
const DefaultTopN = 5

// TokenImportance scores one response token. Delta is the drop in model
// certainty when the token is masked; negative deltas mean the mask
// increased certainty.
type TokenImportance struct {
	Token string  `json:"token"`
	Delta float64 `json:"delta"`
}

// Explanation is the full explainability output for one query.
type Explanation struct {
	TokenImportance []TokenImportance `json:"token_importance"`
	Provenance      []string          `json:"provenance"`
}

// Engine produces perturbation-based explanations. Each explanation costs
// one baseline generation call plus one per masked token, so callers gate
// it behind an explicit request flag.
type Engine struct {
	generator llm.Generator
	topN      int
	logger    *slog.Logger
}

// NewEngine creates an Engine. topN <= 0 falls back to DefaultTopN.
func NewEngine(generator llm.Generator, topN int, log *slog.Logger) *Engine {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Engine{
		generator: generator,
		topN:      topN,
		logger:    logger.OrNop(log),
	}
}

// Explain scores the first topN whitespace tokens of response by masking
// each in turn. An empty response short-circuits to provenance only, with
// no generation calls.
func (e *Engine) Explain(ctx context.Context, p prompt.Prompt, response string, retrieved []vector.QueryResult) (*Explanation, error) {
	provenance := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		provenance = append(provenance, r.Document.ID)
	}

	tokens := strings.Fields(response)
	if len(tokens) == 0 {
		return &Explanation{TokenImportance: []TokenImportance{}, Provenance: provenance}, nil
	}

	baseline, baselineOK, err := e.certainty(ctx, p.Text)
	if err != nil {
		return nil, fmt.Errorf("baseline generation: %w", err)
	}

	n := e.topN
	if n > len(tokens) {
		n = len(tokens)
	}

	importance := make([]TokenImportance, 0, n)
	for i := 0; i < n; i++ {
		masked := maskedResponse(tokens, i)
		evalPrompt := evaluationPrompt(p.Text, masked)

		score, ok, err := e.certainty(ctx, evalPrompt)
		if err != nil {
			return nil, fmt.Errorf("masked generation for token %d: %w", i, err)
		}

		delta := 0.0
		if baselineOK && ok {
			delta = baseline - score
		}
		importance = append(importance, TokenImportance{Token: tokens[i], Delta: delta})
	}

	sort.SliceStable(importance, func(a, b int) bool {
		return importance[a].Delta > importance[b].Delta
	})

	e.logger.Debug("explanation computed",
		"tokens_scored", len(importance),
		"provenance_chunks", len(provenance),
	)

	return &Explanation{TokenImportance: importance, Provenance: provenance}, nil
}

// certainty runs one generation and reduces its logprobs to a mean. The
// boolean is false when the provider returned no logprobs.
func (e *Engine) certainty(ctx context.Context, promptText string) (float64, bool, error) {
	gen, err := e.generator.Generate(ctx, promptText, true)
	if err != nil {
		return 0, false, err
	}
	if len(gen.Logprobs) == 0 {
		return 0, false, nil
	}
	var sum float64
	for _, lp := range gen.Logprobs {
		sum += lp
	}
	return sum / float64(len(gen.Logprobs)), true, nil
}

func maskedResponse(tokens []string, index int) string {
	masked := make([]string, len(tokens))
	copy(masked, tokens)
	masked[index] = MaskToken
	return strings.Join(masked, " ")
}

// evaluationPrompt extends the original prompt with a masked paraphrase of
// the response, so the certainty shift is measured in the same context the
// answer was generated in.
func evaluationPrompt(promptText, masked string) string {
	return fmt.Sprintf("%s\n\nEVALUATE: Is the following paraphrase equivalent? %q", promptText, masked)
}
