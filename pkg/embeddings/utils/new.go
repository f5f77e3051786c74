// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/contractminer/contractminer/pkg/embeddings"
	"github.com/contractminer/contractminer/pkg/embeddings/ollama"
	"github.com/contractminer/contractminer/pkg/embeddings/openai"
	"github.com/contractminer/contractminer/pkg/retry"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Retry        retry.Policy
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Retry:   o.Retry,
		})
	case "openai":
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Retry:   o.Retry,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
