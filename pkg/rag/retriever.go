package rag

import (
	"context"
	"fmt"

	"github.com/contractminer/contractminer/pkg/embeddings"
	"github.com/contractminer/contractminer/pkg/vector"
)

// DefaultTopK is the retrieval depth when a query does not specify one.
const DefaultTopK = 5

// Retriever embeds query text and finds the most similar indexed chunks.
type Retriever struct {
	embedder embeddings.Embedder
	driver   vector.Driver
}

// NewRetriever creates a Retriever over the given embedder and index.
func NewRetriever(embedder embeddings.Embedder, driver vector.Driver) *Retriever {
	return &Retriever{embedder: embedder, driver: driver}
}

// Retrieve returns up to topK chunks ordered by descending similarity.
// topK <= 0 falls back to DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, text string, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.driver.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	return results, nil
}
