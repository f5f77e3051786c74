// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities. Implementations retry
// transient failures internally per their configured retry policy and wrap
// exhausted failures in vector.ErrEmbedding.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
