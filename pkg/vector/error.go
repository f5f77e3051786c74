package vector

import "errors"

var (
	// ErrEmbedding is returned when embedding generation fails after retries.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch is returned when a vector's dimension disagrees
	// with the dimension fixed for the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrConnection is returned when the vector store backend cannot be
	// opened or reached.
	ErrConnection = errors.New("vector store connection failed")
)
