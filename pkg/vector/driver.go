// Package vector provides interfaces and implementations for durable
// similarity search over chunk embeddings.
package vector

import "context"

// Document represents an indexed chunk with its embedding and text.
// Documents are owned exclusively by the vector index; readers only query.
type Document struct {
	// ID is the chunk identifier assigned at chunking time. Ids are not
	// required to be unique: re-adding the same id appends a new record.
	ID string

	// Text is the chunk text the embedding was computed from.
	Text string

	// Embedding is the vector representation of the chunk text. All
	// embeddings in one index share a single dimension.
	Embedding []float32
}

// QueryResult represents a search result with a similarity score.
// Scores share one semantic across backends: higher means more similar.
type QueryResult struct {
	Document

	// Score is the similarity proxy (normalized inner product for the exact
	// backend, 1 - cosine distance for the KNN backend).
	Score float32
}

// Driver handles storage and retrieval of chunk embeddings. A driver is
// selected once at startup and never mixed with another backend within a
// single index instance.
type Driver interface {
	// Add appends documents with their embeddings. The metadata and vector
	// artifacts are persisted in lock-step: a failed Add leaves durable
	// state unchanged.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding,
	// ordered by descending score with ties broken by insertion order. The
	// result may be shorter than topK. Returns ErrDimensionMismatch when the
	// embedding's dimension disagrees with the index.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the embedding dimension, or 0 if the index is
	// empty and the dimension has not been fixed yet.
	Dimensions() int

	// Close releases any resources held by the driver.
	Close() error
}
