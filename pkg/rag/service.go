// Package rag wires the full query pipeline: sanitize, retrieve, prompt,
// generate, filter, score, explain, audit.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/contractminer/contractminer/pkg/audit"
	"github.com/contractminer/contractminer/pkg/chunker"
	"github.com/contractminer/contractminer/pkg/confidence"
	"github.com/contractminer/contractminer/pkg/embeddings"
	"github.com/contractminer/contractminer/pkg/eventstream"
	"github.com/contractminer/contractminer/pkg/explain"
	"github.com/contractminer/contractminer/pkg/filter"
	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/logger"
	"github.com/contractminer/contractminer/pkg/prompt"
	"github.com/contractminer/contractminer/pkg/sanitize"
	"github.com/contractminer/contractminer/pkg/vector"
)

// QueryInput is one query request.
type QueryInput struct {
	Text           string
	TopK           int
	IncludeExplain bool
}

// QueryOutput is the caller-facing result of one query.
type QueryOutput struct {
	Response     string               `json:"response"`
	Confidence   float64              `json:"confidence_score"`
	Explanation  *explain.Explanation `json:"explanation,omitempty"`
	ModelVersion string               `json:"model_version"`
	InputHash    string               `json:"input_hash"`
	AuditID      int64                `json:"audit_id"`
}

// ServiceOptions carries the collaborators for a Service. Embedder,
// Generator and Vectors are required; the rest default to working
// implementations or no-ops.
type ServiceOptions struct {
	Embedder  embeddings.Embedder
	Generator llm.Generator
	Vectors   vector.Driver
	Audits    audit.Store
	Events    eventstream.Publisher
	Filter    *filter.Filter
	Scorer    *confidence.Scorer
	Explainer *explain.Engine
	Prompts   *prompt.Builder

	// ChunkWindow and ChunkOverlap configure IngestDocument's chunker.
	// Zero values fall back to the chunker defaults.
	ChunkWindow  int
	ChunkOverlap int

	Logger *slog.Logger
}

// Service is the retrieval-augmented QA pipeline.
type Service struct {
	embedder  embeddings.Embedder
	generator llm.Generator
	vectors   vector.Driver
	retriever *Retriever
	prompts   *prompt.Builder
	filter    *filter.Filter
	scorer    *confidence.Scorer
	explainer *explain.Engine
	audits    audit.Store
	events    eventstream.Publisher

	chunkWindow  int
	chunkOverlap int

	logger *slog.Logger
}

// NewService assembles the pipeline from its collaborators.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Embedder == nil {
		return nil, fmt.Errorf("service requires an embedder")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("service requires a generator")
	}
	if opts.Vectors == nil {
		return nil, fmt.Errorf("service requires a vector driver")
	}

	log := logger.OrNop(opts.Logger)

	f := opts.Filter
	if f == nil {
		f = filter.New(filter.Config{})
	}
	scorer := opts.Scorer
	if scorer == nil {
		scorer = confidence.NewScorer(nil)
	}
	explainer := opts.Explainer
	if explainer == nil {
		explainer = explain.NewEngine(opts.Generator, explain.DefaultTopN, log)
	}
	prompts := opts.Prompts
	if prompts == nil {
		prompts = prompt.NewBuilder("")
	}
	audits := opts.Audits
	if audits == nil {
		return nil, fmt.Errorf("service requires an audit store")
	}
	events := opts.Events
	if events == nil {
		return nil, fmt.Errorf("service requires an event publisher (use the nop publisher to disable)")
	}

	window := opts.ChunkWindow
	overlap := opts.ChunkOverlap
	if window <= 0 {
		window = chunker.DefaultWindowSize
		if overlap <= 0 {
			overlap = chunker.DefaultOverlap
		}
	}
	if overlap < 0 || overlap >= window {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, window %d)", overlap, window)
	}

	return &Service{
		embedder:     opts.Embedder,
		generator:    opts.Generator,
		vectors:      opts.Vectors,
		retriever:    NewRetriever(opts.Embedder, opts.Vectors),
		prompts:      prompts,
		filter:       f,
		scorer:       scorer,
		explainer:    explainer,
		audits:       audits,
		events:       events,
		chunkWindow:  window,
		chunkOverlap: overlap,
		logger:       log,
	}, nil
}

// IngestDocument chunks raw document text and indexes every chunk.
// Returns the assigned chunk ids in order.
func (s *Service) IngestDocument(ctx context.Context, text string) ([]string, error) {
	chunks, err := chunker.Split(text, s.chunkWindow, s.chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}

	return s.IngestChunks(ctx, chunks)
}

// IngestChunks embeds and indexes pre-chunked text. All embeddings are
// computed before the index is touched, so an embedding failure leaves the
// index unchanged.
func (s *Service) IngestChunks(ctx context.Context, chunks []chunker.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	docs := make([]vector.Document, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		embedding, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %s: %w", c.ID, err)
		}
		docs = append(docs, vector.Document{ID: c.ID, Text: c.Text, Embedding: embedding})
		ids = append(ids, c.ID)
	}

	if err := s.vectors.Add(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	s.logger.Info("chunks ingested", "count", len(ids))

	return ids, nil
}

// Query runs the full pipeline for one question. Stages execute strictly
// in order; a query that fails injection detection terminates before any
// model call, and no audit record is written for a request that fails
// before the audit stage.
func (s *Service) Query(ctx context.Context, input QueryInput) (*QueryOutput, error) {
	// Injection detection inspects the raw text: sanitization strips the
	// very markers the detector keys on.
	if sanitize.DetectInjection(input.Text) {
		s.logger.Warn("query rejected", "reason", "injection pattern")
		return nil, ErrInjectionDetected
	}

	cleaned := sanitize.Clean(input.Text)
	if cleaned == "" {
		return nil, ErrEmptyQuery
	}
	inputHash := hashInput(cleaned)

	retrieved, err := s.retriever.Retrieve(ctx, cleaned, input.TopK)
	if err != nil {
		return nil, err
	}

	p := s.prompts.Build(cleaned, retrieved)

	generation, err := s.generator.Generate(ctx, p.Text, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	filtered, redaction := s.filter.Apply(generation.Text)

	scores := make([]float32, 0, len(retrieved))
	retrievedIDs := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		scores = append(scores, r.Score)
		retrievedIDs = append(retrievedIDs, r.Document.ID)
	}
	score := s.scorer.Score(generation.Logprobs, scores)

	var explanation *explain.Explanation
	if input.IncludeExplain {
		explanation, err = s.explainer.Explain(ctx, p, generation.Text, retrieved)
		if err != nil {
			return nil, fmt.Errorf("failed to explain answer: %w", err)
		}
	}

	record := &audit.Record{
		TS:               time.Now().UTC(),
		InputHash:        inputHash,
		PromptTemplate:   p.TemplateID,
		PromptText:       p.Text,
		RetrievedIDs:     retrievedIDs,
		ModelVersion:     generation.ModelVersion,
		RawResponse:      generation.Text,
		FilteredResponse: filtered,
		Confidence:       score,
		Explanation:      explanation,
		Redaction:        redaction,
	}
	auditID, err := s.audits.Log(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audit.ErrAudit, err)
	}

	event := eventstream.NewQueryAuditedEvent(auditID, inputHash)
	event.ModelVersion = generation.ModelVersion
	event.RetrievedIDs = retrievedIDs
	event.Confidence = score
	event.PolicyBlocked = redaction.PolicyBlocked()
	event.Explained = explanation != nil
	if err := s.events.PublishQueryAudited(ctx, event); err != nil {
		// The audit record is already durable; a publish failure is not a
		// query failure.
		s.logger.Error("failed to publish query event", "error", err, "audit_id", auditID)
	}

	s.logger.Info("query answered",
		"audit_id", auditID,
		"confidence", score,
		"retrieved", len(retrievedIDs),
		"explained", explanation != nil,
	)

	return &QueryOutput{
		Response:     filtered,
		Confidence:   score,
		Explanation:  explanation,
		ModelVersion: generation.ModelVersion,
		InputHash:    inputHash,
		AuditID:      auditID,
	}, nil
}

// IndexStats reports the size and dimension of the vector index.
type IndexStats struct {
	Documents  int `json:"documents"`
	Dimensions int `json:"dimensions"`
}

// IndexStats returns the current vector index size and dimension.
func (s *Service) IndexStats(ctx context.Context) (*IndexStats, error) {
	count, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	return &IndexStats{Documents: count, Dimensions: s.vectors.Dimensions()}, nil
}

// AuditTrail returns the audit records logged for a sanitized-input hash.
func (s *Service) AuditTrail(ctx context.Context, inputHash string) ([]*audit.Record, error) {
	return s.audits.ByInputHash(ctx, inputHash)
}

// Close releases the service's collaborators.
func (s *Service) Close() error {
	var firstErr error
	if err := s.embedder.Close(); err != nil {
		firstErr = err
	}
	if err := s.generator.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.vectors.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.audits.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.events.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// hashInput hashes sanitized query text for audit correlation.
func hashInput(cleaned string) string {
	sum := sha256.Sum256([]byte(cleaned))
	return hex.EncodeToString(sum[:])
}
