package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/contractminer/contractminer/pkg/audit"
	"github.com/contractminer/contractminer/pkg/chunker"
	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/rag"
	"github.com/contractminer/contractminer/pkg/vector"
)

// ErrorResponse is the JSON error body for all failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IngestRequest carries either raw document text to be chunked, or
// pre-chunked text. Exactly one of Text and Chunks must be set.
type IngestRequest struct {
	Text   string        `json:"text"`
	Chunks []IngestChunk `json:"chunks" validate:"omitempty,dive"`
}

// IngestChunk is one pre-chunked piece of document text.
type IngestChunk struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// IngestResponse lists the indexed chunk ids in order.
type IngestResponse struct {
	ChunkIDs []string `json:"chunk_ids"`
}

// QueryRequest is one question against the indexed corpus.
type QueryRequest struct {
	Text           string `json:"text" validate:"required"`
	TopK           int    `json:"top_k" validate:"omitempty,min=1,max=100"`
	IncludeExplain bool   `json:"include_explain"`
}

// AuditTrailResponse wraps the audit records for one input hash.
type AuditTrailResponse struct {
	Count   int             `json:"count"`
	Records []*audit.Record `json:"records"`
}

// IndexStatsResponse reports vector index size and dimension.
type IndexStatsResponse struct {
	Documents  int `json:"documents"`
	Dimensions int `json:"dimensions"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleIngest chunks (if needed), embeds, and indexes document text.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if (req.Text == "") == (len(req.Chunks) == 0) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "exactly one of text or chunks is required"})
	}

	var (
		ids []string
		err error
	)
	if req.Text != "" {
		ids, err = s.service.IngestDocument(c.Context(), req.Text)
	} else {
		chunks := make([]chunker.Chunk, 0, len(req.Chunks))
		for _, ch := range req.Chunks {
			chunks = append(chunks, chunker.Chunk{ID: ch.ID, Text: ch.Text})
		}
		ids, err = s.service.IngestChunks(c.Context(), chunks)
	}
	if err != nil {
		return s.errorStatus(c, err)
	}

	return c.JSON(IngestResponse{ChunkIDs: ids})
}

// handleQuery runs the full pipeline for one question.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	out, err := s.service.Query(c.Context(), rag.QueryInput{
		Text:           req.Text,
		TopK:           req.TopK,
		IncludeExplain: req.IncludeExplain,
	})
	if err != nil {
		return s.errorStatus(c, err)
	}

	return c.JSON(out)
}

// handleAuditTrail returns the audit records for an input hash.
func (s *Server) handleAuditTrail(c *fiber.Ctx) error {
	inputHash := c.Query("input_hash")
	if inputHash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "input_hash parameter required"})
	}

	records, err := s.service.AuditTrail(c.Context(), inputHash)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load audit records"})
	}
	if records == nil {
		records = []*audit.Record{}
	}

	return c.JSON(AuditTrailResponse{Count: len(records), Records: records})
}

// handleIndexStats reports the size of the vector index.
func (s *Server) handleIndexStats(c *fiber.Ctx) error {
	stats, err := s.service.IndexStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to read index stats"})
	}
	return c.JSON(IndexStatsResponse{Documents: stats.Documents, Dimensions: stats.Dimensions})
}

// errorStatus maps pipeline errors to HTTP statuses. Rejections the caller
// can fix are 400s; upstream provider failures are 503s.
func (s *Server) errorStatus(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, rag.ErrInjectionDetected):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query rejected: prompt injection detected"})

	case errors.Is(err, rag.ErrEmptyQuery):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query text is empty after sanitization"})

	case errors.Is(err, vector.ErrDimensionMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, vector.ErrEmbedding), errors.Is(err, llm.ErrGeneration):
		s.logger.Error("provider call failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "model provider unavailable"})

	default:
		s.logger.Error("request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}
}
