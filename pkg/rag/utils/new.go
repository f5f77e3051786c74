// Package ragutils assembles a full pipeline service from configuration.
package ragutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contractminer/contractminer/pkg/audit"
	auditutils "github.com/contractminer/contractminer/pkg/audit/utils"
	"github.com/contractminer/contractminer/pkg/config"
	"github.com/contractminer/contractminer/pkg/confidence"
	"github.com/contractminer/contractminer/pkg/dotdir"
	embeddingutils "github.com/contractminer/contractminer/pkg/embeddings/utils"
	"github.com/contractminer/contractminer/pkg/eventstream"
	"github.com/contractminer/contractminer/pkg/eventstream/kafka"
	"github.com/contractminer/contractminer/pkg/eventstream/nop"
	"github.com/contractminer/contractminer/pkg/explain"
	"github.com/contractminer/contractminer/pkg/filter"
	llmutils "github.com/contractminer/contractminer/pkg/llm/utils"
	"github.com/contractminer/contractminer/pkg/rag"
	vectorutils "github.com/contractminer/contractminer/pkg/vector/utils"
)

// NewServiceOpts carries configuration and environment for NewService.
type NewServiceOpts struct {
	Config *config.Config

	// ConfigDir overrides dotdir resolution for default artifact paths.
	ConfigDir string

	// EmbeddingAPIKey and LLMAPIKey are provider credentials, typically
	// from MINER_EMBEDDING_API_KEY / MINER_LLM_API_KEY or a .env file.
	EmbeddingAPIKey string
	LLMAPIKey       string

	Logger *slog.Logger
}

// NewService builds the embedder, generator, vector driver, audit store,
// and event publisher from config, then wires them into a rag.Service.
func NewService(ctx context.Context, opts *NewServiceOpts) (*rag.Service, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	dataDir, err := dotdir.NewManager().Target(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	vectorPath := cfg.Storage.VectorPath
	if vectorPath == "" {
		vectorPath = filepath.Join(dataDir, "index")
	}
	if err := os.MkdirAll(filepath.Dir(vectorPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       opts.EmbeddingAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: cfg.LLM.Provider,
		TargetURL:    cfg.LLM.Target,
		Model:        cfg.LLM.Model,
		APIKey:       opts.LLMAPIKey,
		MaxTokens:    cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	vectors, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		Provider:   cfg.Storage.VectorProvider,
		Path:       vectorPath,
		Dimensions: int(cfg.Embedding.Dimensions),
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	audits, err := newAuditStore(ctx, cfg, dataDir)
	if err != nil {
		return nil, fmt.Errorf("creating audit store: %w", err)
	}

	events, err := newPublisher(cfg, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	return rag.NewService(rag.ServiceOptions{
		Embedder:  embedder,
		Generator: generator,
		Vectors:   vectors,
		Audits:    audits,
		Events:    events,
		Filter: filter.New(filter.Config{
			PolicyKeyword: cfg.Filter.PolicyKeyword,
			PolicyMaxLen:  cfg.Filter.PolicyMaxLen,
		}),
		Scorer:       confidence.NewScorer(nil),
		Explainer:    explain.NewEngine(generator, cfg.Explain.TopN, opts.Logger),
		ChunkWindow:  cfg.Chunking.Window,
		ChunkOverlap: cfg.Chunking.Overlap,
		Logger:       opts.Logger,
	})
}

func newAuditStore(ctx context.Context, cfg *config.Config, dataDir string) (audit.Store, error) {
	auditPath := cfg.Storage.AuditPath
	if auditPath == "" {
		auditPath = filepath.Join(dataDir, "audit.db")
	}

	return auditutils.NewAuditStore(ctx, auditutils.NewStoreOptions{
		Provider: cfg.Storage.AuditProvider,
		Path:     auditPath,
		ConnStr:  cfg.Storage.AuditConn,
	})
}

func newPublisher(cfg *config.Config, log *slog.Logger) (eventstream.Publisher, error) {
	if !cfg.Events.Enabled || len(cfg.Events.Brokers) == 0 {
		return nop.NewPublisher(), nil
	}

	return kafka.NewPublisher(kafka.Config{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
		Logger:  log,
	})
}
