// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contractminer/contractminer/api"
	"github.com/contractminer/contractminer/pkg/config"
	"github.com/contractminer/contractminer/pkg/logger"
	ragutils "github.com/contractminer/contractminer/pkg/rag/utils"
)

const serveLongDesc string = `Run the Miner API server.

The server exposes document ingest, query, audit lookup, and index stats
endpoints. Configuration follows the precedence chain
flags > environment (MINER_*) > config.toml > defaults.

Examples:
  miner serve
  miner serve --listen :9090
  MINER_LLM_PROVIDER=openai miner serve`

const serveShortDesc string = "Run the Miner API server"

var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name: "listen", Shorthand: "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagAPIKey: {
		Name:        "api-key",
		ViperKey:    "api.key",
		Description: "API key required on /v1 routes (empty disables auth)",
	},
	config.FlagVectorProvider: {
		Name:        "vector-provider",
		ViperKey:    "storage.vector_provider",
		Description: "Vector index backend (auto, flat, sqlitevec)",
	},
	config.FlagVectorPath: {
		Name:        "vector-path",
		ViperKey:    "storage.vector_path",
		Description: "Path prefix for vector index artifacts",
	},
	config.FlagAuditProvider: {
		Name:        "audit-provider",
		ViperKey:    "storage.audit_provider",
		Description: "Audit store backend (sqlite, postgres, inmemory)",
	},
	config.FlagAuditPath: {
		Name:        "audit-path",
		ViperKey:    "storage.audit_path",
		Description: "SQLite database path for audit records",
	},
	config.FlagAuditConn: {
		Name:        "audit-conn",
		ViperKey:    "storage.audit_conn",
		Description: "PostgreSQL connection string for audit records",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider (ollama, openai)",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider base URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagLLMProvider: {
		Name:        "llm-provider",
		ViperKey:    "llm.provider",
		Description: "Completion provider (ollama, openai)",
	},
	config.FlagLLMTarget: {
		Name:        "llm-target",
		ViperKey:    "llm.target",
		Description: "Completion provider base URL",
	},
	config.FlagLLMModel: {
		Name:        "llm-model",
		ViperKey:    "llm.model",
		Description: "Completion model name",
	},
}

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagAPIKey,
	config.FlagVectorProvider,
	config.FlagVectorPath,
	config.FlagAuditProvider,
	config.FlagAuditPath,
	config.FlagAuditConn,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagLLMProvider,
	config.FlagLLMTarget,
	config.FlagLLMModel,
}

type ServeCommander struct {
	listen         string
	apiKey         string
	vectorProvider string
	vectorPath     string
	auditProvider  string
	auditPath      string
	auditConn      string
	embeddingProv  string
	embeddingTgt   string
	embeddingModel string
	llmProvider    string
	llmTarget      string
	llmModel       string

	debug     bool
	configDir string
	cfg       *config.Config
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %w", err)
			}

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.cfg = config.FromViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorProvider, &cmder.vectorProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorPath, &cmder.vectorPath)
	config.AddStringFlag(cmd, serveFlags, config.FlagAuditProvider, &cmder.auditProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagAuditPath, &cmder.auditPath)
	config.AddStringFlag(cmd, serveFlags, config.FlagAuditConn, &cmder.auditConn)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddStringFlag(cmd, serveFlags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagLLMTarget, &cmder.llmTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagLLMModel, &cmder.llmModel)

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	log := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
	)

	service, err := ragutils.NewService(cmd.Context(), &ragutils.NewServiceOpts{
		Config:          c.cfg,
		ConfigDir:       c.configDir,
		EmbeddingAPIKey: os.Getenv("MINER_EMBEDDING_API_KEY"),
		LLMAPIKey:       os.Getenv("MINER_LLM_API_KEY"),
		Logger:          log,
	})
	if err != nil {
		return fmt.Errorf("building service: %w", err)
	}
	defer service.Close()

	server := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
		Key:        c.cfg.API.Key,
		RateLimit:  c.cfg.API.RateLimit,
	}, service, log)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("api server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
