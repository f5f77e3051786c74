// Package ingestcmder provides the ingest command for indexing documents.
package ingestcmder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/contractminer/contractminer/pkg/cliui"
	"github.com/contractminer/contractminer/pkg/config"
	"github.com/contractminer/contractminer/pkg/logger"
	ragutils "github.com/contractminer/contractminer/pkg/rag/utils"
)

const ingestLongDesc string = `Chunk and index a document into the vector store.

Reads the document from the given file path, or from stdin when the
path is "-". The document is split into overlapping character windows
and each chunk is embedded and added to the index.

Examples:
  miner ingest contract.txt
  cat contract.txt | miner ingest -
  miner ingest --chunk-window 500 --chunk-overlap 100 contract.txt`

const ingestShortDesc string = "Chunk and index a document"

var ingestFlags = config.FlagSet{
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
	config.FlagChunkWindow: {
		Name:        "chunk-window",
		ViperKey:    "chunking.window",
		Description: "Chunk window size in characters",
	},
	config.FlagChunkOverlap: {
		Name:        "chunk-overlap",
		ViperKey:    "chunking.overlap",
		Description: "Overlap between consecutive chunks in characters",
	},
}

var ingestFlagKeys = []string{
	config.FlagVectorProvider,
	config.FlagVectorPath,
	config.FlagChunkWindow,
	config.FlagChunkOverlap,
}

type IngestCommander struct {
	vectorProvider string
	vectorPath     string
	chunkWindow    int
	chunkOverlap   int

	debug     bool
	configDir string
	cfg       *config.Config
}

func NewIngestCmd() *cobra.Command {
	cmder := &IngestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
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
			config.BindRegisteredFlags(v, cmd, ingestFlags, ingestFlagKeys)
			cmder.cfg = config.FromViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	config.AddStringFlag(cmd, ingestFlags, config.FlagVectorProvider, &cmder.vectorProvider)
	config.AddStringFlag(cmd, ingestFlags, config.FlagVectorPath, &cmder.vectorPath)
	config.AddIntFlag(cmd, ingestFlags, config.FlagChunkWindow, &cmder.chunkWindow)
	config.AddIntFlag(cmd, ingestFlags, config.FlagChunkOverlap, &cmder.chunkOverlap)

	return cmd
}

func (c *IngestCommander) run(cmd *cobra.Command, path string) error {
	text, err := readDocument(path)
	if err != nil {
		return err
	}

	log := logger.New(logger.WithDebug(c.debug))

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

	var ids []string
	err = cliui.Step(cmd.OutOrStdout(), "Embedding and indexing chunks", func() error {
		var stepErr error
		ids, stepErr = service.IngestDocument(cmd.Context(), text)
		return stepErr
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Indexed:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d chunks", len(ids))),
	)
	for _, id := range ids {
		fmt.Fprintf(out, "    %s\n", cliui.DimStyle.Render(id))
	}

	return nil
}

func readDocument(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
