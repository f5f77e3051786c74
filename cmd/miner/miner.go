// Package minercmder
package minercmder

import (
	"github.com/spf13/cobra"

	auditcmder "github.com/contractminer/contractminer/cmd/miner/audit"
	configcmder "github.com/contractminer/contractminer/cmd/miner/config"
	ingestcmder "github.com/contractminer/contractminer/cmd/miner/ingest"
	querycmder "github.com/contractminer/contractminer/cmd/miner/query"
	servecmder "github.com/contractminer/contractminer/cmd/miner/serve"
	versioncmder "github.com/contractminer/contractminer/cmd/version"
)

const minerLongDesc string = `Miner is a retrieval-augmented question answering service for contract
and document corpora, with per-query confidence scores, token-level
explanations, and an append-only audit trail.

Typical usage:
  miner ingest contract.txt     Index a document
  miner query "..."             Ask a question against the index
  miner serve                   Run the HTTP API server`

const minerShortDesc string = "Miner - Audited retrieval-augmented QA"

func NewMinerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "miner",
		Short: minerShortDesc,
		Long:  minerLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .miner/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(auditcmder.NewAuditCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
