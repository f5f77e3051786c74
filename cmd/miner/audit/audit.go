// Package auditcmder provides the audit command for inspecting the audit trail.
package auditcmder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contractminer/contractminer/pkg/cliui"
	"github.com/contractminer/contractminer/pkg/config"
	"github.com/contractminer/contractminer/pkg/logger"
	ragutils "github.com/contractminer/contractminer/pkg/rag/utils"
)

const auditLongDesc string = `Look up audit records by input hash.

Every successful query writes an append-only audit record keyed by the
SHA-256 hash of the sanitized input. This command prints all records
for a given hash, oldest first. The hash for a query is printed by
"miner query" and returned in the API response.

Examples:
  miner audit 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
  miner audit --json 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08`

const auditShortDesc string = "Look up audit records by input hash"

type AuditCommander struct {
	jsonOut bool

	debug     bool
	configDir string
	cfg       *config.Config
}

func NewAuditCmd() *cobra.Command {
	cmder := &AuditCommander{}

	cmd := &cobra.Command{
		Use:   "audit <input-hash>",
		Short: auditShortDesc,
		Long:  auditLongDesc,
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
			cmder.cfg = config.FromViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print records as JSON")

	return cmd
}

func (c *AuditCommander) run(cmd *cobra.Command, inputHash string) error {
	log := logger.New(logger.WithDebug(c.debug))

	service, err := ragutils.NewService(cmd.Context(), &ragutils.NewServiceOpts{
		Config:    c.cfg,
		ConfigDir: c.configDir,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("building service: %w", err)
	}
	defer service.Close()

	records, err := service.AuditTrail(cmd.Context(), inputHash)
	if err != nil {
		return fmt.Errorf("looking up audit trail: %w", err)
	}

	out := cmd.OutOrStdout()

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "%s\n", cliui.DimStyle.Render("no audit records for this hash"))
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("#%d", rec.ID)),
			cliui.DimStyle.Render(rec.TS.Format(time.RFC3339)),
		)
		fmt.Fprintf(out, "  %s %s\n",
			cliui.KeyStyle.Render("Model:"),
			cliui.ValueStyle.Render(rec.ModelVersion),
		)
		fmt.Fprintf(out, "  %s %s\n",
			cliui.KeyStyle.Render("Confidence:"),
			cliui.ValueStyle.Render(fmt.Sprintf("%.3f", rec.Confidence)),
		)
		fmt.Fprintf(out, "  %s %s\n",
			cliui.KeyStyle.Render("Retrieved:"),
			cliui.ValueStyle.Render(fmt.Sprintf("%d chunks", len(rec.RetrievedIDs))),
		)
		if len(rec.Redaction.Redactions) > 0 {
			fmt.Fprintf(out, "  %s %s\n",
				cliui.KeyStyle.Render("Redactions:"),
				cliui.ValueStyle.Render(fmt.Sprintf("%d", len(rec.Redaction.Redactions))),
			)
		}
		fmt.Fprintf(out, "  %s %s\n",
			cliui.KeyStyle.Render("Response:"),
			cliui.ValueStyle.Render(rec.FilteredResponse),
		)
		fmt.Fprintln(out)
	}

	return nil
}
