// Package querycmder provides the query command for one-shot questions.
package querycmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contractminer/contractminer/pkg/cliui"
	"github.com/contractminer/contractminer/pkg/config"
	"github.com/contractminer/contractminer/pkg/logger"
	"github.com/contractminer/contractminer/pkg/rag"
	ragutils "github.com/contractminer/contractminer/pkg/rag/utils"
)

const queryLongDesc string = `Ask a question against the indexed corpus.

Retrieves the most relevant chunks, generates an answer grounded in
them, and prints the filtered response together with its confidence
score and audit record id. Pass --explain to include token importance
rankings for the answer.

Examples:
  miner query "What is the termination clause notice period?"
  miner query --top-k 10 --explain "Who are the parties to this agreement?"`

const queryShortDesc string = "Ask a question against the index"

type QueryCommander struct {
	topK    int
	explain bool

	debug     bool
	configDir string
	cfg       *config.Config
}

func NewQueryCmd() *cobra.Command {
	cmder := &QueryCommander{}

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: queryShortDesc,
		Long:  queryLongDesc,
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

	cmd.Flags().IntVarP(&cmder.topK, "top-k", "k", rag.DefaultTopK, "Number of chunks to retrieve")
	cmd.Flags().BoolVarP(&cmder.explain, "explain", "e", false, "Include token importance rankings")

	return cmd
}

func (c *QueryCommander) run(cmd *cobra.Command, question string) error {
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

	var result *rag.QueryOutput
	err = cliui.Step(cmd.OutOrStdout(), "Retrieving and generating", func() error {
		var stepErr error
		result, stepErr = service.Query(cmd.Context(), rag.QueryInput{
			Text:           question,
			TopK:           c.topK,
			IncludeExplain: c.explain,
		})
		return stepErr
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n\n", cliui.ValueStyle.Render(result.Response))
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Confidence:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%.3f", result.Confidence)),
	)
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.ValueStyle.Render(result.ModelVersion),
	)
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Audit ID:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d", result.AuditID)),
	)
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Input hash:"),
		cliui.DimStyle.Render(result.InputHash),
	)

	if result.Explanation != nil {
		fmt.Fprintf(out, "\n  %s\n", cliui.KeyStyle.Render("Token importance:"))
		for _, ti := range result.Explanation.TokenImportance {
			fmt.Fprintf(out, "    %s %s\n",
				cliui.ValueStyle.Render(ti.Token),
				cliui.DimStyle.Render(fmt.Sprintf("%+.4f", ti.Delta)),
			)
		}
		if len(result.Explanation.Provenance) > 0 {
			fmt.Fprintf(out, "\n  %s\n", cliui.KeyStyle.Render("Provenance:"))
			for _, id := range result.Explanation.Provenance {
				fmt.Fprintf(out, "    %s\n", cliui.DimStyle.Render(id))
			}
		}
	}

	return nil
}
