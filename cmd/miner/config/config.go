// Package configcmder provides the config command for managing persistent
// miner configuration stored in the .miner/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent miner configuration.

Configuration is stored as config.toml in the .miner/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.vector_provider, storage.vector_path,
  storage.audit_provider, storage.audit_path, storage.audit_conn,
  api.listen, api.key, api.rate_limit,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model, llm.max_tokens,
  events.enabled, events.topic,
  chunking.window, chunking.overlap,
  filter.policy_keyword, filter.policy_max_len,
  explain.top_n

Use subcommands to get, set, or list configuration values:
  miner config set <key> <value>    Set a configuration value
  miner config get <key>            Get a configuration value
  miner config list                 List all configuration values

Examples:
  miner config set llm.model llama3.2
  miner config set embedding.dimensions 768
  miner config get storage.audit_provider
  miner config list`

const configShortDesc string = "Manage persistent miner configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
