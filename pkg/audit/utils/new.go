// Package auditutils constructs audit stores from configuration.
package auditutils

import (
	"context"
	"fmt"

	"github.com/contractminer/contractminer/pkg/audit"
	"github.com/contractminer/contractminer/pkg/audit/inmemory"
	"github.com/contractminer/contractminer/pkg/audit/postgres"
	"github.com/contractminer/contractminer/pkg/audit/sqlite"
)

// Supported audit store providers.
const (
	ProviderInMemory = "inmemory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
)

// NewStoreOptions selects and configures an audit store backend.
type NewStoreOptions struct {
	// Provider is one of the Provider constants.
	Provider string

	// Path is the database file path for the sqlite provider.
	Path string

	// ConnStr is the connection string for the postgres provider.
	ConnStr string
}

// NewAuditStore creates the audit store for the given provider.
func NewAuditStore(ctx context.Context, opts NewStoreOptions) (audit.Store, error) {
	switch opts.Provider {
	case ProviderInMemory, "":
		return inmemory.NewStore(), nil

	case ProviderSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite audit store requires a path")
		}
		return sqlite.NewStore(opts.Path)

	case ProviderPostgres:
		if opts.ConnStr == "" {
			return nil, fmt.Errorf("postgres audit store requires a connection string")
		}
		return postgres.NewStore(ctx, opts.ConnStr)

	default:
		return nil, fmt.Errorf("unknown audit store provider: %q", opts.Provider)
	}
}
