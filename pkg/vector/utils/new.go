// Package vectorutils constructs the vector driver selected for this
// process. Backend choice is a startup decision driven by configuration and
// availability, never by individual callers.
package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/contractminer/contractminer/pkg/vector"
	"github.com/contractminer/contractminer/pkg/vector/flat"
	"github.com/contractminer/contractminer/pkg/vector/sqlitevec"
)

// Provider names accepted by NewVectorDriver.
const (
	ProviderAuto      = "auto"
	ProviderFlat      = "flat"
	ProviderSQLiteVec = "sqlitevec"
)

type NewVectorDriverOpts struct {
	// Provider selects the backend: "flat", "sqlitevec", or "auto" to try
	// sqlite-vec and fall back to the flat backend when unavailable.
	Provider string

	// Path is the artifact path prefix for the flat backend, or the
	// database path for the sqlite-vec backend.
	Path string

	// Dimensions is required by the sqlite-vec backend; the flat backend
	// infers it from the first add.
	Dimensions int

	Logger *slog.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.Provider {
	case ProviderFlat:
		return flat.NewFlatDriver(flat.Config{Path: o.Path}, o.Logger)
	case ProviderSQLiteVec:
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.Path + ".db",
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderAuto, "":
		driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.Path + ".db",
			Dimensions: o.Dimensions,
		}, o.Logger)
		if err == nil {
			return driver, nil
		}
		if o.Logger != nil {
			o.Logger.Warn("sqlite-vec unavailable, falling back to flat backend", "error", err)
		}
		return flat.NewFlatDriver(flat.Config{Path: o.Path}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.Provider)
	}
}
