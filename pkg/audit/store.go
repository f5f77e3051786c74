package audit

import "context"

// Store persists audit records. Implementations must assign strictly
// increasing ids even under concurrent writers.
type Store interface {
	// Log appends one record and returns its assigned id. The passed
	// record is not mutated.
	Log(ctx context.Context, record *Record) (int64, error)

	// ByInputHash returns all records logged for the given sanitized-input
	// hash, in id order.
	ByInputHash(ctx context.Context, inputHash string) ([]*Record, error)

	// Close releases store resources.
	Close() error
}
