// Package postgres provides a PostgreSQL-backed audit store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx PostgreSQL driver as "pgx"

	"github.com/contractminer/contractminer/pkg/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id BIGSERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL,
	input_hash TEXT NOT NULL,
	payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_input_hash ON audit_records(input_hash);
`

// Store implements audit.Store on PostgreSQL. BIGSERIAL assignment keeps
// ids strictly increasing under concurrent writers.
type Store struct {
	db *sql.DB
}

// NewStore connects to PostgreSQL and ensures the audit schema exists.
// connStr accepts either keyword form or a postgres:// URI.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Log appends one record and returns the store-assigned id.
func (s *Store) Log(ctx context.Context, record *audit.Record) (int64, error) {
	if record == nil {
		return 0, fmt.Errorf("%w: nil record", audit.ErrAudit)
	}

	stored := *record
	if stored.TS.IsZero() {
		stored.TS = time.Now().UTC()
	}
	stored.ID = 0

	payload, err := json.Marshal(&stored)
	if err != nil {
		return 0, fmt.Errorf("%w: encode payload: %v", audit.ErrAudit, err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		"INSERT INTO audit_records (ts, input_hash, payload) VALUES ($1, $2, $3) RETURNING id",
		stored.TS, stored.InputHash, payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %v", audit.ErrAudit, err)
	}

	return id, nil
}

// ByInputHash returns all records for the hash in id order.
func (s *Store) ByInputHash(ctx context.Context, inputHash string) ([]*audit.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM audit_records WHERE input_hash = $1 ORDER BY id",
		inputHash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var (
			id      int64
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		var record audit.Record
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to decode payload for record %d: %w", id, err)
		}
		record.ID = id
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ audit.Store = (*Store)(nil)
