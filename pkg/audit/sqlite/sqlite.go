// Package sqlite provides a SQLite-backed audit store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/contractminer/contractminer/pkg/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	input_hash TEXT NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_input_hash ON audit_records(input_hash);
`

// Store implements audit.Store on SQLite. AUTOINCREMENT keeps ids strictly
// increasing even after deletes outside this system.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the audit database at dbPath. ":memory:" is
// accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
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

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_records (ts, input_hash, payload) VALUES (?, ?, ?)",
		stored.TS.Format(time.RFC3339Nano), stored.InputHash, string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %v", audit.ErrAudit, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", audit.ErrAudit, err)
	}

	return id, nil
}

// ByInputHash returns all records for the hash in id order.
func (s *Store) ByInputHash(ctx context.Context, inputHash string) ([]*audit.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM audit_records WHERE input_hash = ? ORDER BY id",
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
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		var record audit.Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
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
