// Package inmemory provides a non-durable audit store for tests and
// local development.
package inmemory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/contractminer/contractminer/pkg/audit"
)

// Store implements audit.Store with an in-memory append log.
type Store struct {
	// mu guards records and nextID. Log holds the write lock for the whole
	// append so id order matches record order.
	mu      sync.RWMutex
	records []*audit.Record
	nextID  int64
}

// NewStore creates an empty in-memory audit store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Log appends a copy of the record and returns the assigned id.
func (s *Store) Log(_ context.Context, record *audit.Record) (int64, error) {
	if record == nil {
		return 0, errors.New("cannot log nil record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.ID = s.nextID
	if stored.TS.IsZero() {
		stored.TS = time.Now().UTC()
	}
	s.nextID++
	s.records = append(s.records, &stored)

	return stored.ID, nil
}

// ByInputHash returns all records for the hash in id order.
func (s *Store) ByInputHash(_ context.Context, inputHash string) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*audit.Record
	for _, r := range s.records {
		if r.InputHash == inputHash {
			copied := *r
			result = append(result, &copied)
		}
	}

	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

var _ audit.Store = (*Store)(nil)
