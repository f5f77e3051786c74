// Package eventstream defines transport-neutral events emitted after a
// query is audited, plus the publisher contract for shipping them.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeQueryAudited is emitted after a query's audit record is
	// durably logged.
	EventTypeQueryAudited = "miner.query.audited"
)

// QueryAuditedEvent is the payload published for one audited query. It
// carries identifiers and derived metrics, never raw responses: the audit
// store is the system of record for content.
type QueryAuditedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// AuditID is the store-assigned audit record id.
	AuditID int64 `json:"audit_id"`

	// InputHash is the content hash of the sanitized query text, the
	// correlation key back into the audit store.
	InputHash string `json:"input_hash"`

	ModelVersion  string   `json:"model_version"`
	RetrievedIDs  []string `json:"retrieved_ids"`
	Confidence    float64  `json:"confidence"`
	PolicyBlocked bool     `json:"policy_blocked"`
	Explained     bool     `json:"explained"`
}

// NewQueryAuditedEvent stamps a fresh event with id, type, schema version
// and emission time.
func NewQueryAuditedEvent(auditID int64, inputHash string) *QueryAuditedEvent {
	return &QueryAuditedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeQueryAudited,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		AuditID:       auditID,
		InputHash:     inputHash,
	}
}
