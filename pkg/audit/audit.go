// Package audit defines the append-only query audit contract.
//
// Every completed query produces exactly one Record. Stores assign
// strictly increasing identifiers and expose lookup by input hash only.
// There is no update or delete operation in the contract.
package audit

import (
	"time"

	"github.com/contractminer/contractminer/pkg/explain"
	"github.com/contractminer/contractminer/pkg/filter"
)

// Record captures the full lifecycle of one query. Immutable once logged.
type Record struct {
	// ID is assigned by the store on Log. Zero until then.
	ID int64 `json:"id"`

	TS time.Time `json:"ts"`

	// InputHash is the content hash of the sanitized input text.
	InputHash string `json:"input_hash"`

	PromptTemplate string   `json:"prompt_template"`
	PromptText     string   `json:"prompt_text"`
	RetrievedIDs   []string `json:"retrieved_ids"`

	ModelVersion     string  `json:"model_version"`
	RawResponse      string  `json:"raw_response"`
	FilteredResponse string  `json:"filtered_response"`
	Confidence       float64 `json:"confidence"`

	Explanation *explain.Explanation `json:"explanation,omitempty"`
	Redaction   filter.Redaction     `json:"redaction"`
}
