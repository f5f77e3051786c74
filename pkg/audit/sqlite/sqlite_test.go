package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/contractminer/contractminer/pkg/audit"
	"github.com/contractminer/contractminer/pkg/audit/sqlite"
	"github.com/contractminer/contractminer/pkg/explain"
	"github.com/contractminer/contractminer/pkg/filter"
)

var _ = Describe("Store", func() {
	var (
		store *sqlite.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = sqlite.NewStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	It("creates the database file on disk", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "audit.db")

		s, err := sqlite.NewStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = s.Log(ctx, &audit.Record{InputHash: "h"})
		Expect(err).NotTo(HaveOccurred())

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("assigns strictly increasing ids", func() {
		first, err := store.Log(ctx, &audit.Record{InputHash: "h1"})
		Expect(err).NotTo(HaveOccurred())
		second, err := store.Log(ctx, &audit.Record{InputHash: "h2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeNumerically(">", first))
	})

	It("round-trips the full record payload", func() {
		record := &audit.Record{
			TS:               time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			InputHash:        "abc123",
			PromptTemplate:   "rag_answer_v1",
			PromptText:       "SYSTEM: ...",
			RetrievedIDs:     []string{"chunk-0", "chunk-2"},
			ModelVersion:     "test-model",
			RawResponse:      "raw a@b.com",
			FilteredResponse: "raw [REDACTED_EMAIL]",
			Confidence:       0.74,
			Explanation: &explain.Explanation{
				TokenImportance: []explain.TokenImportance{{Token: "raw", Delta: 0.3}},
				Provenance:      []string{"chunk-0", "chunk-2"},
			},
			Redaction: filter.Redaction{
				Redactions: []filter.Entry{{Type: filter.TypeEmail, Matches: []string{"a@b.com"}}},
			},
		}

		id, err := store.Log(ctx, record)
		Expect(err).NotTo(HaveOccurred())

		records, err := store.ByInputHash(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))

		got := records[0]
		Expect(got.ID).To(Equal(id))
		Expect(got.TS).To(BeTemporally("==", record.TS))
		Expect(got.PromptTemplate).To(Equal(record.PromptTemplate))
		Expect(got.RetrievedIDs).To(Equal(record.RetrievedIDs))
		Expect(got.Confidence).To(Equal(record.Confidence))
		Expect(got.Explanation.TokenImportance).To(Equal(record.Explanation.TokenImportance))
		Expect(got.Redaction.Redactions).To(Equal(record.Redaction.Redactions))
	})

	It("keeps multiple records per hash in id order", func() {
		for _, resp := range []string{"a", "b", "c"} {
			_, err := store.Log(ctx, &audit.Record{InputHash: "dup", RawResponse: resp})
			Expect(err).NotTo(HaveOccurred())
		}

		records, err := store.ByInputHash(ctx, "dup")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].RawResponse).To(Equal("a"))
		Expect(records[2].RawResponse).To(Equal("c"))
	})

	It("returns nothing for an unknown hash", func() {
		records, err := store.ByInputHash(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("wraps insert failures with the audit sentinel", func() {
		_, err := store.Log(ctx, nil)
		Expect(err).To(MatchError(audit.ErrAudit))
	})
})
