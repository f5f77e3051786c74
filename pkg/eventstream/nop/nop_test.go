package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/contractminer/contractminer/pkg/eventstream"
	"github.com/contractminer/contractminer/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("creates a non-nil publisher", func() {
		p := nop.NewPublisher()
		Expect(p).NotTo(BeNil())
	})

	It("returns ErrNilQueryEvent for nil events", func() {
		p := nop.NewPublisher()
		err := p.PublishQueryAudited(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilQueryEvent))
	})

	It("succeeds for non-nil events", func() {
		p := nop.NewPublisher()
		err := p.PublishQueryAudited(context.Background(), &eventstream.QueryAuditedEvent{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("closes successfully", func() {
		p := nop.NewPublisher()
		Expect(p.Close()).To(Succeed())
	})
})
