package prompt_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/contractminer/contractminer/pkg/prompt"
	"github.com/contractminer/contractminer/pkg/vector"
)

var _ = Describe("Builder", func() {
	var builder *prompt.Builder

	chunks := []vector.QueryResult{
		{Document: vector.Document{ID: "chunk-0", Text: "Clause 1 covers termination."}, Score: 0.9},
		{Document: vector.Document{ID: "chunk-1", Text: "Clause 2 covers renewal."}, Score: 0.7},
	}

	BeforeEach(func() {
		builder = prompt.NewBuilder("You answer contract questions.")
	})

	It("tags the prompt with the template id", func() {
		p := builder.Build("What about renewal?", chunks)
		Expect(p.TemplateID).To(Equal(prompt.TemplateID))
	})

	It("includes the system block first", func() {
		p := builder.Build("What about renewal?", chunks)
		Expect(strings.HasPrefix(p.Text, "SYSTEM: You answer contract questions.")).To(BeTrue())
	})

	It("renders each chunk as [id] followed by its text", func() {
		p := builder.Build("What about renewal?", chunks)
		Expect(p.Text).To(ContainSubstring("[chunk-0]\nClause 1 covers termination."))
		Expect(p.Text).To(ContainSubstring("[chunk-1]\nClause 2 covers renewal."))
	})

	It("separates chunks with the fixed delimiter", func() {
		p := builder.Build("What about renewal?", chunks)
		Expect(p.Text).To(ContainSubstring("Clause 1 covers termination.\n\n---\n\n[chunk-1]"))
	})

	It("includes the user question and closing instructions", func() {
		p := builder.Build("What about renewal?", chunks)
		Expect(p.Text).To(ContainSubstring("USER QUESTION: What about renewal?"))
		Expect(p.Text).To(ContainSubstring("Insufficient context"))
	})

	It("is deterministic for identical input", func() {
		a := builder.Build("q", chunks)
		b := builder.Build("q", chunks)
		Expect(a).To(Equal(b))
	})

	It("falls back to the default system instructions", func() {
		p := prompt.NewBuilder("").Build("q", nil)
		Expect(p.Text).To(ContainSubstring(prompt.DefaultSystemInstructions))
	})
})
