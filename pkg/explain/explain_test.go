package explain_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/contractminer/contractminer/pkg/explain"
	"github.com/contractminer/contractminer/pkg/llm"
	"github.com/contractminer/contractminer/pkg/prompt"
	"github.com/contractminer/contractminer/pkg/vector"
)

// scriptedGenerator returns canned logprobs per call, recording prompts.
type scriptedGenerator struct {
	logprobs [][]float64
	prompts  []string
	err      error
}

func (g *scriptedGenerator) Generate(_ context.Context, promptText string, _ bool) (*llm.Generation, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.prompts = append(g.prompts, promptText)
	call := len(g.prompts) - 1
	var lps []float64
	if call < len(g.logprobs) {
		lps = g.logprobs[call]
	}
	return &llm.Generation{Text: "ok", ModelVersion: "test-model", Logprobs: lps}, nil
}

func (g *scriptedGenerator) Close() error { return nil }

var _ = Describe("Engine", func() {
	var (
		gen       *scriptedGenerator
		retrieved []vector.QueryResult
		p         prompt.Prompt
	)

	BeforeEach(func() {
		gen = &scriptedGenerator{}
		retrieved = []vector.QueryResult{
			{Document: vector.Document{ID: "chunk-0", Text: "alpha"}, Score: 0.9},
			{Document: vector.Document{ID: "chunk-1", Text: "beta"}, Score: 0.5},
		}
		p = prompt.Prompt{TemplateID: prompt.TemplateID, Text: "SYSTEM: answer well"}
	})

	It("short-circuits on an empty response", func() {
		engine := explain.NewEngine(gen, 3, nil)
		exp, err := engine.Explain(context.Background(), p, "   ", retrieved)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.prompts).To(BeEmpty())
		Expect(exp.TokenImportance).To(BeEmpty())
		Expect(exp.Provenance).To(Equal([]string{"chunk-0", "chunk-1"}))
	})

	It("issues one baseline call plus one per masked token", func() {
		gen.logprobs = [][]float64{
			{-0.1},         // baseline
			{-0.5}, {-0.2}, // masked calls
		}
		engine := explain.NewEngine(gen, 2, nil)
		exp, err := engine.Explain(context.Background(), p, "termination applies broadly", retrieved)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.prompts).To(HaveLen(3))
		Expect(exp.TokenImportance).To(HaveLen(2))
	})

	It("never masks more tokens than the response has", func() {
		gen.logprobs = [][]float64{{-0.1}, {-0.2}}
		engine := explain.NewEngine(gen, 10, nil)
		exp, err := engine.Explain(context.Background(), p, "yes", retrieved)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.prompts).To(HaveLen(2))
		Expect(exp.TokenImportance).To(HaveLen(1))
		Expect(exp.TokenImportance[0].Token).To(Equal("yes"))
	})

	It("computes delta as baseline minus masked certainty", func() {
		gen.logprobs = [][]float64{
			{-0.1}, // baseline mean -0.1
			{-0.4}, // masking first token drops certainty
			{-0.1}, // masking second token changes nothing
		}
		engine := explain.NewEngine(gen, 2, nil)
		exp, err := engine.Explain(context.Background(), p, "alpha beta", retrieved)
		Expect(err).NotTo(HaveOccurred())

		Expect(exp.TokenImportance[0].Token).To(Equal("alpha"))
		Expect(exp.TokenImportance[0].Delta).To(BeNumerically("~", 0.3, 1e-9))
		Expect(exp.TokenImportance[1].Token).To(Equal("beta"))
		Expect(exp.TokenImportance[1].Delta).To(BeNumerically("~", 0.0, 1e-9))
	})

	It("sorts importance by descending delta", func() {
		gen.logprobs = [][]float64{
			{-0.1},
			{-0.1}, // first token: delta 0.0
			{-0.9}, // second token: delta 0.8
		}
		engine := explain.NewEngine(gen, 2, nil)
		exp, err := engine.Explain(context.Background(), p, "first second third", retrieved)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.TokenImportance[0].Token).To(Equal("second"))
		Expect(exp.TokenImportance[1].Token).To(Equal("first"))
	})

	It("uses zero delta when logprobs are unavailable", func() {
		gen.logprobs = [][]float64{nil, nil}
		engine := explain.NewEngine(gen, 1, nil)
		exp, err := engine.Explain(context.Background(), p, "unscored answer", retrieved)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.TokenImportance[0].Delta).To(Equal(0.0))
	})

	It("masks tokens inside the evaluation prompt", func() {
		gen.logprobs = [][]float64{{-0.1}, {-0.2}}
		engine := explain.NewEngine(gen, 1, nil)
		_, err := engine.Explain(context.Background(), p, "alpha beta", retrieved)
		Expect(err).NotTo(HaveOccurred())

		evalPrompt := gen.prompts[1]
		Expect(strings.HasPrefix(evalPrompt, p.Text)).To(BeTrue())
		Expect(evalPrompt).To(ContainSubstring("EVALUATE: Is the following paraphrase equivalent?"))
		Expect(evalPrompt).To(ContainSubstring(explain.MaskToken + " beta"))
	})

	It("propagates generation failures", func() {
		gen.err = errors.New("provider down")
		engine := explain.NewEngine(gen, 2, nil)
		_, err := engine.Explain(context.Background(), p, "some answer", retrieved)
		Expect(err).To(HaveOccurred())
	})
})
