package confidence_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/contractminer/contractminer/pkg/confidence"
)

type offsetCalibrator struct {
	offset float64
}

func (c offsetCalibrator) Calibrate(score float64) float64 {
	return score + c.offset
}

var _ = Describe("Scorer", func() {
	var scorer *confidence.Scorer

	BeforeEach(func() {
		scorer = confidence.NewScorer(nil)
	})

	It("falls back to neutral model confidence without logprobs", func() {
		score := scorer.Score(nil, nil)
		Expect(score).To(BeNumerically("~", 0.2, 1e-9))
	})

	It("uses the best retrieval score", func() {
		score := scorer.Score(nil, []float32{0.3, 0.9, 0.5})
		Expect(score).To(BeNumerically("~", 0.74, 1e-6))
	})

	It("derives model confidence from the mean logprob", func() {
		logprobs := []float64{-0.1, -0.3}
		expected := 0.4*math.Exp(-0.2) + 0.6*0.5
		score := scorer.Score(logprobs, []float32{0.5})
		Expect(score).To(BeNumerically("~", expected, 1e-9))
	})

	It("treats zero logprobs as full model certainty", func() {
		score := scorer.Score([]float64{0, 0}, []float32{1.0})
		Expect(score).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("clamps the fused score to [0, 1]", func() {
		boosted := confidence.NewScorer(offsetCalibrator{offset: 5})
		Expect(boosted.Score(nil, []float32{1.0})).To(Equal(1.0))

		sunk := confidence.NewScorer(offsetCalibrator{offset: -5})
		Expect(sunk.Score(nil, nil)).To(Equal(0.0))
	})

	It("applies the calibrator before clamping", func() {
		calibrated := confidence.NewScorer(offsetCalibrator{offset: 0.1})
		Expect(calibrated.Score(nil, nil)).To(BeNumerically("~", 0.3, 1e-9))
	})

	It("lets a negative best similarity drag the score to zero", func() {
		// 0.4*0.5 + 0.6*(-0.4) is negative, so the final clamp floors it.
		score := scorer.Score(nil, []float32{-0.4})
		Expect(score).To(Equal(0.0))
	})

	It("keeps the best similarity negative when all similarities are", func() {
		score := scorer.Score(nil, []float32{-0.9, -0.1})
		expected := 0.4*0.5 + 0.6*(-0.1)
		Expect(score).To(BeNumerically("~", expected, 1e-6))
	})

	It("caps model certainty at one before fusing", func() {
		// A positive mean logprob would exponentiate above 1 unclamped.
		score := scorer.Score([]float64{1.0}, nil)
		Expect(score).To(BeNumerically("~", 0.4, 1e-9))
	})
})
