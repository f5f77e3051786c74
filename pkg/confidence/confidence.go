// Package confidence fuses model certainty with retrieval strength into a
// single score in [0, 1].
package confidence

import "math"

// Fusion weights. Retrieval strength dominates model certainty.
const (
	ModelWeight     = 0.4
	RetrievalWeight = 0.6
)

// NeutralModelConfidence is used when the generator returns no logprobs.
const NeutralModelConfidence = 0.5

// Calibrator remaps a raw fused score. Deployments fit these against
// labeled outcomes; the identity mapping is used when none is set.
type Calibrator interface {
	Calibrate(score float64) float64
}

// Scorer computes fused confidence scores.
type Scorer struct {
	calibrator Calibrator
}

// NewScorer creates a Scorer. A nil calibrator leaves scores unmapped.
func NewScorer(calibrator Calibrator) *Scorer {
	return &Scorer{calibrator: calibrator}
}

// Score fuses token logprobs and retrieval similarity scores.
//
// Model certainty is exp(mean(logprobs)), the geometric mean token
// probability clamped to [0, 1], or NeutralModelConfidence when no logprobs
// are available. Retrieval strength is the best similarity among the
// retrieved chunks, negative when every similarity is negative, or zero when
// nothing was retrieved. The fused score is clamped to [0, 1].
func (s *Scorer) Score(logprobs []float64, retrievalScores []float32) float64 {
	model := NeutralModelConfidence
	if len(logprobs) > 0 {
		var sum float64
		for _, lp := range logprobs {
			sum += lp
		}
		model = clamp01(math.Exp(sum / float64(len(logprobs))))
	}

	var retrieval float64
	for i, score := range retrievalScores {
		if i == 0 || float64(score) > retrieval {
			retrieval = float64(score)
		}
	}

	fused := ModelWeight*model + RetrievalWeight*retrieval
	if s.calibrator != nil {
		fused = s.calibrator.Calibrate(fused)
	}
	return clamp01(fused)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
