package diagnosis

import (
	"math"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// NearMissRatio is the largest relative error (inclusive) still counted
// as a near miss.
const NearMissRatio = 0.1

// NearMissClassifier flags numeric answers within NearMissRatio of the
// canonical value: usually an arithmetic slip or a rounding error.
type NearMissClassifier struct{}

func (c *NearMissClassifier) Name() string { return "near-miss" }

func (c *NearMissClassifier) Classify(in *Input) (Pattern, float64) {
	p := in.Problem
	if p == nil {
		return "", 0
	}
	switch p.Kind {
	case problemgen.KindNumeric, problemgen.KindSigFig:
	default:
		return "", 0
	}

	got, err := answer.ParseNumber(in.Answer)
	if err != nil {
		return "", 0
	}
	want, err := answer.ParseNumber(p.Answer)
	if err != nil || want == 0 || got == want {
		return "", 0
	}
	if math.Abs(got-want)/math.Abs(want) <= NearMissRatio {
		return PatternNearMiss, 0.7
	}
	return "", 0
}
