package answer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// EquivalenceChecker decides whether two algebraic expressions are
// equivalent. Implementations may call out to an external CAS.
type EquivalenceChecker interface {
	Equivalent(a, b string) (bool, error)
}

// SamplingChecker tests equivalence by evaluating both expressions at
// pseudo-random points. The sample points are derived from a fixed seed so
// the same pair always yields the same answer.
type SamplingChecker struct {
	// Samples is the number of points to try. Default 12.
	Samples int

	// MinValid is the number of points where both sides must be defined.
	// Default 4.
	MinValid int

	// Seed fixes the sample points.
	Seed uint64
}

// DefaultEquivalence is the checker used when none is configured.
var DefaultEquivalence EquivalenceChecker = SamplingChecker{}

// Equivalent implements EquivalenceChecker.
func (c SamplingChecker) Equivalent(a, b string) (bool, error) {
	samples := c.Samples
	if samples <= 0 {
		samples = 12
	}
	minValid := c.MinValid
	if minValid <= 0 {
		minValid = 4
	}

	left := NormalizeExpression(a)
	right := NormalizeExpression(b)
	if left == "" || right == "" {
		return false, fmt.Errorf("empty expression")
	}

	vars := union(Variables(left), Variables(right))
	lp, err := compile(left, vars)
	if err != nil {
		return false, err
	}
	rp, err := compile(right, vars)
	if err != nil {
		return false, err
	}

	rng := rand.New(rand.NewPCG(c.Seed, 0x9e3779b97f4a7c15))
	valid := 0
	for range samples {
		values := make(map[string]float64, len(vars))
		for _, v := range vars {
			// Avoid zero and small magnitudes where division blows up.
			x := 0.5 + rng.Float64()*2.5
			if rng.IntN(2) == 0 {
				x = -x
			}
			values[v] = x
		}
		lv, lerr := evalAt(lp, values)
		rv, rerr := evalAt(rp, values)
		if lerr != nil || rerr != nil || !finite(lv) || !finite(rv) {
			continue
		}
		valid++
		if math.Abs(lv-rv) > 1e-6*math.Max(1, math.Max(math.Abs(lv), math.Abs(rv))) {
			return false, nil
		}
	}
	if valid < minValid && len(vars) > 0 {
		return false, fmt.Errorf("expression undefined at too many points")
	}
	if valid == 0 {
		return false, fmt.Errorf("expression could not be evaluated")
	}
	return true, nil
}

// CheckExpression validates a KindExpression problem with the given
// equivalence checker.
func CheckExpression(input string, p *problemgen.Problem, eq EquivalenceChecker) problemgen.Verdict {
	if strings.TrimSpace(input) == "" {
		return problemgen.Verdict{Correct: false, Feedback: "Enter an expression."}
	}
	if eq == nil {
		eq = DefaultEquivalence
	}
	candidates := append([]string{p.Answer}, p.Accepted...)
	var lastErr error
	for _, cand := range candidates {
		ok, err := eq.Equivalent(input, cand)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return problemgen.Verdict{Correct: true}
		}
	}
	if lastErr != nil && len(candidates) == 1 {
		return problemgen.Verdict{
			Correct:  false,
			Feedback: fmt.Sprintf("Could not read that expression. The answer was %s.", p.Shown()),
		}
	}
	return problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not equivalent. The answer was %s.", p.Shown()),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
