package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// exactEpsilon is used when a numeric problem carries no tolerance.
const exactEpsilon = 1e-9

var numberReplacer = strings.NewReplacer(
	",", ".",
	"×10^", "e",
	"x10^", "e",
	"*10^", "e",
	"·10^", "e",
	"\\cdot10^", "e",
	"{", "",
	"}", "",
)

// CleanNumber rewrites a learner's number into Go float syntax: decimal
// commas become points and "×10^" becomes an exponent marker.
func CleanNumber(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), "")
	s = numberReplacer.Replace(s)
	return strings.TrimSuffix(s, "%")
}

// ParseNumber parses a learner's number. It accepts "6,3", "1.5e3" and
// "1.5×10^3".
func ParseNumber(s string) (float64, error) {
	clean := CleanNumber(s)
	if clean == "" {
		return 0, fmt.Errorf("empty number")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// Within reports whether got is within tol of want.
func Within(got, want float64, tol problemgen.Tolerance) bool {
	diff := math.Abs(got - want)
	switch tol.Mode {
	case problemgen.Absolute:
		return diff <= tol.Epsilon+exactEpsilon
	case problemgen.Relative:
		return diff <= math.Abs(want)*tol.Epsilon+exactEpsilon
	default:
		return diff <= exactEpsilon*math.Max(1, math.Abs(want))
	}
}

// CheckNumeric validates a KindNumeric problem using its tolerance.
func CheckNumeric(input string, p *problemgen.Problem) problemgen.Verdict {
	want, err := ParseNumber(p.Answer)
	if err != nil {
		// Canonical answer is not numeric; compare as text.
		return CheckText(input, p)
	}
	got, err := ParseNumber(input)
	if err != nil {
		return problemgen.Verdict{Correct: false, Feedback: "Enter a number, e.g. 4.2 or 1.5e3."}
	}
	if Within(got, want, p.Tolerance) {
		return problemgen.Verdict{Correct: true}
	}
	for _, alt := range p.Accepted {
		if v, err := ParseNumber(alt); err == nil && Within(got, v, p.Tolerance) {
			return problemgen.Verdict{Correct: true}
		}
	}
	return problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The answer was %s.", p.Shown()),
	}
}
