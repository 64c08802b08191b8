package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// maxSigFigs bounds FormatSigFigs to what a float64 can represent.
const maxSigFigs = 15

// CountSigFigs counts the significant figures in a number as the learner
// typed it. Signs and exponents are ignored, leading zeros never count and
// trailing zeros count only when a decimal point is present. It returns 0
// when s is not a number.
func CountSigFigs(s string) int {
	clean := CleanNumber(s)
	if i := strings.IndexAny(clean, "e"); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.TrimLeft(clean, "+-")
	if clean == "" || strings.Count(clean, ".") > 1 {
		return 0
	}
	for _, r := range clean {
		if (r < '0' || r > '9') && r != '.' {
			return 0
		}
	}

	hasPoint := strings.Contains(clean, ".")
	intPart, fracPart, _ := strings.Cut(clean, ".")
	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		// The value is zero: "0" has one figure, "0.00" has two.
		if hasPoint && len(fracPart) > 0 {
			return len(fracPart)
		}
		if intPart == "" && fracPart == "" {
			return 0
		}
		return 1
	}
	if !hasPoint {
		digits = strings.TrimRight(digits, "0")
	}
	return len(digits)
}

// FormatSigFigs renders v with exactly n significant figures, rounding
// halves away from zero. Plain notation is used when it is unambiguous; a
// trailing point marks significant trailing zeros ("120." for three
// figures) and large or tiny magnitudes use an exponent ("1.20e5").
func FormatSigFigs(v float64, n int) string {
	if n < 1 {
		n = 1
	}
	if n > maxSigFigs {
		n = maxSigFigs
	}
	if v == 0 {
		if n == 1 {
			return "0"
		}
		return "0." + strings.Repeat("0", n-1)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	exp := int(math.Floor(math.Log10(v)))
	scaled := math.Round(v * math.Pow(10, float64(n-1-exp)))
	// Log10 can be off by one ulp around powers of ten.
	if scaled >= math.Pow(10, float64(n)) {
		exp++
		scaled = math.Round(v * math.Pow(10, float64(n-1-exp)))
	} else if scaled < math.Pow(10, float64(n-1)) {
		exp--
		scaled = math.Round(v * math.Pow(10, float64(n-1-exp)))
	}
	digits := strconv.FormatInt(int64(scaled), 10)
	for len(digits) < n {
		digits += "0"
	}
	digits = digits[:n]

	switch {
	case exp < -4 || exp > n-1:
		mant := digits[:1]
		if n > 1 {
			mant += "." + digits[1:]
		}
		return fmt.Sprintf("%s%se%d", sign, mant, exp)
	case exp < 0:
		return sign + "0." + strings.Repeat("0", -exp-1) + digits
	case exp == n-1:
		if strings.HasSuffix(digits, "0") {
			return sign + digits + "."
		}
		return sign + digits
	default:
		return sign + digits[:exp+1] + "." + digits[exp+1:]
	}
}

// CheckSigFigs validates a KindSigFig problem. The input must be
// numerically right and carry exactly p.SigFigs significant figures;
// the feedback distinguishes a wrong value from a wrong precision.
func CheckSigFigs(input string, p *problemgen.Problem) problemgen.Verdict {
	want, err := ParseNumber(p.Answer)
	if err != nil {
		return CheckText(input, p)
	}
	got, err := ParseNumber(input)
	if err != nil {
		return problemgen.Verdict{Correct: false, Feedback: "Enter a number, e.g. 6.25 or 1.5e3."}
	}

	count := CountSigFigs(input)
	if !valueMatches(got, want, count, p.Tolerance) {
		return problemgen.Verdict{
			Correct:  false,
			Feedback: fmt.Sprintf("The value is not right. The answer was %s.", p.Shown()),
		}
	}

	target := p.SigFigs
	if target <= 0 {
		target = CountSigFigs(p.Answer)
	}
	if count != target {
		return problemgen.Verdict{
			Correct: false,
			Feedback: fmt.Sprintf(
				"The value is right, but the precision is not: use %d significant figures (you used %d). The answer was %s.",
				target, count, p.Shown()),
		}
	}
	return problemgen.Verdict{Correct: true}
}

// valueMatches reports whether got is the canonical value, either within
// the problem tolerance or equal to the canonical value rounded to the
// precision the learner used.
func valueMatches(got, want float64, figures int, tol problemgen.Tolerance) bool {
	if tol.Epsilon > 0 && Within(got, want, tol) {
		return true
	}
	if Within(got, want, problemgen.Tolerance{}) {
		return true
	}
	if figures < 1 {
		return false
	}
	rounded, err := ParseNumber(FormatSigFigs(want, figures))
	if err != nil {
		return false
	}
	return math.Abs(got-rounded) <= 1e-9*math.Max(1, math.Abs(rounded))
}
