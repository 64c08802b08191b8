package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Tolerances for fraction problems. Percent answers are compared on the
// percentage scale, plain answers on the unit scale.
const (
	FractionTolerance = 0.01
	PercentTolerance  = 0.1

	// fractionExact bounds cross-multiplied fraction comparisons.
	fractionExact = 0.001
)

// Feedback for a decimal entered on the wrong scale.
const scaleHint = "Correct! Watch the scale next time: percentage versus fraction."

// ParseFraction parses "a/b" into numerator and denominator. Both parts
// may be decimals ("1,5/3").
func ParseFraction(s string) (num, den float64, err error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err = ParseNumber(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err = ParseNumber(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("zero denominator")
	}
	return num, den, nil
}

// ParseRational parses either "a/b" or a plain number.
func ParseRational(s string) (float64, error) {
	if strings.Contains(s, "/") {
		num, den, err := ParseFraction(s)
		if err != nil {
			return 0, err
		}
		return num / den, nil
	}
	return ParseNumber(s)
}

// CheckFraction validates a KindFraction problem.
//
// A fraction input is compared by value against the canonical answer
// (divided by 100 when the problem is a percentage). A decimal input is
// compared directly within tolerance; a decimal that is off by exactly a
// factor of 100 is accepted with a softer hint.
func CheckFraction(input string, p *problemgen.Problem) problemgen.Verdict {
	want, err := ParseRational(p.Answer)
	if err != nil {
		return CheckText(input, p)
	}
	wrong := problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The answer was %s.", shownFraction(p)),
	}

	clean := strings.TrimSpace(input)
	unit := want
	tol := FractionTolerance
	if p.Percent {
		unit = want / 100
		tol = PercentTolerance
	}

	if strings.Contains(clean, "/") {
		num, den, err := ParseFraction(clean)
		if err != nil {
			return wrong
		}
		// Cross-multiply to avoid dividing by a small denominator.
		if math.Abs(num-unit*den) <= fractionExact*math.Abs(den) {
			return problemgen.Verdict{Correct: true}
		}
		return wrong
	}

	got, err := ParseNumber(clean)
	if err != nil {
		return problemgen.Verdict{Correct: false, Feedback: "Enter a fraction like 3/4 or a decimal like 0.75."}
	}
	if math.Abs(got-want) < tol {
		return problemgen.Verdict{Correct: true}
	}
	if scaleSwapped(got, want, p.Percent) {
		return problemgen.Verdict{Correct: true, Feedback: scaleHint}
	}
	return wrong
}

// scaleSwapped reports whether got is the answer on the other scale: a
// fraction typed for a percentage or a percentage typed for a fraction.
func scaleSwapped(got, want float64, percent bool) bool {
	if percent {
		return math.Abs(got*100-want) < PercentTolerance
	}
	return math.Abs(got-want*100) < PercentTolerance
}

func shownFraction(p *problemgen.Problem) string {
	if p.Percent {
		return p.Shown() + "%"
	}
	return p.Shown()
}

// FormatFraction renders num/den in lowest terms, e.g. FormatFraction(10, 14)
// is "5/7".
func FormatFraction(num, den int64) string {
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	if den == 1 {
		return strconv.FormatInt(num, 10)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
