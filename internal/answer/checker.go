// Package answer holds the reusable answer-checking strategies. Each
// AnswerKind has one strategy; Check selects it by kind.
package answer

import (
	"github.com/abhisek/drillgym/internal/problemgen"
)

// Checker dispatches validation by a problem's AnswerKind.
type Checker struct {
	// Equivalence is used for KindExpression. Nil means DefaultEquivalence.
	Equivalence EquivalenceChecker
}

// Check validates input against p. It never panics on malformed input.
func (c Checker) Check(input string, p *problemgen.Problem) problemgen.Verdict {
	switch p.Kind {
	case problemgen.KindNumeric:
		return CheckNumeric(input, p)
	case problemgen.KindFraction:
		return CheckFraction(input, p)
	case problemgen.KindSigFig:
		return CheckSigFigs(input, p)
	case problemgen.KindChoice:
		return CheckChoice(input, p)
	case problemgen.KindVector:
		return CheckVector(input, p)
	case problemgen.KindExpression:
		return CheckExpression(input, p, c.Equivalence)
	default:
		return CheckText(input, p)
	}
}

// Check validates with the default Checker.
func Check(input string, p *problemgen.Problem) problemgen.Verdict {
	return Checker{}.Check(input, p)
}
