package engines

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// Algebra drills expanding products of binomials. Any equivalent
// expression is accepted.
type Algebra struct {
	intn    func(n int) int
	checker answer.Checker
}

// NewAlgebra returns the algebra generator. A nil checker uses sampling.
func NewAlgebra(eq answer.EquivalenceChecker) *Algebra {
	return &Algebra{intn: rand.IntN, checker: answer.Checker{Equivalence: eq}}
}

func (a *Algebra) ID() string   { return "algebra" }
func (a *Algebra) Name() string { return "Algebra" }

func (a *Algebra) nonzero(span int) int {
	n := a.intn(2*span) - span
	if n >= 0 {
		n++
	}
	return n
}

func (a *Algebra) Generate(_ context.Context, level int) *problemgen.Problem {
	level = problemgen.ClampLevel(level)

	if level == 1 {
		p, q := a.nonzero(9), a.nonzero(9)
		return &problemgen.Problem{
			ID:      problemgen.NewID(a.ID()),
			Prompt:  fmt.Sprintf("Simplify: %s", poly(0, p, 0)+" "+signed(q)+"x"),
			Answer:  poly(0, p+q, 0),
			Kind:    problemgen.KindExpression,
			Context: "Combine like terms.",
		}
	}

	// (p x + r)(q x + s)
	p, q := 1, 1
	if level >= 3 {
		p = 1 + a.intn(level-1)
	}
	if level >= 4 {
		q = a.nonzero(3)
	}
	r, s := a.nonzero(2*level), a.nonzero(2*level)

	c2, c1, c0 := p*q, p*s+r*q, r*s
	ans := poly(c2, c1, c0)
	return &problemgen.Problem{
		ID:      problemgen.NewID(a.ID()),
		Prompt:  fmt.Sprintf("Expand: (%s)(%s)", poly(0, p, r), poly(0, q, s)),
		Answer:  ans,
		Kind:    problemgen.KindExpression,
		Context: "Write the result as a polynomial in x.",
		SolutionSteps: []string{
			fmt.Sprintf("First × first: %s", poly(c2, 0, 0)),
			fmt.Sprintf("Outer + inner: %s", poly(0, c1, 0)),
			fmt.Sprintf("Last × last: %d", c0),
			fmt.Sprintf("Together: %s", ans),
		},
	}
}

func (a *Algebra) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	return a.checker.Check(input, p)
}

// poly renders c2 x^2 + c1 x + c0, omitting zero terms.
func poly(c2, c1, c0 int) string {
	var b strings.Builder
	term := func(c int, suffix string) {
		if c == 0 {
			return
		}
		switch {
		case b.Len() == 0 && c < 0:
			b.WriteString("-")
		case b.Len() > 0 && c < 0:
			b.WriteString(" - ")
		case b.Len() > 0:
			b.WriteString(" + ")
		}
		abs := c
		if abs < 0 {
			abs = -abs
		}
		if abs != 1 || suffix == "" {
			b.WriteString(strconv.Itoa(abs))
		}
		b.WriteString(suffix)
	}
	term(c2, "x^2")
	term(c1, "x")
	term(c0, "")
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

// signed renders n with an explicit sign, e.g. "+ 3" or "- 3".
func signed(n int) string {
	if n < 0 {
		return "- " + strconv.Itoa(-n)
	}
	return "+ " + strconv.Itoa(n)
}
