package engines

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// Arithmetic drills whole-number operations. Level 1 adds within 20,
// level 2 subtracts within 100, level 3 multiplies tables, level 4
// divides exactly and level 5 combines two operations.
type Arithmetic struct {
	intn func(n int) int
}

// NewArithmetic returns the arithmetic generator.
func NewArithmetic() *Arithmetic {
	return &Arithmetic{intn: rand.IntN}
}

func (a *Arithmetic) ID() string   { return "arithmetic" }
func (a *Arithmetic) Name() string { return "Arithmetic" }

// between returns a random integer in [lo, hi].
func (a *Arithmetic) between(lo, hi int) int {
	return lo + a.intn(hi-lo+1)
}

func (a *Arithmetic) Generate(_ context.Context, level int) *problemgen.Problem {
	var (
		prompt string
		result int
		steps  []string
	)
	switch problemgen.ClampLevel(level) {
	case 1:
		x, y := a.between(1, 10), a.between(1, 10)
		prompt, result = fmt.Sprintf("%d + %d", x, y), x+y
	case 2:
		x := a.between(20, 99)
		y := a.between(1, x)
		prompt, result = fmt.Sprintf("%d - %d", x, y), x-y
	case 3:
		x, y := a.between(2, 12), a.between(2, 12)
		prompt, result = fmt.Sprintf("%d × %d", x, y), x*y
	case 4:
		y, q := a.between(2, 12), a.between(2, 12)
		prompt, result = fmt.Sprintf("%d ÷ %d", y*q, y), q
		steps = []string{fmt.Sprintf("%d × %d = %d, so %d ÷ %d = %d", y, q, y*q, y*q, y, q)}
	default:
		x, y, z := a.between(2, 12), a.between(2, 12), a.between(1, 50)
		prompt, result = fmt.Sprintf("%d + %d × %d", z, x, y), z+x*y
		steps = []string{
			fmt.Sprintf("Multiply first: %d × %d = %d", x, y, x*y),
			fmt.Sprintf("Then add: %d + %d = %d", z, x*y, result),
		}
	}

	return &problemgen.Problem{
		ID:            problemgen.NewID(a.ID()),
		Prompt:        prompt + " = ?",
		Answer:        strconv.Itoa(result),
		Kind:          problemgen.KindNumeric,
		SolutionSteps: steps,
	}
}

func (a *Arithmetic) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	return answer.CheckNumeric(input, p)
}
