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

// Vectors drills component-wise vector arithmetic. Levels 1-2 add plane
// vectors, levels 3-4 add a scalar multiple and level 5 works in space.
type Vectors struct {
	intn func(n int) int
}

// NewVectors returns the vector generator.
func NewVectors() *Vectors {
	return &Vectors{intn: rand.IntN}
}

func (v *Vectors) ID() string   { return "vectors" }
func (v *Vectors) Name() string { return "Vectors" }

func (v *Vectors) vec(dim, span int) []int {
	out := make([]int, dim)
	for i := range out {
		out[i] = v.intn(2*span+1) - span
	}
	return out
}

func (v *Vectors) Generate(_ context.Context, level int) *problemgen.Problem {
	level = problemgen.ClampLevel(level)
	dim := 2
	if level == 5 {
		dim = 3
	}
	scale := 1
	if level >= 3 {
		scale = 2 + v.intn(3)
	}

	a, b := v.vec(dim, 3*level), v.vec(dim, 3*level)
	sum := make([]int, dim)
	for i := range sum {
		sum[i] = a[i] + scale*b[i]
	}

	prompt := fmt.Sprintf("a = %s, b = %s. Compute a + b.", formatVec(a), formatVec(b))
	if scale != 1 {
		prompt = fmt.Sprintf("a = %s, b = %s. Compute a + %db.", formatVec(a), formatVec(b), scale)
	}
	return &problemgen.Problem{
		ID:      problemgen.NewID(v.ID()),
		Prompt:  prompt,
		Answer:  formatVec(sum),
		Kind:    problemgen.KindVector,
		Context: "Write the result as [x, y].",
		SolutionSteps: []string{
			"Add component by component.",
			fmt.Sprintf("Result: %s", formatVec(sum)),
		},
	}
}

func (v *Vectors) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	return answer.CheckVector(input, p)
}

func formatVec(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
