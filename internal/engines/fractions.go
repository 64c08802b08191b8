package engines

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// denominators available per level.
var denominators = [][]int{
	{2, 4},
	{2, 3, 4, 6},
	{3, 4, 5, 6, 8},
	{5, 6, 7, 8, 9, 10},
	{7, 9, 11, 12, 15},
}

// Fractions drills adding fractions and converting them to percentages.
// Answers may be given as a fraction or a decimal.
type Fractions struct {
	intn func(n int) int
}

// NewFractions returns the fractions generator.
func NewFractions() *Fractions {
	return &Fractions{intn: rand.IntN}
}

func (f *Fractions) ID() string   { return "fractions" }
func (f *Fractions) Name() string { return "Fractions" }

func (f *Fractions) pick(xs []int) int { return xs[f.intn(len(xs))] }

func (f *Fractions) Generate(_ context.Context, level int) *problemgen.Problem {
	level = problemgen.ClampLevel(level)
	dens := denominators[level-1]

	b, d := f.pick(dens), f.pick(dens)
	a, c := 1+f.intn(b), 1+f.intn(d)
	if level >= 4 && f.intn(2) == 0 {
		return f.percent(a, b)
	}

	num, den := int64(a*d+c*b), int64(b*d)
	sum := answer.FormatFraction(num, den)
	return &problemgen.Problem{
		ID:      problemgen.NewID(f.ID()),
		Prompt:  fmt.Sprintf("%d/%d + %d/%d = ?", a, b, c, d),
		Answer:  sum,
		Kind:    problemgen.KindFraction,
		Context: "Give the answer in lowest terms or as a decimal.",
		SolutionSteps: []string{
			fmt.Sprintf("Common denominator: %d × %d = %d", b, d, b*d),
			fmt.Sprintf("%d/%d + %d/%d = %d/%d", a*d, b*d, c*b, b*d, num, den),
			fmt.Sprintf("Simplify: %s", sum),
		},
	}
}

// percent asks for a/b as a percentage.
func (f *Fractions) percent(a, b int) *problemgen.Problem {
	pct := float64(a) / float64(b) * 100
	shown := fmt.Sprintf("%.1f", pct)
	return &problemgen.Problem{
		ID:            problemgen.NewID(f.ID()),
		Prompt:        fmt.Sprintf("Write %d/%d as a percentage.", a, b),
		Answer:        fmt.Sprintf("%g", pct),
		DisplayAnswer: shown,
		Kind:          problemgen.KindFraction,
		Percent:       true,
		Explanation:   fmt.Sprintf("%d ÷ %d × 100 ≈ %s%%", a, b, shown),
	}
}

func (f *Fractions) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	return answer.CheckFraction(input, p)
}
