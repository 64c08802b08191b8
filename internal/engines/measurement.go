package engines

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// Measurement drills significant figures in products and quotients of
// measured values: the result keeps the fewest figures of its inputs.
type Measurement struct {
	intn func(n int) int
}

// NewMeasurement returns the significant-figures generator.
func NewMeasurement() *Measurement {
	return &Measurement{intn: rand.IntN}
}

func (m *Measurement) ID() string   { return "sigfigs" }
func (m *Measurement) Name() string { return "Significant Figures" }

// measure returns a value with the given number of significant figures
// as written by a lab notebook, e.g. "2.50".
func (m *Measurement) measure(figures int) (string, float64) {
	lo := 1
	for range figures - 1 {
		lo *= 10
	}
	raw := float64(lo+m.intn(9*lo)) / float64(lo)
	s := answer.FormatSigFigs(raw, figures)
	v, _ := answer.ParseNumber(s)
	return s, v
}

func (m *Measurement) Generate(_ context.Context, level int) *problemgen.Problem {
	level = problemgen.ClampLevel(level)
	fx := 2 + m.intn(2)
	fy := 2 + m.intn(min(level, 3))

	xs, x := m.measure(fx)
	ys, y := m.measure(fy)
	target := min(fx, fy)

	var (
		prompt string
		value  float64
		op     string
	)
	if level >= 3 && m.intn(2) == 0 {
		prompt = fmt.Sprintf("A sample of %s g occupies %s mL. What is its density in g/mL?", xs, ys)
		value, op = x/y, "÷"
	} else {
		prompt = fmt.Sprintf("A plate measures %s cm by %s cm. What is its area in cm²?", xs, ys)
		value, op = x*y, "×"
	}

	ans := answer.FormatSigFigs(value, target)
	return &problemgen.Problem{
		ID:      problemgen.NewID(m.ID()),
		Prompt:  prompt,
		Answer:  ans,
		Kind:    problemgen.KindSigFig,
		SigFigs: target,
		Context: fmt.Sprintf("Answer with %d significant figures.", target),
		SolutionSteps: []string{
			fmt.Sprintf("%s %s %s = %g", xs, op, ys, value),
			fmt.Sprintf("%s has %d significant figures and %s has %d; keep %d.", xs, fx, ys, fy, target),
			fmt.Sprintf("Rounded: %s", ans),
		},
	}
}

func (m *Measurement) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	return answer.CheckSigFigs(input, p)
}
