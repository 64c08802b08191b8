package engines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillgym/internal/contentgen"
	"github.com/abhisek/drillgym/internal/infinite"
	"github.com/abhisek/drillgym/internal/mix"
	"github.com/abhisek/drillgym/internal/problemgen"
)

func TestBuild_Offline(t *testing.T) {
	set, err := Build(Options{})
	require.NoError(t, err)

	assert.Empty(t, set.Adapters())
	for _, id := range []string{
		"arithmetic", "fractions", "algebra", "vectors", "sigfigs",
		"capitals", "elements", "formulas", "philosophy", "vocab-fr",
		"math-mix", "science-mix",
	} {
		_, ok := set.Get(id)
		assert.True(t, ok, id)
	}
}

func TestBuild_AdaptiveWithSource(t *testing.T) {
	src := contentgen.SourceFunc(func(context.Context, contentgen.Request) ([]*problemgen.Problem, error) {
		return nil, contentgen.ErrEmptyBatch
	})
	set, err := Build(Options{Source: src})
	require.NoError(t, err)
	t.Cleanup(set.Wait)

	ids := make([]string, 0, len(set.Adapters()))
	for _, a := range set.Adapters() {
		ids = append(ids, a.ID())
	}
	assert.ElementsMatch(t, []string{"formulas", "philosophy"}, ids)

	g, ok := set.Get("formulas")
	require.True(t, ok)
	_, isAdapter := g.(*infinite.Adapter)
	assert.True(t, isAdapter)
}

func TestAllEngines_SelfConsistent(t *testing.T) {
	set, err := Build(Options{})
	require.NoError(t, err)

	failures, err := Check(context.Background(), set.All(), 25, 4)
	require.NoError(t, err)
	for _, f := range failures {
		t.Error(f.String())
	}
}

func TestMix_DelegatesValidation(t *testing.T) {
	set, err := Build(Options{})
	require.NoError(t, err)
	g, ok := set.Get("math-mix")
	require.True(t, ok)

	seen := map[string]bool{}
	for range 200 {
		p := g.Generate(context.Background(), 3)
		src := p.Meta(mix.SourceKey)
		seen[src] = true
		sub, ok := set.Get(src)
		require.True(t, ok, src)

		for _, input := range []string{p.Answer, "wrong", ""} {
			assert.Equal(t, sub.Validate(input, p).Correct, g.Validate(input, p).Correct, "%s %q", src, input)
		}
	}
	assert.Len(t, seen, 4)
}

func TestFractions_Example(t *testing.T) {
	p := &problemgen.Problem{Answer: "5/7", Kind: problemgen.KindFraction}
	f := NewFractions()

	assert.True(t, f.Validate("5/7", p).Correct)
	assert.True(t, f.Validate("10/14", p).Correct)
	assert.True(t, f.Validate("0.71", p).Correct)
	assert.False(t, f.Validate("abc", p).Correct)
}

func TestFractions_Deterministic(t *testing.T) {
	vals := []int{1, 0, 1, 0} // b=4, d=2 at level 1, then a=2, c=1
	i := 0
	f := &Fractions{intn: func(n int) int {
		v := vals[i%len(vals)] % n
		i++
		return v
	}}

	p := f.Generate(context.Background(), 1)
	assert.Equal(t, "2/4 + 1/2 = ?", p.Prompt)
	assert.Equal(t, "1", p.Answer)
}

func TestArithmetic_Levels(t *testing.T) {
	a := &Arithmetic{intn: func(n int) int { return n - 1 }}
	ctx := context.Background()

	tests := []struct {
		level  int
		prompt string
		answer string
	}{
		{1, "10 + 10 = ?", "20"},
		{3, "12 × 12 = ?", "144"},
		{4, "144 ÷ 12 = ?", "12"},
		{5, "50 + 12 × 12 = ?", "194"},
		{0, "10 + 10 = ?", "20"},
	}
	for _, tt := range tests {
		p := a.Generate(ctx, tt.level)
		if p.Prompt != tt.prompt || p.Answer != tt.answer {
			t.Errorf("level %d: got %q = %q, want %q = %q", tt.level, p.Prompt, p.Answer, tt.prompt, tt.answer)
		}
	}
}

func TestAlgebra_AcceptsEquivalentForms(t *testing.T) {
	g := NewAlgebra(nil)
	p := &problemgen.Problem{Answer: "x^2 + 5x + 6", Kind: problemgen.KindExpression}

	assert.True(t, g.Validate("x^2+5x+6", p).Correct)
	assert.True(t, g.Validate("(x+2)(x+3)", p).Correct)
	assert.True(t, g.Validate("6 + 5x + x^2", p).Correct)
	assert.False(t, g.Validate("x^2 + 6x + 5", p).Correct)
}

func TestPoly(t *testing.T) {
	tests := []struct {
		c2, c1, c0 int
		want       string
	}{
		{1, 5, 6, "x^2 + 5x + 6"},
		{2, -1, -3, "2x^2 - x - 3"},
		{-1, 0, 4, "-x^2 + 4"},
		{0, 3, 0, "3x"},
		{0, 0, 0, "0"},
		{0, 0, -7, "-7"},
	}
	for _, tt := range tests {
		if got := poly(tt.c2, tt.c1, tt.c0); got != tt.want {
			t.Errorf("poly(%d, %d, %d) = %q, want %q", tt.c2, tt.c1, tt.c0, got, tt.want)
		}
	}
}

func TestVectors_Formats(t *testing.T) {
	v := NewVectors()
	for level := 1; level <= 5; level++ {
		p := v.Generate(context.Background(), level)
		assert.True(t, v.Validate(p.Answer, p).Correct)
		assert.True(t, v.Validate("("+p.Answer[1:len(p.Answer)-1]+")", p).Correct, p.Answer)
	}
	assert.Equal(t, "[3, -1, 0]", formatVec([]int{3, -1, 0}))
}

func TestMeasurement_RejectsWrongPrecision(t *testing.T) {
	m := NewMeasurement()
	p := &problemgen.Problem{Answer: "6.25", SigFigs: 3, Kind: problemgen.KindSigFig}

	assert.True(t, m.Validate("6.25", p).Correct)
	v := m.Validate("6,3", p)
	assert.False(t, v.Correct)
	assert.Contains(t, v.Feedback, "precision")
}

type brokenGen struct{ panics bool }

func (b brokenGen) ID() string   { return "broken" }
func (b brokenGen) Name() string { return "Broken" }
func (b brokenGen) Generate(context.Context, int) *problemgen.Problem {
	if b.panics {
		panic("boom")
	}
	return &problemgen.Problem{ID: "x", Prompt: "1 + 1", Answer: "2"}
}
func (b brokenGen) Validate(string, *problemgen.Problem) problemgen.Verdict {
	return problemgen.Verdict{Feedback: "never"}
}

func TestCheck_ReportsFailures(t *testing.T) {
	failures, err := Check(context.Background(), []problemgen.Generator{brokenGen{}, brokenGen{panics: true}}, 1, 2)
	require.NoError(t, err)
	require.Len(t, failures, 10)
	for _, f := range failures {
		assert.Equal(t, "broken", f.Engine)
	}
}

func TestCheck_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, []problemgen.Generator{NewArithmetic()}, 5, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
