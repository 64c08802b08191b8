package mix

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// countGen produces "id-n" problems whose answer is "<id>" and validates
// by suffix so that results differ per generator.
type countGen struct {
	id, name string
	n        int
}

func (g *countGen) ID() string   { return g.id }
func (g *countGen) Name() string { return g.name }

func (g *countGen) Generate(_ context.Context, level int) *problemgen.Problem {
	g.n++
	return &problemgen.Problem{
		ID:      fmt.Sprintf("%s-%d", g.id, g.n),
		Prompt:  fmt.Sprintf("%s question %d (level %d)", g.name, g.n, level),
		Answer:  strings.ToUpper(g.id),
		Context: "ctx",
	}
}

func (g *countGen) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	// Accept anything ending in the generator id, which plain comparison
	// would reject.
	if strings.HasSuffix(strings.ToLower(input), g.id) {
		return problemgen.Verdict{Correct: true}
	}
	return problemgen.Verdict{Correct: false, Feedback: g.id + " says no"}
}

func TestNew_EmptyFails(t *testing.T) {
	_, err := New("mix", "Mix", nil)
	require.ErrorIs(t, err, ErrNoGenerators)
}

func TestNew_DuplicateFails(t *testing.T) {
	a := &countGen{id: "a", name: "A"}
	_, err := New("mix", "Mix", []problemgen.Generator{a, a})
	require.Error(t, err)
}

func TestGenerate_AnnotatesProblem(t *testing.T) {
	a := &countGen{id: "alg", name: "Algebra"}
	e, err := New("mix-math", "Math Mix", []problemgen.Generator{a}, WithRand(func(int) int { return 0 }))
	require.NoError(t, err)

	p := e.Generate(context.Background(), 2)
	require.NotNil(t, p)
	assert.Equal(t, "mix-math:alg-1", p.ID)
	assert.Equal(t, "alg", p.Meta(SourceKey))
	assert.True(t, strings.HasPrefix(p.Context, "Algebra"), "context %q", p.Context)
	assert.Contains(t, p.Prompt, "level 2")
}

func TestGenerate_CoversAllSources(t *testing.T) {
	gens := []problemgen.Generator{
		&countGen{id: "a", name: "A"},
		&countGen{id: "b", name: "B"},
		&countGen{id: "c", name: "C"},
	}
	e, err := New("mix", "Mix", gens)
	require.NoError(t, err)

	seen := map[string]int{}
	for range 300 {
		p := e.Generate(context.Background(), 1)
		seen[p.Meta(SourceKey)]++
	}
	for _, g := range gens {
		assert.Greater(t, seen[g.ID()], 0, "source %s never drawn", g.ID())
	}
}

func TestValidate_AgreesWithSource(t *testing.T) {
	gens := []problemgen.Generator{
		&countGen{id: "a", name: "A"},
		&countGen{id: "b", name: "B"},
	}
	e, err := New("mix", "Mix", gens)
	require.NoError(t, err)

	byID := map[string]problemgen.Generator{"a": gens[0], "b": gens[1]}
	inputs := []string{"xa", "xb", "A", "B", ""}

	for range 100 {
		p := e.Generate(context.Background(), 1)
		src := byID[p.Meta(SourceKey)]
		require.NotNil(t, src)
		for _, in := range inputs {
			assert.Equal(t, src.Validate(in, p), e.Validate(in, p), "input %q on %s", in, p.ID)
		}
	}
}

func TestValidate_UnknownSourceFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e, err := New("mix", "Mix", []problemgen.Generator{&countGen{id: "a", name: "A"}}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	p := &problemgen.Problem{ID: "orphan", Prompt: "?", Answer: "Paris",
		Metadata: map[string]string{SourceKey: "gone"}}

	assert.True(t, e.Validate(" paris ", p).Correct)
	v := e.Validate("xa", p)
	assert.False(t, v.Correct)
	assert.Contains(t, v.Feedback, "Paris")
	assert.Equal(t, 2, logs.FilterMessageSnippet("unresolved").Len())

	noMeta := &problemgen.Problem{ID: "bare", Prompt: "?", Answer: "x"}
	assert.True(t, e.Validate("X", noMeta).Correct)
}
