// Package mix provides a composite generator that draws each problem from a
// randomly chosen sub-generator and routes validation back to it.
package mix

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// SourceKey is the metadata key holding the originating generator id.
const SourceKey = "mix_source"

// ErrNoGenerators is returned when a mix is built without sub-generators.
var ErrNoGenerators = errors.New("mix: at least one generator is required")

// Engine is a composite Generator.
type Engine struct {
	id     string
	name   string
	gens   []problemgen.Generator
	byID   map[string]problemgen.Generator
	logger *zap.Logger
	intn   func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for unresolved sources.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRand overrides the sub-generator picker. Used in tests.
func WithRand(intn func(n int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

// New builds a mix over gens. It fails when gens is empty or contains
// duplicate ids.
func New(id, name string, gens []problemgen.Generator, opts ...Option) (*Engine, error) {
	if len(gens) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNoGenerators)
	}
	e := &Engine{
		id:     id,
		name:   name,
		gens:   append([]problemgen.Generator(nil), gens...),
		byID:   make(map[string]problemgen.Generator, len(gens)),
		logger: zap.NewNop(),
		intn:   rand.IntN,
	}
	for _, g := range gens {
		if _, dup := e.byID[g.ID()]; dup {
			return nil, fmt.Errorf("mix %s: duplicate generator %q", id, g.ID())
		}
		e.byID[g.ID()] = g
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) ID() string   { return e.id }
func (e *Engine) Name() string { return e.name }

// Sources returns the sub-generator ids in construction order.
func (e *Engine) Sources() []string {
	ids := make([]string, len(e.gens))
	for i, g := range e.gens {
		ids[i] = g.ID()
	}
	return ids
}

// Generate draws from a uniformly random sub-generator. The returned
// problem has its id namespaced by the mix, its source recorded under
// SourceKey and its context prefixed with the source's display name.
func (e *Engine) Generate(ctx context.Context, level int) *problemgen.Problem {
	g := e.gens[e.intn(len(e.gens))]
	p := g.Generate(ctx, level)
	if p == nil {
		p = problemgen.Fallback(g.ID())
	}

	out := p.WithMeta(SourceKey, g.ID())
	out.ID = e.id + ":" + p.ID
	if p.Context != "" {
		out.Context = g.Name() + " · " + p.Context
	} else {
		out.Context = g.Name()
	}
	return out
}

// Validate delegates to the generator recorded in the problem metadata.
// An unknown or missing source falls back to a case-insensitive
// comparison with the canonical answer.
func (e *Engine) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	src := p.Meta(SourceKey)
	if g, ok := e.byID[src]; ok {
		return g.Validate(input, p)
	}

	e.logger.Warn("mix: unresolved problem source, using plain comparison",
		zap.String("mix", e.id),
		zap.String("source", src),
		zap.String("problem", p.ID))

	if problemgen.EqualFoldTrim(input, p.Answer) {
		return problemgen.Verdict{Correct: true}
	}
	return problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The answer was %s.", p.Shown()),
	}
}
