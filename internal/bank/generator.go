package bank

import (
	"context"
	"math/rand/v2"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// Generator serves a bank's problems at random. Entries above the
// requested level are skipped; an entry without a level suits every level.
type Generator struct {
	bank    *Bank
	checker answer.Checker
	intn    func(n int) int
}

// NewGenerator wraps b as a problem generator.
func NewGenerator(b *Bank) *Generator {
	return &Generator{bank: b, intn: rand.IntN}
}

func (g *Generator) ID() string   { return g.bank.ID }
func (g *Generator) Name() string { return g.bank.Name }

// Bank returns the backing bank.
func (g *Generator) Bank() *Bank { return g.bank }

func (g *Generator) Generate(_ context.Context, level int) *problemgen.Problem {
	level = problemgen.ClampLevel(level)

	var eligible []Entry
	for _, e := range g.bank.Entries {
		if e.Level <= level {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		eligible = g.bank.Entries
	}

	e := eligible[g.intn(len(eligible))]
	p := e.Problem(g.bank.ID)
	if p.Context == "" {
		p.Context = g.bank.Context
	}
	return p
}

func (g *Generator) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	return g.checker.Check(input, p)
}
