// Package engines assembles the built-in drill engines: computed
// generators, embedded YAML banks, adaptive adapters and mixes.
package engines

import (
	"embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/bank"
	"github.com/abhisek/drillgym/internal/contentgen"
	"github.com/abhisek/drillgym/internal/infinite"
	"github.com/abhisek/drillgym/internal/mix"
	"github.com/abhisek/drillgym/internal/problemgen"
	"github.com/abhisek/drillgym/internal/registry"
)

//go:embed banks/*.yaml
var bankFS embed.FS

// Options configures Build.
type Options struct {
	// Source feeds adaptive banks. Nil serves them as static banks.
	Source contentgen.Source

	// Adapter holds refill settings shared by all adaptive banks.
	Adapter infinite.Config

	// Equivalence checks algebra answers. Nil uses sampling.
	Equivalence answer.EquivalenceChecker

	Logger *zap.Logger
}

// Set is the assembled engine catalogue.
type Set struct {
	*registry.Registry

	adapters []*infinite.Adapter
}

// Adapters returns the adaptive engines.
func (s *Set) Adapters() []*infinite.Adapter {
	return s.adapters
}

// Wait blocks until in-flight refills finish.
func (s *Set) Wait() {
	for _, a := range s.adapters {
		a.Wait()
	}
}

// Banks returns the embedded banks.
func Banks() ([]*bank.Bank, error) {
	return bank.Load(bankFS, "banks")
}

var formatters = map[string]contentgen.Formatter{
	"chem": contentgen.ChemFormula,
}

// Build assembles every built-in engine into a registry.
func Build(opts Options) (*Set, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	banks, err := Banks()
	if err != nil {
		return nil, fmt.Errorf("load banks: %w", err)
	}

	arithmetic := NewArithmetic()
	fractions := NewFractions()
	algebra := NewAlgebra(opts.Equivalence)
	vectors := NewVectors()
	sigfigs := NewMeasurement()

	set := &Set{}
	gens := []problemgen.Generator{arithmetic, fractions, algebra, vectors, sigfigs}
	byID := make(map[string]problemgen.Generator, len(banks))
	for _, b := range banks {
		g, err := set.bankEngine(b, opts, logger)
		if err != nil {
			return nil, err
		}
		byID[b.ID] = g
		gens = append(gens, g)
	}

	mixes := []struct {
		id, name string
		parts    []problemgen.Generator
	}{
		{"math-mix", "Math Mix", []problemgen.Generator{arithmetic, fractions, algebra, vectors}},
		{"science-mix", "Science Mix", []problemgen.Generator{sigfigs, byID["elements"], byID["formulas"]}},
	}
	for _, m := range mixes {
		engine, err := mix.New(m.id, m.name, m.parts, mix.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		gens = append(gens, engine)
	}

	reg, err := registry.New(gens...)
	if err != nil {
		return nil, err
	}
	set.Registry = reg
	return set, nil
}

func (s *Set) bankEngine(b *bank.Bank, opts Options, logger *zap.Logger) (problemgen.Generator, error) {
	if !b.Adaptive || opts.Source == nil {
		return bank.NewGenerator(b), nil
	}

	cfg := opts.Adapter
	cfg.Topic = b.Topic
	cfg.Context = b.Context
	cfg.Format = formatters[b.Formatter]

	a, err := infinite.New(b.ID, b.Name, b.Problems(), opts.Source,
		infinite.WithConfig(cfg),
		infinite.WithLogger(logger.With(zap.String("engine", b.ID))))
	if err != nil {
		return nil, fmt.Errorf("adaptive engine %s: %w", b.ID, err)
	}
	s.adapters = append(s.adapters, a)
	return a, nil
}
