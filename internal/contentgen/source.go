// Package contentgen produces fresh practice problems from an LLM and
// shapes them for the adaptive engines.
package contentgen

import (
	"context"
	"errors"
	"regexp"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// ErrEmptyBatch is returned when a fetch yields no usable problems.
var ErrEmptyBatch = errors.New("content batch contained no usable problems")

// Request describes a batch to generate.
type Request struct {
	Topic      string
	Context    string
	Count      int
	Difficulty int

	// Exclude lists prompts the learner has already seen or that are
	// still queued; the generator is asked not to repeat them.
	Exclude []string
}

// Source fetches batches of problems from a content service.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]*problemgen.Problem, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, req Request) ([]*problemgen.Problem, error)

func (f SourceFunc) Fetch(ctx context.Context, req Request) ([]*problemgen.Problem, error) {
	return f(ctx, req)
}

// Formatter is a pure text transform applied to fetched problems before
// they are cached.
type Formatter func(string) string

// Chain composes formatters left to right. Nil entries are skipped.
func Chain(fs ...Formatter) Formatter {
	return func(s string) string {
		for _, f := range fs {
			if f != nil {
				s = f(s)
			}
		}
		return s
	}
}

var formulaDigits = regexp.MustCompile(`([A-Z][a-z]?|\))(\d+)`)

// ChemFormula rewrites element counts as subscripts: "H2SO4" becomes
// "H_{2}SO_{4}" and "Ca(OH)2" becomes "Ca(OH)_{2}".
func ChemFormula(s string) string {
	return formulaDigits.ReplaceAllString(s, "${1}_{${2}}")
}
