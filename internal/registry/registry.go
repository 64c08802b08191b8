// Package registry maps engine ids to generators.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// ErrDuplicateID is returned when two generators share an id.
var ErrDuplicateID = errors.New("registry: duplicate engine id")

// Registry is an immutable lookup table built once at startup.
type Registry struct {
	byID  map[string]problemgen.Generator
	order []string
}

// New builds a Registry. Generators keep their registration order for
// listing.
func New(gens ...problemgen.Generator) (*Registry, error) {
	r := &Registry{byID: make(map[string]problemgen.Generator, len(gens))}
	for _, g := range gens {
		if g == nil {
			return nil, fmt.Errorf("registry: nil generator")
		}
		id := g.ID()
		if _, ok := r.byID[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		r.byID[id] = g
		r.order = append(r.order, id)
	}
	return r, nil
}

// Get returns the generator for id.
func (r *Registry) Get(id string) (problemgen.Generator, bool) {
	g, ok := r.byID[id]
	return g, ok
}

// IDs returns all ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// All returns all generators in registration order.
func (r *Registry) All() []problemgen.Generator {
	out := make([]problemgen.Generator, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

// Sorted returns all ids in lexical order.
func (r *Registry) Sorted() []string {
	ids := r.IDs()
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered engines.
func (r *Registry) Len() int { return len(r.order) }
