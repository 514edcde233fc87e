package mapping

import (
	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/utils"
)

// Registry owns one Mapping per element type. Entries are created on first
// use and never removed.
type Registry struct {
	rule     *quadrature.Rule
	mappings map[utils.ElementType]Mapping
}

func NewRegistry(rule *quadrature.Rule) *Registry {
	return &Registry{
		rule:     rule,
		mappings: make(map[utils.ElementType]Mapping),
	}
}

// Get fetches or creates the Mapping for et
func (r *Registry) Get(et utils.ElementType) (m Mapping) {
	var ok bool
	if m, ok = r.mappings[et]; !ok {
		m = New(et, r.rule)
		r.mappings[et] = m
	}
	return
}

// GetWithBasis is Get, creating a missing entry on basis instead of
// tabulating the basis again
func (r *Registry) GetWithBasis(et utils.ElementType, basis Basis) (m Mapping) {
	var ok bool
	if m, ok = r.mappings[et]; !ok {
		m = NewWithBasis(et, r.rule, basis)
		r.mappings[et] = m
	}
	return
}

// Len is the number of element types seen so far
func (r *Registry) Len() int { return len(r.mappings) }
