package fevalues

import (
	"github.com/notargets/gofe/mapping"
	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/utils"
)

// ReferenceValues holds the basis of one element type tabulated at the points
// of a quadrature rule, indexed [quadrature point][shape function]. Gradients
// are with respect to reference coordinates. Entries are immutable.
type ReferenceValues struct {
	Type           utils.ElementType
	ShapeValues    [][]float64
	ShapeGradients [][][3]float64

	// the full table, shared with the Mapping of Type
	basis mapping.Basis
}

// newReferenceValues tabulates the basis once. The gradients are always
// needed by the Jacobian but are exposed only when the flags ask for them.
func newReferenceValues(et utils.ElementType, rule *quadrature.Rule, flags UpdateFlags) *ReferenceValues {
	basis := mapping.Tabulate(et, rule)
	rv := &ReferenceValues{
		Type:        et,
		ShapeValues: basis.Values,
		basis:       basis,
	}
	if flags&UpdateShapeGradients != 0 {
		rv.ShapeGradients = basis.Gradients
	}
	return rv
}

func (rv *ReferenceValues) NumPoints() int { return len(rv.ShapeValues) }

func (rv *ReferenceValues) NumFunctions() int {
	if len(rv.ShapeValues) == 0 {
		return 0
	}
	return len(rv.ShapeValues[0])
}
