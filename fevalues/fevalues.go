// Package fevalues evaluates finite element data at the quadrature points of
// one element at a time. Reference shape function tables are computed once per
// element type and reused; only the geometric map is recomputed per element.
//
// A FEValues is not safe for concurrent use. Parallel assembly gives each
// worker its own instance and shares only the quadrature rule.
package fevalues

import (
	"fmt"

	"github.com/notargets/gofe/mapping"
	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/utils"
)

type UpdateFlags uint8

const (
	UpdateJxW UpdateFlags = 1 << iota
	UpdateQuadraturePoints
	UpdateShapeValues
	UpdateShapeGradients

	UpdateDefault = UpdateJxW | UpdateQuadraturePoints | UpdateShapeValues | UpdateShapeGradients
)

func (f UpdateFlags) String() (s string) {
	names := []string{"JxW", "QuadraturePoints", "ShapeValues", "ShapeGradients"}
	for i, name := range names {
		if f&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		s = "None"
	}
	return
}

// ParseUpdateFlag converts a flag name as printed by String into its value
func ParseUpdateFlag(name string) (f UpdateFlags, err error) {
	switch name {
	case "JxW":
		f = UpdateJxW
	case "QuadraturePoints":
		f = UpdateQuadraturePoints
	case "ShapeValues":
		f = UpdateShapeValues
	case "ShapeGradients":
		f = UpdateShapeGradients
	case "Default":
		f = UpdateDefault
	default:
		err = fmt.Errorf("unknown update flag %q", name)
	}
	return
}

// mappingFlags translates what the caller wants into what the mapping must
// compute. JxW is always computed.
func (f UpdateFlags) mappingFlags() (mf mapping.Flags) {
	if f&UpdateQuadraturePoints != 0 {
		mf |= mapping.NeedPoints
	}
	if f&UpdateShapeGradients != 0 {
		mf |= mapping.NeedInverseJacobian
	}
	return
}

type FEValues struct {
	dim   int
	rule  *quadrature.Rule
	flags UpdateFlags

	refValues map[utils.ElementType]*ReferenceValues
	mappings  *mapping.Registry

	lastType utils.ElementType
	ref      *ReferenceValues // entry for lastType
	mapper   mapping.Mapping  // entry for lastType

	jxw       []float64
	points    [][3]float64
	values    [][]float64
	gradients [][][3]float64
}

// New creates a FEValues for elements of dimension dim integrated with rule.
// It panics if rule is nil, empty or of a different dimension.
func New(dim int, rule *quadrature.Rule, flags UpdateFlags) *FEValues {
	if err := rule.Validate(); err != nil {
		panic(fmt.Errorf("fevalues: %w", err))
	}
	if rule.Dim != dim {
		panic(fmt.Errorf("fevalues: quadrature rule has dimension %d, elements have dimension %d",
			rule.Dim, dim))
	}
	nq := rule.Size()
	fe := &FEValues{
		dim:       dim,
		rule:      rule,
		flags:     flags,
		refValues: make(map[utils.ElementType]*ReferenceValues),
		mappings:  mapping.NewRegistry(rule),
		lastType:  utils.Invalid,
	}
	if flags&UpdateJxW != 0 {
		fe.jxw = make([]float64, nq)
	}
	if flags&UpdateQuadraturePoints != 0 {
		fe.points = make([][3]float64, nq)
	}
	if flags&UpdateShapeValues != 0 {
		fe.values = make([][]float64, nq)
	}
	if flags&UpdateShapeGradients != 0 {
		fe.gradients = make([][][3]float64, nq)
	}
	return fe
}

// Reinit computes the requested data for elem. It returns an error wrapping
// mapping.ErrDegenerateElement if the element geometry is not invertible, and
// panics if elem is nil or does not match the quadrature rule. After an error
// the output buffers are unspecified until the next successful Reinit.
func (fe *FEValues) Reinit(elem mapping.Element) (err error) {
	if elem == nil {
		panic("fevalues: Reinit called with a nil element")
	}
	et := elem.Type()
	if et != fe.lastType || fe.ref == nil {
		fe.switchType(et)
	}
	fe.lastType = et

	if err = fe.mapper.Reinit(elem.Nodes(), fe.flags.mappingFlags()); err != nil {
		return
	}
	fe.fill()
	return
}

// switchType selects, building them if needed, the reference tables and the
// mapping of et
func (fe *FEValues) switchType(et utils.ElementType) {
	if d := et.GetDimension(); d != fe.dim {
		panic(fmt.Errorf("fevalues: element %s has dimension %d, FEValues has dimension %d",
			et, d, fe.dim))
	}
	if !fe.rule.Compatible(et) {
		panic(fmt.Errorf("fevalues: %s quadrature rule cannot integrate %s", fe.rule.Family, et))
	}
	ref, ok := fe.refValues[et]
	if !ok {
		ref = newReferenceValues(et, fe.rule, fe.flags)
		fe.refValues[et] = ref
	}
	fe.ref = ref
	fe.mapper = fe.mappings.GetWithBasis(et, ref.basis)
	fe.resize(ref.NumFunctions())
}

// resize makes the per point shape rows match the current number of shape
// functions, reusing storage when the length is unchanged
func (fe *FEValues) resize(nshape int) {
	if fe.values != nil {
		for q := range fe.values {
			if len(fe.values[q]) != nshape {
				fe.values[q] = make([]float64, nshape)
			}
		}
	}
	if fe.gradients != nil {
		for q := range fe.gradients {
			if len(fe.gradients[q]) != nshape {
				fe.gradients[q] = make([][3]float64, nshape)
			}
		}
	}
}

func (fe *FEValues) fill() {
	if fe.jxw != nil {
		copy(fe.jxw, fe.mapper.JxW())
	}
	if fe.points != nil {
		copy(fe.points, fe.mapper.Points())
	}
	if fe.values != nil {
		for q := range fe.values {
			copy(fe.values[q], fe.ref.ShapeValues[q])
		}
	}
	if fe.gradients != nil {
		var (
			dRdx = fe.mapper.InverseJacobians()
			dim  = fe.dim
		)
		for q, gq := range fe.gradients {
			var (
				jinv = dRdx[q]
				gref = fe.ref.ShapeGradients[q]
			)
			// dS/dx_i = sum_j dS/dR_j * dR_j/dx_i
			for n := range gq {
				var g [3]float64
				for i := 0; i < dim; i++ {
					for j := 0; j < dim; j++ {
						g[i] += gref[n][j] * jinv.At(j, i)
					}
				}
				gq[n] = g
			}
		}
	}
}

// JxW returns the Jacobian determinant times the quadrature weight at each point
func (fe *FEValues) JxW() []float64 { return fe.jxw }

// QuadraturePoints returns the physical coordinates of the quadrature points
func (fe *FEValues) QuadraturePoints() [][3]float64 { return fe.points }

// ShapeValues is indexed [quadrature point][shape function]
func (fe *FEValues) ShapeValues() [][]float64 { return fe.values }

// ShapeGradients is indexed [quadrature point][shape function] and holds
// physical gradients
func (fe *FEValues) ShapeGradients() [][][3]float64 { return fe.gradients }

func (fe *FEValues) NumQuadraturePoints() int { return fe.rule.Size() }

func (fe *FEValues) Flags() UpdateFlags { return fe.flags }

func (fe *FEValues) Dim() int { return fe.dim }

// Rule returns the quadrature rule shared by all elements
func (fe *FEValues) Rule() *quadrature.Rule { return fe.rule }

// ElementType is the type of the element passed to the last Reinit
func (fe *FEValues) ElementType() utils.ElementType { return fe.lastType }

// ReferenceValues returns the cached tables for et, if et has been seen
func (fe *FEValues) ReferenceValues(et utils.ElementType) (rv *ReferenceValues, ok bool) {
	rv, ok = fe.refValues[et]
	return
}

func (fe *FEValues) NumReferenceValues() int { return len(fe.refValues) }

func (fe *FEValues) NumMappings() int { return fe.mappings.Len() }
