// Package mapping computes the geometric map from a reference element to a
// physical element: Jacobian determinants times quadrature weights, physical
// quadrature points and inverse Jacobians.
package mapping

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/shape"
	"github.com/notargets/gofe/utils"
	"gonum.org/v1/gonum/mat"
)

// MinDet is the smallest admissible Jacobian determinant relative to h^dim,
// where h is the bounding box size of the element
const MinDet = 1.e-14

// ErrDegenerateElement is returned when an element has an inverted or zero
// volume Jacobian at some quadrature point
var ErrDegenerateElement = errors.New("degenerate element")

// Flags select what Reinit computes besides JxW
type Flags uint8

const (
	NeedPoints Flags = 1 << iota
	NeedInverseJacobian
)

// Element is a mesh element handle
type Element interface {
	Type() utils.ElementType
	Nodes() [][3]float64
}

// Mapping computes geometric data for elements of one type on a fixed rule.
// Results are valid until the next call to Reinit.
type Mapping interface {
	Type() utils.ElementType
	Reinit(nodes [][3]float64, flags Flags) error
	JxW() []float64
	Points() [][3]float64
	InverseJacobians() []*mat.Dense // [q] dim x dim, d(ref)/d(phys)
	Basis() Basis
}

// Basis is the nodal basis of an element type tabulated at the points of a
// rule, indexed [quadrature point][node]. Gradients are in reference
// coordinates. A Mapping only reads it, so one Basis can be shared.
type Basis struct {
	Values    [][]float64
	Gradients [][][3]float64
}

// Tabulate evaluates the basis of et and its gradients at the points of rule
func Tabulate(et utils.ElementType, rule *quadrature.Rule) Basis {
	S, dSdR := shape.Evaluate(et, rule.Points, true)
	return Basis{Values: S, Gradients: dSdR}
}

// New returns the mapping strategy for et on rule
func New(et utils.ElementType, rule *quadrature.Rule) Mapping {
	checkRule(et, rule)
	return NewWithBasis(et, rule, Tabulate(et, rule))
}

// NewWithBasis is New on a basis already tabulated on rule. It panics if the
// tables do not match the rule and the element type.
func NewWithBasis(et utils.ElementType, rule *quadrature.Rule, basis Basis) Mapping {
	checkRule(et, rule)
	b := newBase(et, rule, basis)
	if et.IsAffine() {
		return &Affine{base: b}
	}
	return &Isoparametric{base: b}
}

// base holds what both strategies share: the basis tabulated on the rule
// and per quadrature point output buffers
type base struct {
	etype  utils.ElementType
	dim    int
	nverts int
	rule   *quadrature.Rule
	S      [][]float64      // [q][n]
	DSdR   [][][3]float64   // [q][n]
	jxw    []float64        // [q]
	points [][3]float64     // [q]
	DRdx   []*mat.Dense     // [q]
	DxdR   *mat.Dense       // scratch
}

func checkRule(et utils.ElementType, rule *quadrature.Rule) {
	if err := rule.Validate(); err != nil {
		panic(fmt.Errorf("mapping for %s: %w", et, err))
	}
	if !rule.Compatible(et) {
		panic(fmt.Errorf("quadrature rule (%s, dim %d) does not integrate over %s",
			rule.Family, rule.Dim, et))
	}
}

func checkBasis(et utils.ElementType, nq, nverts int, basis Basis) {
	if len(basis.Values) != nq || len(basis.Gradients) != nq {
		panic(fmt.Errorf("%s basis has %d values and %d gradient rows, rule has %d points",
			et, len(basis.Values), len(basis.Gradients), nq))
	}
	for q := 0; q < nq; q++ {
		if len(basis.Values[q]) != nverts || len(basis.Gradients[q]) != nverts {
			panic(fmt.Errorf("%s basis row %d does not have %d nodes", et, q, nverts))
		}
	}
}

func newBase(et utils.ElementType, rule *quadrature.Rule, basis Basis) (b base) {
	var (
		sh = shape.Get(et)
		nq = rule.Size()
	)
	checkBasis(et, nq, sh.NumFunctions(), basis)
	b = base{
		etype:  et,
		dim:    sh.Dim(),
		nverts: sh.NumFunctions(),
		rule:   rule,
		jxw:    make([]float64, nq),
		points: make([][3]float64, nq),
		DRdx:   make([]*mat.Dense, nq),
		DxdR:   mat.NewDense(sh.Dim(), sh.Dim(), nil),
	}
	b.S, b.DSdR = basis.Values, basis.Gradients
	for q := range b.DRdx {
		b.DRdx[q] = mat.NewDense(b.dim, b.dim, nil)
	}
	return
}

func (b *base) Type() utils.ElementType { return b.etype }

func (b *base) JxW() []float64 { return b.jxw }

func (b *base) Points() [][3]float64 { return b.points }

func (b *base) InverseJacobians() []*mat.Dense { return b.DRdx }

func (b *base) Basis() Basis { return Basis{Values: b.S, Gradients: b.DSdR} }

func (b *base) checkNodes(nodes [][3]float64) {
	if len(nodes) != b.nverts {
		panic(fmt.Errorf("%s element has %d nodes, need %d", b.etype, len(nodes), b.nverts))
	}
}

// calcPoints sets x(q) = sum_n S_n(q) x_n
func (b *base) calcPoints(nodes [][3]float64) {
	for q := range b.points {
		var x [3]float64
		for n, xn := range nodes {
			s := b.S[q][n]
			x[0] += s * xn[0]
			x[1] += s * xn[1]
			x[2] += s * xn[2]
		}
		b.points[q] = x
	}
}

// calcJacobian sets DxdR := sum_n x_n * dSdR_n(q), i.e. dx_i/dR_j, using the
// first dim physical coordinates, and returns its determinant
func (b *base) calcJacobian(nodes [][3]float64, q int) (det float64) {
	for i := 0; i < b.dim; i++ {
		for j := 0; j < b.dim; j++ {
			var sum float64
			for n, xn := range nodes {
				sum += xn[i] * b.DSdR[q][n][j]
			}
			b.DxdR.Set(i, j, sum)
		}
	}
	return mat.Det(b.DxdR)
}

// minDet scales MinDet by the element size so the test is unit independent
func (b *base) minDet(nodes [][3]float64) float64 {
	var h float64
	for i := 0; i < b.dim; i++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, xn := range nodes {
			lo = math.Min(lo, xn[i])
			hi = math.Max(hi, xn[i])
		}
		h = math.Max(h, hi-lo)
	}
	return MinDet * math.Pow(h, float64(b.dim))
}

// invert sets DRdx[q] := inv(DxdR)
func (b *base) invert(q int) (err error) {
	if err = b.DRdx[q].Inverse(b.DxdR); err != nil {
		return fmt.Errorf("%w: %s: cannot invert Jacobian at quadrature point %d: %v",
			ErrDegenerateElement, b.etype, q, err)
	}
	return
}

func (b *base) degenerate(det float64, q int) error {
	return fmt.Errorf("%w: %s: det(J) = %g at quadrature point %d", ErrDegenerateElement, b.etype, det, q)
}

// Affine maps straight sided simplices. The Jacobian is constant over the
// element and is computed once per Reinit.
type Affine struct {
	base
}

func (a *Affine) Reinit(nodes [][3]float64, flags Flags) (err error) {
	a.checkNodes(nodes)
	det := a.calcJacobian(nodes, 0)
	if det <= a.minDet(nodes) {
		return a.degenerate(det, 0)
	}
	for q, w := range a.rule.Weights {
		a.jxw[q] = det * w
	}
	if flags&NeedPoints != 0 {
		a.calcPoints(nodes)
	}
	if flags&NeedInverseJacobian != 0 {
		if err = a.invert(0); err != nil {
			return
		}
		for q := 1; q < len(a.DRdx); q++ {
			a.DRdx[q].Copy(a.DRdx[0])
		}
	}
	return
}

// Isoparametric maps elements whose Jacobian varies over the element:
// quadrilaterals, hexahedra, prisms and all quadratic elements
type Isoparametric struct {
	base
}

func (o *Isoparametric) Reinit(nodes [][3]float64, flags Flags) (err error) {
	o.checkNodes(nodes)
	minDet := o.minDet(nodes)
	for q, w := range o.rule.Weights {
		det := o.calcJacobian(nodes, q)
		if det <= minDet {
			return o.degenerate(det, q)
		}
		o.jxw[q] = det * w
		if flags&NeedInverseJacobian != 0 {
			if err = o.invert(q); err != nil {
				return
			}
		}
	}
	if flags&NeedPoints != 0 {
		o.calcPoints(nodes)
	}
	return
}
