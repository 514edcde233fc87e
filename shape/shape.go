// Package shape implements Lagrange shape functions on reference elements.
// Node orderings follow Gmsh so that connectivity read from .msh files can be
// used directly.
package shape

import (
	"fmt"

	"github.com/notargets/gofe/utils"
)

// Func evaluates all shape functions S[nverts] and, when derivs is set, their
// reference gradients dSdR[nverts] at reference point r.
type Func func(S []float64, dSdR [][3]float64, r []float64, derivs bool)

// Basis is a set of nodal shape functions on a reference element
type Basis interface {
	Type() utils.ElementType
	Dim() int
	NumFunctions() int
	// Eval fills S and, if dSdR is non nil, the reference gradients at r
	Eval(r []float64, S []float64, dSdR [][3]float64)
}

// Shape describes the Lagrange basis of one element type
type Shape struct {
	Etype     utils.ElementType
	Func      Func
	Gndim     int         // reference dimension
	Nverts    int         // number of shape functions == number of nodes
	NatCoords [][]float64 // reference node coordinates [nverts][gndim]
}

// Type returns the element type the basis belongs to
func (o *Shape) Type() utils.ElementType { return o.Etype }

// Eval implements Basis
func (o *Shape) Eval(r []float64, S []float64, dSdR [][3]float64) {
	o.Func(S, dSdR, r, dSdR != nil)
}

// NumFunctions returns the number of shape functions
func (o *Shape) NumFunctions() int { return o.Nverts }

// Dim returns the reference dimension
func (o *Shape) Dim() int { return o.Gndim }

// Evaluate tabulates the basis at a list of reference points. Rows are indexed
// by point, columns by shape function.
func (o *Shape) Evaluate(points [][]float64, derivs bool) (S [][]float64, dSdR [][][3]float64) {
	S = make([][]float64, len(points))
	if derivs {
		dSdR = make([][][3]float64, len(points))
	}
	scratch := make([][3]float64, o.Nverts)
	for q, r := range points {
		if len(r) != o.Gndim {
			panic(fmt.Errorf("reference point %d has dimension %d, %s needs %d", q, len(r), o.Type(), o.Gndim))
		}
		S[q] = make([]float64, o.Nverts)
		o.Func(S[q], scratch, r, derivs)
		if derivs {
			dSdR[q] = make([][3]float64, o.Nverts)
			copy(dSdR[q], scratch)
		}
	}
	return
}

// factory holds all Shapes available
var factory = make(map[utils.ElementType]*Shape)

// Lookup returns the Shape for et, if one is registered
func Lookup(et utils.ElementType) (s *Shape, ok bool) {
	s, ok = factory[et]
	return
}

// Get returns the Shape for et and panics for unsupported types
func Get(et utils.ElementType) *Shape {
	s, ok := factory[et]
	if !ok {
		panic(fmt.Errorf("no shape functions registered for element type %s", et))
	}
	return s
}

// Evaluate is a convenience wrapper around Get(et).Evaluate
func Evaluate(et utils.ElementType, points [][]float64, derivs bool) (S [][]float64, dSdR [][][3]float64) {
	return Get(et).Evaluate(points, derivs)
}

// NodeCoords returns the reference coordinates of the nodes of et
func NodeCoords(et utils.ElementType) [][]float64 {
	return Get(et).NatCoords
}

func register(s *Shape) {
	if _, ok := factory[s.Etype]; ok {
		panic(fmt.Errorf("shape functions for %s registered twice", s.Etype))
	}
	if len(s.NatCoords) != s.Nverts || s.Nverts != s.Etype.GetNumNodes() {
		panic(fmt.Errorf("inconsistent node count for %s", s.Etype))
	}
	factory[s.Etype] = s
}

var _ Basis = (*Shape)(nil)

func init() {
	register(&Shape{Etype: utils.Line, Func: FuncLin2, Gndim: 1, Nverts: 2,
		NatCoords: [][]float64{{-1}, {1}}})
	register(&Shape{Etype: utils.Line3, Func: FuncLin3, Gndim: 1, Nverts: 3,
		NatCoords: [][]float64{{-1}, {1}, {0}}})
	register(&Shape{Etype: utils.Triangle, Func: FuncTri3, Gndim: 2, Nverts: 3,
		NatCoords: [][]float64{{0, 0}, {1, 0}, {0, 1}}})
	register(&Shape{Etype: utils.Triangle6, Func: FuncTri6, Gndim: 2, Nverts: 6,
		NatCoords: [][]float64{{0, 0}, {1, 0}, {0, 1}, {0.5, 0}, {0.5, 0.5}, {0, 0.5}}})
	register(&Shape{Etype: utils.Quad, Func: FuncQua4, Gndim: 2, Nverts: 4,
		NatCoords: [][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}})
	register(&Shape{Etype: utils.Quad9, Func: FuncQua9, Gndim: 2, Nverts: 9,
		NatCoords: qua9Coords})
	register(&Shape{Etype: utils.Tet, Func: FuncTet4, Gndim: 3, Nverts: 4,
		NatCoords: [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}})
	register(&Shape{Etype: utils.Tet10, Func: FuncTet10, Gndim: 3, Nverts: 10,
		NatCoords: [][]float64{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
			{0.5, 0, 0}, {0.5, 0.5, 0}, {0, 0.5, 0},
			{0, 0, 0.5}, {0, 0.5, 0.5}, {0.5, 0, 0.5},
		}})
	register(&Shape{Etype: utils.Hex, Func: FuncHex8, Gndim: 3, Nverts: 8,
		NatCoords: hex8Coords})
	register(&Shape{Etype: utils.Prism, Func: FuncPri6, Gndim: 3, Nverts: 6,
		NatCoords: [][]float64{
			{0, 0, -1}, {1, 0, -1}, {0, 1, -1},
			{0, 0, 1}, {1, 0, 1}, {0, 1, 1},
		}})
}
