// Package quadrature provides reference-element quadrature rules. A Rule is
// immutable once built and can be shared read-only between goroutines.
package quadrature

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/gofe/utils"
)

// Family identifies the reference domain a rule integrates over
type Family uint8

const (
	Tensor  Family = iota // [-1,1]^dim
	Simplex               // unit simplex with a vertex at the origin
	Wedge                 // unit triangle x [-1,1]
)

func (f Family) String() string {
	return [...]string{"Tensor", "Simplex", "Wedge"}[f]
}

// FamilyOf returns the reference domain family of an element type
func FamilyOf(et utils.ElementType) Family {
	switch et {
	case utils.Triangle, utils.Triangle6, utils.Tet, utils.Tet10:
		return Simplex
	case utils.Prism:
		return Wedge
	default:
		return Tensor
	}
}

// ReferenceMeasure is the length/area/volume of the reference domain
func ReferenceMeasure(f Family, dim int) float64 {
	switch f {
	case Simplex:
		// 1/dim!
		m := 1.
		for i := 2; i <= dim; i++ {
			m /= float64(i)
		}
		return m
	case Wedge:
		return 1.
	default:
		return math.Pow(2, float64(dim))
	}
}

// Rule is an ordered set of reference points and weights
type Rule struct {
	Points  [][]float64 // [nq][Dim]
	Weights []float64   // [nq]
	Dim     int
	Family  Family
	Order   int // highest polynomial degree integrated exactly
}

// Size returns the number of quadrature points
func (r *Rule) Size() int { return len(r.Weights) }

// Measure returns the sum of the weights
func (r *Rule) Measure() (m float64) {
	for _, w := range r.Weights {
		m += w
	}
	return
}

// Compatible reports whether the rule integrates over the reference domain of et
func (r *Rule) Compatible(et utils.ElementType) bool {
	return et.GetDimension() == r.Dim && FamilyOf(et) == r.Family
}

var ErrEmptyRule = errors.New("quadrature rule has no points")

// Validate checks the structural invariants of a rule
func (r *Rule) Validate() error {
	if r == nil || len(r.Points) == 0 {
		return ErrEmptyRule
	}
	if len(r.Points) != len(r.Weights) {
		return fmt.Errorf("quadrature rule has %d points and %d weights", len(r.Points), len(r.Weights))
	}
	if r.Dim < 1 || r.Dim > 3 {
		return fmt.Errorf("quadrature rule dimension %d out of range", r.Dim)
	}
	for q, p := range r.Points {
		if len(p) != r.Dim {
			return fmt.Errorf("quadrature point %d has %d coordinates, rule dimension is %d", q, len(p), r.Dim)
		}
	}
	return nil
}

// For returns a rule for the reference domain of et exact to the given degree
func For(et utils.ElementType, order int) *Rule {
	if order < 1 {
		order = 1
	}
	switch FamilyOf(et) {
	case Simplex:
		if et.GetDimension() == 2 {
			return Triangle(order)
		}
		return Tet(order)
	case Wedge:
		return Prism(order)
	default:
		if et == utils.Invalid {
			panic(fmt.Errorf("no quadrature rule for element type %s", et))
		}
		return Gauss(et.GetDimension(), order)
	}
}
