package mapping

import (
	"errors"
	"testing"

	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestNewSelectsStrategy(t *testing.T) {
	{ // Affine for straight sided simplices
		for _, et := range []utils.ElementType{utils.Line, utils.Triangle, utils.Tet} {
			m := New(et, quadrature.For(et, 2))
			_, ok := m.(*Affine)
			assert.True(t, ok, et.String())
			assert.Equal(t, et, m.Type())
		}
	}
	{ // Isoparametric otherwise
		for _, et := range []utils.ElementType{utils.Line3, utils.Triangle6, utils.Quad,
			utils.Quad9, utils.Tet10, utils.Hex, utils.Prism} {
			m := New(et, quadrature.For(et, 2))
			_, ok := m.(*Isoparametric)
			assert.True(t, ok, et.String())
		}
	}
	{ // Incompatible and empty rules are programmer errors
		assert.Panics(t, func() { New(utils.Quad, quadrature.Triangle(2)) })
		assert.Panics(t, func() { New(utils.Triangle, &quadrature.Rule{Dim: 2}) })
		assert.Panics(t, func() { New(utils.Triangle, nil) })
	}
}

func TestAffineTriangle(t *testing.T) {
	var (
		rule  = quadrature.Triangle(2)
		m     = New(utils.Triangle, rule)
		nodes = [][3]float64{{1, 1}, {3, 1}, {1, 2}}
	)
	require.NoError(t, m.Reinit(nodes, NeedPoints|NeedInverseJacobian))
	assert.InDelta(t, 1., floats.Sum(m.JxW()), 1.e-14)
	for q, x := range m.Points() {
		r := rule.Points[q]
		assert.InDelta(t, 1+2*r[0], x[0], 1.e-14)
		assert.InDelta(t, 1+r[1], x[1], 1.e-14)
	}
	// J = [[2,0],[0,1]]
	expected := mat.NewDense(2, 2, []float64{0.5, 0, 0, 1})
	for _, jinv := range m.InverseJacobians() {
		assert.True(t, mat.EqualApprox(expected, jinv, 1.e-14))
	}
}

func TestIsoparametricQuad(t *testing.T) {
	var (
		m = New(utils.Quad, quadrature.For(utils.Quad, 3))
		// trapezoid with area (2+1)/2*1
		nodes = [][3]float64{{0, 0}, {2, 0}, {1, 1}, {0, 1}}
	)
	require.NoError(t, m.Reinit(nodes, NeedInverseJacobian))
	assert.InDelta(t, 1.5, floats.Sum(m.JxW()), 1.e-13)
	// J varies across the element
	jinv := m.InverseJacobians()
	assert.False(t, mat.EqualApprox(jinv[0], jinv[len(jinv)-1], 1.e-10))
}

func TestVolumes(t *testing.T) {
	var (
		hex = [][3]float64{
			{0, 0, 0}, {2, 0, 0}, {2, 3, 0}, {0, 3, 0},
			{0, 0, 1}, {2, 0, 1}, {2, 3, 1}, {0, 3, 1},
		}
		tet   = [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		prism = [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 2}, {1, 0, 2}, {0, 1, 2}}
		line  = [][3]float64{{1}, {4}}
		line3 = [][3]float64{{1}, {4}, {2.5}}
	)
	cases := []struct {
		et     utils.ElementType
		nodes  [][3]float64
		volume float64
	}{
		{utils.Hex, hex, 6},
		{utils.Tet, tet, 1. / 6},
		{utils.Prism, prism, 1},
		{utils.Line, line, 3},
		{utils.Line3, line3, 3},
	}
	for _, c := range cases {
		m := New(c.et, quadrature.For(c.et, 2))
		require.NoError(t, m.Reinit(c.nodes, NeedPoints|NeedInverseJacobian))
		assert.InDelta(t, c.volume, floats.Sum(m.JxW()), 1.e-13, c.et.String())
	}
}

func TestDegenerate(t *testing.T) {
	{ // collinear triangle
		m := New(utils.Triangle, quadrature.Triangle(1))
		err := m.Reinit([][3]float64{{0, 0}, {1, 1}, {2, 2}}, NeedInverseJacobian)
		assert.True(t, errors.Is(err, ErrDegenerateElement))
	}
	{ // inverted (clockwise) triangle
		m := New(utils.Triangle, quadrature.Triangle(1))
		err := m.Reinit([][3]float64{{0, 0}, {0, 1}, {1, 0}}, 0)
		assert.ErrorIs(t, err, ErrDegenerateElement)
	}
	{ // bow tie quad
		m := New(utils.Quad, quadrature.For(utils.Quad, 3))
		err := m.Reinit([][3]float64{{0, 0}, {1, 1}, {1, 0}, {0, 1}}, NeedInverseJacobian)
		assert.ErrorIs(t, err, ErrDegenerateElement)
	}
	{ // wrong node count is a programmer error
		m := New(utils.Triangle, quadrature.Triangle(1))
		assert.Panics(t, func() { _ = m.Reinit([][3]float64{{0, 0}, {1, 0}}, 0) })
	}
}

func TestRegistry(t *testing.T) {
	var (
		rule = quadrature.Triangle(2)
		reg  = NewRegistry(rule)
	)
	assert.Equal(t, 0, reg.Len())
	m1 := reg.Get(utils.Triangle)
	m2 := reg.Get(utils.Triangle)
	assert.Same(t, m1, m2)
	reg.Get(utils.Triangle6)
	assert.Equal(t, 2, reg.Len())

	// an existing entry keeps its own tables
	b := Tabulate(utils.Triangle, rule)
	assert.Same(t, m1, reg.GetWithBasis(utils.Triangle, b))
	m3 := reg.GetWithBasis(utils.Quad, Tabulate(utils.Quad, quadrature.Gauss(2, 2)))
	assert.Equal(t, 3, reg.Len())
	assert.Same(t, m3, reg.Get(utils.Quad))
}

func TestNewWithBasis(t *testing.T) {
	var (
		rule = quadrature.Triangle(2)
		b    = Tabulate(utils.Triangle6, rule)
		m    = NewWithBasis(utils.Triangle6, rule, b)
	)
	// the mapping reads the given tables, it does not tabulate its own
	assert.Same(t, &b.Values[0][0], &m.Basis().Values[0][0])
	assert.Same(t, &b.Gradients[0][0], &m.Basis().Gradients[0][0])
	assert.Equal(t, b, New(utils.Triangle6, rule).Basis())

	nodes := [][3]float64{{0, 0}, {2, 0}, {0, 2}, {1, 0}, {1, 1}, {0, 1}}
	require.NoError(t, m.Reinit(nodes, NeedPoints))
	assert.InDelta(t, 2., floats.Sum(m.JxW()), 1.e-14)

	assert.Panics(t, func() { NewWithBasis(utils.Triangle, rule, b) })
	assert.Panics(t, func() { NewWithBasis(utils.Triangle6, quadrature.Triangle(1), b) })
	assert.Panics(t, func() { NewWithBasis(utils.Triangle6, rule, Basis{Values: b.Values}) })
}
