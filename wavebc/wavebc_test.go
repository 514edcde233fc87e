package wavebc

import (
	"math"
	"testing"

	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tankParams() Params {
	return Params{
		Depth:             0.5,
		Omega:             2 * math.Pi,
		Gravity:           9.81,
		WaveNumber:        4,
		Amplitude:         0.02,
		NumInterfaceCells: 2,
	}
}

func TestSmoothHeaviside(t *testing.T) {
	alpha := 0.1
	assert.Equal(t, 1., SmoothHeaviside(-1, alpha))
	assert.Equal(t, 0., SmoothHeaviside(1, alpha))
	assert.InDelta(t, 0.5, SmoothHeaviside(0, alpha), 1.e-15)
	assert.InDelta(t, 1., SmoothHeaviside(-alpha, alpha), 1.e-15)
	assert.InDelta(t, 0., SmoothHeaviside(alpha, alpha), 1.e-15)
	prev := 1.
	for phi := -alpha; phi <= alpha; phi += alpha / 10 {
		H := SmoothHeaviside(phi, alpha)
		assert.LessOrEqual(t, H, prev+1.e-15)
		prev = H
	}
}

func TestInletVelocity2D(t *testing.T) {
	p := tankParams()
	var (
		x     = []float64{0, 0.1}
		h     = 0.01
		fac   = p.Gravity * p.WaveNumber * p.Amplitude / p.Omega
		theta = p.WaveNumber*x[0] - p.Omega*0.
	)
	u := NewCoef(p, 0, 2)
	a, b, g := u.SetBcCoefs(0, x, h, 0)
	assert.Equal(t, 1., a)
	assert.Equal(t, 0., b)
	assert.InDelta(t, fac*math.Cosh(0.4)*math.Cos(theta)/math.Cosh(2), g, 1.e-14)

	w := NewCoef(p, 1, 2)
	_, _, g = w.SetBcCoefs(0, x, h, 0.125)
	theta = -p.Omega * 0.125
	assert.InDelta(t, fac*math.Sinh(0.4)*math.Sin(theta)/math.Cosh(2), g, 1.e-14)

	// Above the interface band there is air and no velocity
	_, _, g = u.SetBcCoefs(0, []float64{0, 0.6}, h, 0)
	assert.Equal(t, 0., g)
}

func TestInletVelocity3D(t *testing.T) {
	p := tankParams()
	x := []float64{0.2, 0.3, 0.1}
	_, _, g := NewCoef(p, 1, 3).SetBcCoefs(0, x, 0.01, 0.3)
	assert.Equal(t, 0., g)
	_, _, gv := NewCoef(p, 2, 3).SetBcCoefs(0, x, 0.01, 0.3)
	_, _, gv2 := NewCoef(p, 1, 2).SetBcCoefs(0, []float64{0.2, 0.1}, 0.01, 0.3)
	assert.InDelta(t, gv2, gv, 1.e-15)
	assert.NotZero(t, gv)
}

func TestFallback(t *testing.T) {
	c := NewCoef(tankParams(), 0, 2)
	for loc := 1; loc < 4; loc++ {
		a, b, g := c.SetBcCoefs(loc, []float64{1, 0.1}, 0.01, 0)
		assert.Equal(t, [3]float64{1, 0, 0}, [3]float64{a, b, g})
	}
	c.Fallback = Dirichlet{Value: 2}
	_, _, g := c.SetBcCoefs(3, []float64{1, 0.1}, 0.01, 0)
	assert.Equal(t, 2., g)
	c.Fallback = nil
	_, _, g = c.SetBcCoefs(3, []float64{1, 0.1}, 0.01, 0)
	assert.Equal(t, 0., g)
	assert.Equal(t, 128, c.NumberOfExtensionsFillable())
}

func TestPreconditions(t *testing.T) {
	assert.Panics(t, func() { NewCoef(tankParams(), 0, 1) })
	assert.Panics(t, func() { NewCoef(tankParams(), 2, 2) })
	assert.Panics(t, func() { NewCoef(tankParams(), 0, 2).SetBcCoefs(0, []float64{0}, 0.1, 0) })
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]byte(`
depth: 0.5
omega: 6.283185307179586
gravitational_constant: 9.81
wave_number: 4
amplitude: 0.02
num_interface_cells: 2
`))
	require.NoError(t, err)
	assert.InDelta(t, tankParams().Omega, p.Omega, 1.e-15)
	assert.Equal(t, 9.81, p.Gravity)
	assert.Equal(t, 2., p.NumInterfaceCells)

	_, err = ParseParams([]byte("depth: 0.5\nomega: 0\n"))
	assert.Error(t, err)
	_, err = ParseParams([]byte("depth: [1"))
	assert.Error(t, err)
}

func TestApplyToBoundary(t *testing.T) {
	m := mesh.NewRectangle(4, 5, 0, 2, 0, 0.5, utils.Quad)
	c := NewCoef(tankParams(), 0, 2)
	nodes, g := c.ApplyToBoundary(m, 0)
	require.Len(t, nodes, 6)
	require.Len(t, g, 6)
	h := math.Sqrt(2 * 0.5 / 20)
	for i, n := range nodes {
		x := m.Vertices[n]
		assert.Equal(t, 0., x[0])
		_, _, want := c.SetBcCoefs(0, x[:2], h, 0)
		assert.InDelta(t, want, g[i], 1.e-15)
	}
}
