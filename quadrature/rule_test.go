package quadrature

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofe/utils"
)

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// exact monomial integrals over the reference domains
func exactSimplex(a []int) float64 {
	num, sum := 1., 0
	for _, e := range a {
		num *= factorial(e)
		sum += e
	}
	return num / factorial(sum+len(a))
}

func exactLine(a int) float64 {
	if a%2 == 1 {
		return 0
	}
	return 2. / float64(a+1)
}

func integrate(R *Rule, f func(p []float64) float64) (sum float64) {
	for q, p := range R.Points {
		sum += R.Weights[q] * f(p)
	}
	return
}

func TestRuleMeasure(t *testing.T) {
	for _, et := range []utils.ElementType{utils.Line, utils.Triangle, utils.Quad, utils.Tet, utils.Hex, utils.Prism} {
		for order := 1; order <= 8; order++ {
			t.Run(fmt.Sprintf("%s/order=%d", et, order), func(t *testing.T) {
				R := For(et, order)
				require.NoError(t, R.Validate())
				assert.True(t, R.Compatible(et))
				assert.GreaterOrEqual(t, R.Order, order)
				assert.InDelta(t, ReferenceMeasure(R.Family, R.Dim), R.Measure(), 1.e-13)
				for q, p := range R.Points {
					assert.Greater(t, R.Weights[q], 0.)
					switch R.Family {
					case Simplex:
						s := 0.
						for _, x := range p {
							assert.GreaterOrEqual(t, x, 0.)
							s += x
						}
						assert.LessOrEqual(t, s, 1.)
					case Tensor:
						for _, x := range p {
							assert.LessOrEqual(t, math.Abs(x), 1.)
						}
					}
				}
			})
		}
	}
}

func TestTriangleExactness(t *testing.T) {
	for order := 1; order <= 9; order++ {
		R := Triangle(order)
		for a := 0; a <= R.Order; a++ {
			for b := 0; a+b <= R.Order; b++ {
				got := integrate(R, func(p []float64) float64 {
					return math.Pow(p[0], float64(a)) * math.Pow(p[1], float64(b))
				})
				assert.InDeltaf(t, exactSimplex([]int{a, b}), got, 1.e-12,
					"order %d monomial r^%d s^%d", order, a, b)
			}
		}
	}
}

func TestTetExactness(t *testing.T) {
	for order := 1; order <= 6; order++ {
		R := Tet(order)
		for a := 0; a <= R.Order; a++ {
			for b := 0; a+b <= R.Order; b++ {
				for c := 0; a+b+c <= R.Order; c++ {
					got := integrate(R, func(p []float64) float64 {
						return math.Pow(p[0], float64(a)) * math.Pow(p[1], float64(b)) * math.Pow(p[2], float64(c))
					})
					assert.InDeltaf(t, exactSimplex([]int{a, b, c}), got, 1.e-12,
						"order %d monomial r^%d s^%d t^%d", order, a, b, c)
				}
			}
		}
	}
}

func TestTensorExactness(t *testing.T) {
	for order := 1; order <= 7; order++ {
		R := Gauss(2, order)
		for a := 0; a <= R.Order; a++ {
			for b := 0; b <= R.Order; b++ {
				got := integrate(R, func(p []float64) float64 {
					return math.Pow(p[0], float64(a)) * math.Pow(p[1], float64(b))
				})
				assert.InDelta(t, exactLine(a)*exactLine(b), got, 1.e-12)
			}
		}
	}
	R := Gauss(3, 3)
	assert.Equal(t, 8, R.Size())
	got := integrate(R, func(p []float64) float64 { return p[0] * p[0] * p[1] * p[1] * p[2] * p[2] })
	assert.InDelta(t, 8./27., got, 1.e-13)
}

func TestPrismExactness(t *testing.T) {
	R := Prism(2)
	got := integrate(R, func(p []float64) float64 { return p[0] * p[2] * p[2] })
	// int_tri r = 1/6, int_line z^2 = 2/3
	assert.InDelta(t, 1./6.*2./3., got, 1.e-13)
}

func TestValidate(t *testing.T) {
	var R *Rule
	assert.ErrorIs(t, R.Validate(), ErrEmptyRule)
	assert.ErrorIs(t, (&Rule{Dim: 2}).Validate(), ErrEmptyRule)
	assert.Error(t, (&Rule{Points: [][]float64{{0, 0}}, Weights: []float64{1, 1}, Dim: 2}).Validate())
	assert.Error(t, (&Rule{Points: [][]float64{{0}}, Weights: []float64{1}, Dim: 2}).Validate())
	assert.Error(t, (&Rule{Points: [][]float64{{0, 0, 0, 0}}, Weights: []float64{1}, Dim: 4}).Validate())
	assert.False(t, Triangle(2).Compatible(utils.Quad))
	assert.False(t, Triangle(2).Compatible(utils.Tet))
	assert.True(t, Triangle(2).Compatible(utils.Triangle6))
	assert.Panics(t, func() { For(utils.Invalid, 2) })
}
