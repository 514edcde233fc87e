package quadrature

import (
	"gonum.org/v1/gonum/integrate/quad"
)

// numGaussPoints is the smallest n with 2n-1 >= order
func numGaussPoints(order int) int {
	n := (order + 2) / 2
	if n < 1 {
		n = 1
	}
	return n
}

// legendre returns n Gauss-Legendre nodes and weights on [min,max]
func legendre(n int, min, max float64) (x, w []float64) {
	x = make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, min, max)
	return
}

// GaussLegendre returns the n-point rule on [-1,1]
func GaussLegendre(n int) *Rule {
	x, w := legendre(n, -1, 1)
	R := &Rule{
		Points:  make([][]float64, n),
		Weights: w,
		Dim:     1,
		Family:  Tensor,
		Order:   2*n - 1,
	}
	for i := range x {
		R.Points[i] = []float64{x[i]}
	}
	return R
}

// Gauss returns the tensor product Gauss-Legendre rule on [-1,1]^dim exact to order
func Gauss(dim, order int) *Rule {
	var (
		n    = numGaussPoints(order)
		x, w = legendre(n, -1, 1)
		R    = &Rule{Dim: dim, Family: Tensor, Order: 2*n - 1}
	)
	switch dim {
	case 1:
		return GaussLegendre(n)
	case 2:
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				R.Points = append(R.Points, []float64{x[i], x[j]})
				R.Weights = append(R.Weights, w[i]*w[j])
			}
		}
	case 3:
		for k := 0; k < n; k++ {
			for j := 0; j < n; j++ {
				for i := 0; i < n; i++ {
					R.Points = append(R.Points, []float64{x[i], x[j], x[k]})
					R.Weights = append(R.Weights, w[i]*w[j]*w[k])
				}
			}
		}
	default:
		panic("tensor Gauss rules are defined for dimensions 1 to 3")
	}
	return R
}
