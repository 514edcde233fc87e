package quadrature

// Triangle returns a rule on the unit triangle {r,s >= 0, r+s <= 1}
func Triangle(order int) *Rule {
	switch {
	case order <= 1:
		return &Rule{
			Points:  [][]float64{{1. / 3., 1. / 3.}},
			Weights: []float64{0.5},
			Dim:     2, Family: Simplex, Order: 1,
		}
	case order == 2:
		w := 1. / 6.
		return &Rule{
			Points:  [][]float64{{1. / 6., 1. / 6.}, {2. / 3., 1. / 6.}, {1. / 6., 2. / 3.}},
			Weights: []float64{w, w, w},
			Dim:     2, Family: Simplex, Order: 2,
		}
	case order <= 4:
		// Strang-Fix / Dunavant degree 4, 6 points
		var (
			a, wa = 0.445948490915965, 0.223381589678011 / 2
			b, wb = 0.091576213509771, 0.109951743655322 / 2
		)
		return &Rule{
			Points: [][]float64{
				{a, a}, {1 - 2*a, a}, {a, 1 - 2*a},
				{b, b}, {1 - 2*b, b}, {b, 1 - 2*b},
			},
			Weights: []float64{wa, wa, wa, wb, wb, wb},
			Dim:     2, Family: Simplex, Order: 4,
		}
	}
	return collapsedTriangle(order)
}

// collapsedTriangle maps a Gauss rule on the unit square onto the triangle:
// r = xi, s = eta*(1-xi), dA = (1-xi) dxi deta
func collapsedTriangle(order int) *Rule {
	var (
		n    = numGaussPoints(order + 1)
		x, w = legendre(n, 0, 1)
		R    = &Rule{Dim: 2, Family: Simplex, Order: 2*n - 2}
	)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xi, eta := x[i], x[j]
			R.Points = append(R.Points, []float64{xi, eta * (1 - xi)})
			R.Weights = append(R.Weights, w[i]*w[j]*(1-xi))
		}
	}
	return R
}

// Tet returns a rule on the unit tetrahedron {r,s,t >= 0, r+s+t <= 1}
func Tet(order int) *Rule {
	switch {
	case order <= 1:
		return &Rule{
			Points:  [][]float64{{0.25, 0.25, 0.25}},
			Weights: []float64{1. / 6.},
			Dim:     3, Family: Simplex, Order: 1,
		}
	case order == 2:
		var (
			a = 0.5854101966249685
			b = 0.1381966011250105
			w = 1. / 24.
		)
		return &Rule{
			Points:  [][]float64{{b, b, b}, {a, b, b}, {b, a, b}, {b, b, a}},
			Weights: []float64{w, w, w, w},
			Dim:     3, Family: Simplex, Order: 2,
		}
	}
	return collapsedTet(order)
}

// collapsedTet maps a Gauss rule on the unit cube onto the tetrahedron:
// r = xi, s = eta*(1-xi), t = zeta*(1-xi)*(1-eta), dV = (1-xi)^2 (1-eta)
func collapsedTet(order int) *Rule {
	var (
		n    = numGaussPoints(order + 2)
		x, w = legendre(n, 0, 1)
		R    = &Rule{Dim: 3, Family: Simplex, Order: 2*n - 3}
	)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				xi, eta, zeta := x[i], x[j], x[k]
				R.Points = append(R.Points, []float64{
					xi,
					eta * (1 - xi),
					zeta * (1 - xi) * (1 - eta),
				})
				R.Weights = append(R.Weights, w[i]*w[j]*w[k]*(1-xi)*(1-xi)*(1-eta))
			}
		}
	}
	return R
}

// Prism returns the product of a triangle rule and a Gauss line rule on [-1,1]
func Prism(order int) *Rule {
	var (
		tri  = Triangle(order)
		line = GaussLegendre(numGaussPoints(order))
		R    = &Rule{Dim: 3, Family: Wedge}
	)
	R.Order = tri.Order
	if line.Order < R.Order {
		R.Order = line.Order
	}
	for k, zp := range line.Points {
		for q, p := range tri.Points {
			R.Points = append(R.Points, []float64{p[0], p[1], zp[0]})
			R.Weights = append(R.Weights, tri.Weights[q]*line.Weights[k])
		}
	}
	return R
}
