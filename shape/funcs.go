package shape

var (
	qua9Coords = [][]float64{
		{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
		{0, -1}, {1, 0}, {0, 1}, {-1, 0},
		{0, 0},
	}
	hex8Coords = [][]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	// edges of the quadratic simplices as pairs of barycentric indices, in
	// Gmsh order of the mid-edge nodes
	tri6Edges  = [][2]int{{0, 1}, {1, 2}, {2, 0}}
	tet10Edges = [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 0}, {3, 2}, {3, 1}}
)

// FuncLin2 calculates the shape functions (S) and derivatives of shape functions (dSdR) of lin2
// elements
//
//	-1     0    +1
//	 0-----------1-->r
func FuncLin2(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	S[0] = 0.5 * (1.0 - r[0])
	S[1] = 0.5 * (1.0 + r[0])
	if !derivs {
		return
	}
	dSdR[0] = [3]float64{-0.5}
	dSdR[1] = [3]float64{0.5}
}

// FuncLin3 calculates the shape functions (S) and derivatives of shape functions (dSdR) of lin3
// elements
//
//	-1     0    +1
//	 0-----2-----1-->r
func FuncLin3(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	for i, x := range []float64{-1, 1, 0} {
		if derivs {
			var d float64
			S[i], d = lagrange3(r[0], x)
			dSdR[i] = [3]float64{d}
		} else {
			S[i], _ = lagrange3(r[0], x)
		}
	}
}

// FuncTri3 calculates the shape functions (S) and derivatives of shape functions (dSdR) of tri3
// elements
//
//	s
//	|
//	2
//	|`.
//	|  `.
//	0-----1 --r
func FuncTri3(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	S[0] = 1.0 - r[0] - r[1]
	S[1] = r[0]
	S[2] = r[1]
	if !derivs {
		return
	}
	dSdR[0] = [3]float64{-1, -1}
	dSdR[1] = [3]float64{1, 0}
	dSdR[2] = [3]float64{0, 1}
}

// FuncTri6 calculates the shape functions (S) and derivatives of shape functions (dSdR) of tri6
// elements
//
//	s
//	|
//	2
//	|`.
//	5  `4
//	|    `.
//	0--3---1 --r
func FuncTri6(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	L := []float64{1.0 - r[0] - r[1], r[0], r[1]}
	dL := [][3]float64{{-1, -1}, {1, 0}, {0, 1}}
	quadraticSimplex(S, dSdR, L, dL, tri6Edges, derivs)
}

// FuncQua4 calculates the shape functions (S) and derivatives of shape functions (dSdR) of qua4
// elements
//
//	 3-----------2
//	 |     s     |
//	 |     |     |
//	 |     +--r  |
//	 |           |
//	 0-----------1
func FuncQua4(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	for i, x := range [][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		S[i] = 0.25 * (1.0 + x[0]*r[0]) * (1.0 + x[1]*r[1])
		if derivs {
			dSdR[i] = [3]float64{
				0.25 * x[0] * (1.0 + x[1]*r[1]),
				0.25 * x[1] * (1.0 + x[0]*r[0]),
			}
		}
	}
}

// FuncQua9 calculates the shape functions (S) and derivatives of shape functions (dSdR) of qua9
// elements
//
//	 3-----6-----2
//	 |     s     |
//	 |     |     |
//	 7     8--r  5
//	 |           |
//	 0-----4-----1
func FuncQua9(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	for i, x := range qua9Coords {
		lr, dr := lagrange3(r[0], x[0])
		ls, ds := lagrange3(r[1], x[1])
		S[i] = lr * ls
		if derivs {
			dSdR[i] = [3]float64{dr * ls, lr * ds}
		}
	}
}

// FuncTet4 calculates the shape functions (S) and derivatives of shape functions (dSdR) of tet4
// elements
func FuncTet4(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	S[0] = 1.0 - r[0] - r[1] - r[2]
	S[1] = r[0]
	S[2] = r[1]
	S[3] = r[2]
	if !derivs {
		return
	}
	dSdR[0] = [3]float64{-1, -1, -1}
	dSdR[1] = [3]float64{1, 0, 0}
	dSdR[2] = [3]float64{0, 1, 0}
	dSdR[3] = [3]float64{0, 0, 1}
}

// FuncTet10 calculates the shape functions (S) and derivatives of shape functions (dSdR) of tet10
// elements. Mid-edge nodes 4..9 sit on edges 0-1, 1-2, 2-0, 3-0, 3-2, 3-1.
func FuncTet10(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	L := []float64{1.0 - r[0] - r[1] - r[2], r[0], r[1], r[2]}
	dL := [][3]float64{{-1, -1, -1}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	quadraticSimplex(S, dSdR, L, dL, tet10Edges, derivs)
}

// FuncHex8 calculates the shape functions (S) and derivatives of shape functions (dSdR) of hex8
// elements
func FuncHex8(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	for i, x := range hex8Coords {
		a := 1.0 + x[0]*r[0]
		b := 1.0 + x[1]*r[1]
		c := 1.0 + x[2]*r[2]
		S[i] = 0.125 * a * b * c
		if derivs {
			dSdR[i] = [3]float64{
				0.125 * x[0] * b * c,
				0.125 * x[1] * a * c,
				0.125 * x[2] * a * b,
			}
		}
	}
}

// FuncPri6 calculates the shape functions (S) and derivatives of shape functions (dSdR) of pri6
// elements: the tri3 functions in (r,s) times the lin2 functions in t
func FuncPri6(S []float64, dSdR [][3]float64, r []float64, derivs bool) {
	L := []float64{1.0 - r[0] - r[1], r[0], r[1]}
	dL := [][3]float64{{-1, -1}, {1, 0}, {0, 1}}
	for layer, z := range []float64{-1, 1} {
		lz := 0.5 * (1.0 + z*r[2])
		for i := 0; i < 3; i++ {
			n := 3*layer + i
			S[n] = L[i] * lz
			if derivs {
				dSdR[n] = [3]float64{dL[i][0] * lz, dL[i][1] * lz, 0.5 * z * L[i]}
			}
		}
	}
}

// lagrange3 is the 1D quadratic Lagrange polynomial on nodes {-1,0,1} that is
// one at node x, and its derivative, evaluated at r
func lagrange3(r, x float64) (l, dl float64) {
	switch {
	case x < 0:
		return 0.5 * r * (r - 1.0), r - 0.5
	case x > 0:
		return 0.5 * r * (r + 1.0), r + 0.5
	default:
		return 1.0 - r*r, -2.0 * r
	}
}

// quadraticSimplex evaluates the complete quadratic basis of a simplex
// given its barycentric coordinates L and their constant gradients dL
func quadraticSimplex(S []float64, dSdR [][3]float64, L []float64, dL [][3]float64,
	edges [][2]int, derivs bool) {
	nc := len(L)
	for i := 0; i < nc; i++ {
		S[i] = L[i] * (2.0*L[i] - 1.0)
		if derivs {
			f := 4.0*L[i] - 1.0
			dSdR[i] = [3]float64{f * dL[i][0], f * dL[i][1], f * dL[i][2]}
		}
	}
	for e, ij := range edges {
		a, b := ij[0], ij[1]
		n := nc + e
		S[n] = 4.0 * L[a] * L[b]
		if derivs {
			for d := 0; d < 3; d++ {
				dSdR[n][d] = 4.0 * (L[b]*dL[a][d] + L[a]*dL[b][d])
			}
		}
	}
}
