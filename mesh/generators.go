package mesh

import (
	"fmt"

	"github.com/notargets/gofe/utils"
)

// NewInterval meshes [x0,x1] with n Line or Line3 elements
func NewInterval(n int, x0, x1 float64, et utils.ElementType) *Mesh {
	if n < 1 {
		panic(fmt.Errorf("interval needs at least one element, got %d", n))
	}
	var (
		m     = NewMesh()
		order = et.GetOrder()
		np    = order*n + 1
		dx    = (x1 - x0) / float64(np-1)
	)
	for i := 0; i < np; i++ {
		m.Vertices = append(m.Vertices, [3]float64{x0 + float64(i)*dx})
	}
	for k := 0; k < n; k++ {
		switch et {
		case utils.Line:
			m.AddElement(et, []int{k, k + 1}, 0)
		case utils.Line3:
			m.AddElement(et, []int{2 * k, 2*k + 2, 2*k + 1}, 0)
		default:
			panic(fmt.Errorf("cannot build an interval of %s elements", et))
		}
	}
	m.BuildConnectivity()
	return m
}

// grid2D numbers the nodes of a structured (nx+1)x(ny+1) grid
type grid2D struct {
	nx, ny int
}

func (g grid2D) idx(i, j int) int { return j*(g.nx+1) + i }

func (g grid2D) vertices(x0, x1, y0, y1 float64) (verts [][3]float64) {
	var (
		dx = (x1 - x0) / float64(g.nx)
		dy = (y1 - y0) / float64(g.ny)
	)
	verts = make([][3]float64, 0, (g.nx+1)*(g.ny+1))
	for j := 0; j <= g.ny; j++ {
		for i := 0; i <= g.nx; i++ {
			verts = append(verts, [3]float64{x0 + float64(i)*dx, y0 + float64(j)*dy})
		}
	}
	return
}

// NewRectangle meshes [x0,x1]x[y0,y1] with nx by ny cells of Quad, Quad9,
// Triangle or Triangle6 elements. Each triangle cell is split along its
// lower-left to upper-right diagonal.
func NewRectangle(nx, ny int, x0, x1, y0, y1 float64, et utils.ElementType) *Mesh {
	if nx < 1 || ny < 1 {
		panic(fmt.Errorf("rectangle needs at least one cell per direction, got %dx%d", nx, ny))
	}
	var (
		m     = NewMesh()
		order = et.GetOrder()
		g     = grid2D{order * nx, order * ny}
	)
	m.Vertices = g.vertices(x0, x1, y0, y1)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			for _, verts := range rectangleCell(g, i, j, et) {
				m.AddElement(et, verts, 0)
			}
		}
	}
	m.BuildConnectivity()
	return m
}

// NewMixedRectangle alternates columns of quads and pairs of triangles
func NewMixedRectangle(nx, ny int, x0, x1, y0, y1 float64) *Mesh {
	var (
		m = NewMesh()
		g = grid2D{nx, ny}
	)
	m.Vertices = g.vertices(x0, x1, y0, y1)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			et := utils.Quad
			if i%2 == 1 {
				et = utils.Triangle
			}
			for _, verts := range rectangleCell(g, i, j, et) {
				m.AddElement(et, verts, 0)
			}
		}
	}
	m.BuildConnectivity()
	return m
}

// rectangleCell returns the elements covering cell (i,j), in Gmsh node order
func rectangleCell(g grid2D, i, j int, et utils.ElementType) [][]int {
	switch et {
	case utils.Quad:
		return [][]int{{g.idx(i, j), g.idx(i+1, j), g.idx(i+1, j+1), g.idx(i, j+1)}}
	case utils.Triangle:
		return [][]int{
			{g.idx(i, j), g.idx(i+1, j), g.idx(i+1, j+1)},
			{g.idx(i, j), g.idx(i+1, j+1), g.idx(i, j+1)},
		}
	case utils.Quad9:
		I, J := 2*i, 2*j
		return [][]int{{
			g.idx(I, J), g.idx(I+2, J), g.idx(I+2, J+2), g.idx(I, J+2),
			g.idx(I+1, J), g.idx(I+2, J+1), g.idx(I+1, J+2), g.idx(I, J+1),
			g.idx(I+1, J+1),
		}}
	case utils.Triangle6:
		I, J := 2*i, 2*j
		return [][]int{
			{
				g.idx(I, J), g.idx(I+2, J), g.idx(I+2, J+2),
				g.idx(I+1, J), g.idx(I+2, J+1), g.idx(I+1, J+1),
			},
			{
				g.idx(I, J), g.idx(I+2, J+2), g.idx(I, J+2),
				g.idx(I+1, J+1), g.idx(I+1, J+2), g.idx(I, J+1),
			},
		}
	default:
		panic(fmt.Errorf("cannot build a rectangle of %s elements", et))
	}
}

// NewBox meshes [x0,x1]x[y0,y1]x[z0,z1] with nx*ny*nz cells of Hex elements,
// six Tet elements per cell, or two Prism elements per cell
func NewBox(nx, ny, nz int, x0, x1, y0, y1, z0, z1 float64, et utils.ElementType) *Mesh {
	if nx < 1 || ny < 1 || nz < 1 {
		panic(fmt.Errorf("box needs at least one cell per direction, got %dx%dx%d", nx, ny, nz))
	}
	var (
		m   = NewMesh()
		dx  = (x1 - x0) / float64(nx)
		dy  = (y1 - y0) / float64(ny)
		dz  = (z1 - z0) / float64(nz)
		idx = func(i, j, k int) int { return (k*(ny+1)+j)*(nx+1) + i }
	)
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				m.Vertices = append(m.Vertices,
					[3]float64{x0 + float64(i)*dx, y0 + float64(j)*dy, z0 + float64(k)*dz})
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				// hex corners in Gmsh order
				c := []int{
					idx(i, j, k), idx(i+1, j, k), idx(i+1, j+1, k), idx(i, j+1, k),
					idx(i, j, k+1), idx(i+1, j, k+1), idx(i+1, j+1, k+1), idx(i, j+1, k+1),
				}
				switch et {
				case utils.Hex:
					m.AddElement(et, c, 0)
				case utils.Tet:
					for _, tet := range kuhnTets(c) {
						m.AddElement(et, m.orientTet(tet), 0)
					}
				case utils.Prism:
					m.AddElement(et, []int{c[0], c[1], c[2], c[4], c[5], c[6]}, 0)
					m.AddElement(et, []int{c[0], c[2], c[3], c[4], c[6], c[7]}, 0)
				default:
					panic(fmt.Errorf("cannot build a box of %s elements", et))
				}
			}
		}
	}
	m.BuildConnectivity()
	return m
}

// kuhnTets splits a hex into six tets sharing the diagonal from corner 0 to
// corner 6. Every path 0 -> 6 along three distinct axes gives one tet, so
// neighbouring hexes split their shared faces the same way.
func kuhnTets(c []int) (tets [][]int) {
	// corner index of the hex for a bit pattern x|y<<1|z<<2
	corner := [8]int{c[0], c[1], c[3], c[2], c[4], c[5], c[7], c[6]}
	axes := [][3]int{{1, 2, 4}, {1, 4, 2}, {2, 1, 4}, {2, 4, 1}, {4, 1, 2}, {4, 2, 1}}
	for _, a := range axes {
		p1 := a[0]
		p2 := p1 | a[1]
		tets = append(tets, []int{corner[0], corner[p1], corner[p2], corner[7]})
	}
	return
}

// orientTet swaps two vertices when needed so the tet has positive volume
func (m *Mesh) orientTet(t []int) []int {
	var (
		a, b, c, d = m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]], m.Vertices[t[3]]
		u          = [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		v          = [3]float64{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		w          = [3]float64{d[0] - a[0], d[1] - a[1], d[2] - a[2]}
		det        = u[0]*(v[1]*w[2]-v[2]*w[1]) - u[1]*(v[0]*w[2]-v[2]*w[0]) + u[2]*(v[0]*w[1]-v[1]*w[0])
	)
	if det < 0 {
		t[1], t[2] = t[2], t[1]
	}
	return t
}
