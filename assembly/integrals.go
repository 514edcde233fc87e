package assembly

import (
	"fmt"

	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/utils"
	"gonum.org/v1/gonum/floats"
)

// Measure returns the length, area or volume of the mesh
func (a *Assembler) Measure() (float64, error) {
	return a.Integrate(func([3]float64) float64 { return 1 })
}

// Integrate returns the integral of f over the mesh
func (a *Assembler) Integrate(f func(x [3]float64) float64) (sum float64, err error) {
	a.require(fevalues.UpdateJxW | fevalues.UpdateQuadraturePoints)
	workers, err := a.run(nil, func(w *worker, c mesh.Cell, fe *fevalues.FEValues) {
		jxw := fe.JxW()
		for q, x := range fe.QuadraturePoints() {
			w.sum += f(x) * jxw[q]
		}
	})
	if err != nil {
		return
	}
	partial := make([]float64, len(workers))
	for n, w := range workers {
		partial[n] = w.sum
	}
	sum = floats.Sum(partial)
	return
}

// LoadVector returns F_i = integral of f N_i, with one entry per mesh node
func (a *Assembler) LoadVector(f func(x [3]float64) float64) (F []float64, err error) {
	a.require(fevalues.UpdateJxW | fevalues.UpdateQuadraturePoints | fevalues.UpdateShapeValues)
	nv := len(a.Mesh.Vertices)
	init := func(w *worker) { w.vec = make([]float64, nv) }
	workers, err := a.run(init, func(w *worker, c mesh.Cell, fe *fevalues.FEValues) {
		var (
			jxw = fe.JxW()
			S   = fe.ShapeValues()
		)
		for q, x := range fe.QuadraturePoints() {
			fx := f(x) * jxw[q]
			for i, v := range c.Verts {
				w.vec[v] += fx * S[q][i]
			}
		}
	})
	if err != nil {
		return
	}
	F = make([]float64, nv)
	for _, w := range workers {
		floats.Add(F, w.vec)
	}
	return
}

// MassMatrix assembles M_ij = integral of N_i N_j over all mesh nodes
func (a *Assembler) MassMatrix() (utils.CSR, error) {
	a.require(fevalues.UpdateJxW | fevalues.UpdateShapeValues)
	return a.assembleMatrix("M", func(Ke utils.Matrix, fe *fevalues.FEValues) {
		var (
			jxw = fe.JxW()
			S   = fe.ShapeValues()
		)
		for q := range jxw {
			for i, si := range S[q] {
				for j, sj := range S[q] {
					Ke.AddAt(i, j, si*sj*jxw[q])
				}
			}
		}
	})
}

// StiffnessMatrix assembles K_ij = integral of grad N_i . grad N_j
func (a *Assembler) StiffnessMatrix() (utils.CSR, error) {
	a.require(fevalues.UpdateJxW | fevalues.UpdateShapeGradients)
	return a.assembleMatrix("K", func(Ke utils.Matrix, fe *fevalues.FEValues) {
		var (
			jxw = fe.JxW()
			G   = fe.ShapeGradients()
		)
		for q := range jxw {
			for i, gi := range G[q] {
				for j, gj := range G[q] {
					Ke.AddAt(i, j, (gi[0]*gj[0]+gi[1]*gj[1]+gi[2]*gj[2])*jxw[q])
				}
			}
		}
	})
}

// assembleMatrix accumulates element matrices into per worker sparse
// matrices and merges them in worker order
func (a *Assembler) assembleMatrix(name string, element func(Ke utils.Matrix, fe *fevalues.FEValues)) (R utils.CSR, err error) {
	nv := len(a.Mesh.Vertices)
	init := func(w *worker) { w.dok = utils.NewDOK(nv, nv) }
	workers, err := a.run(init, func(w *worker, c mesh.Cell, fe *fevalues.FEValues) {
		Ke := utils.NewMatrix(len(c.Verts), len(c.Verts))
		element(Ke, fe)
		w.dok.Scatter(c.Verts, Ke)
	})
	if err != nil {
		return
	}
	global := utils.NewDOK(nv, nv)
	for _, w := range workers {
		global.Merge(w.dok)
	}
	global.SetReadOnly(name)
	R = global.ToCSR()
	return
}

// require panics if the assembler was configured without flags an
// operation needs
func (a *Assembler) require(f fevalues.UpdateFlags) {
	if a.Flags&f != f {
		panic(fmt.Errorf("assembler flags %s lack %s", a.Flags, f&^a.Flags))
	}
}
