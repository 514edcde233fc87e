package assembly

import (
	"fmt"

	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/turbulence"
)

// ClosureSummary holds integrals of the SST closure over the mesh
type ClosureSummary struct {
	Points      int     // quadrature points evaluated
	MuT         float64 // integral of the eddy viscosity
	SourceK     float64 // integral of the k source, production minus destruction
	SourceOmega float64
	MaxMuT      float64
}

func (s *ClosureSummary) add(o ClosureSummary) {
	s.Points += o.Points
	s.MuT += o.MuT
	s.SourceK += o.SourceK
	s.SourceOmega += o.SourceOmega
	if o.MaxMuT > s.MaxMuT {
		s.MaxMuT = o.MaxMuT
	}
}

func (s ClosureSummary) Print() {
	fmt.Printf("SST closure: %d points, int(mu_t) %.6e, max(mu_t) %.6e, int(S_k) %.6e, int(S_omega) %.6e\n",
		s.Points, s.MuT, s.MaxMuT, s.SourceK, s.SourceOmega)
}

// EvaluateClosure evaluates cl at every quadrature point of the mesh, with
// the nodal fields of each element returned by fields, and integrates the
// eddy viscosity and the transport sources
func (a *Assembler) EvaluateClosure(cl *turbulence.Closure, fields func(c mesh.Cell) turbulence.Fields) (sum ClosureSummary, err error) {
	a.require(fevalues.UpdateJxW | fevalues.UpdateShapeValues | fevalues.UpdateShapeGradients)
	workers, err := a.run(nil, func(w *worker, c mesh.Cell, fe *fevalues.FEValues) {
		pts, perr := cl.Evaluate(fe, fields(c))
		if perr != nil {
			w.err = perr
			return
		}
		jxw := fe.JxW()
		for q, p := range pts {
			w.closure.add(ClosureSummary{
				Points:      1,
				MuT:         p.MuT * jxw[q],
				SourceK:     p.SourceK * jxw[q],
				SourceOmega: p.SourceOmega * jxw[q],
				MaxMuT:      p.MuT,
			})
		}
	})
	if err != nil {
		return
	}
	for _, w := range workers {
		sum.add(w.closure)
	}
	return
}
