package turbulence

import (
	"fmt"

	"github.com/notargets/gofe/fevalues"
)

// Fields are nodal values of one element, in element node order
type Fields struct {
	K            []float64
	Omega        []float64
	Velocity     [][3]float64
	WallDistance []float64
	Rho          []float64
	Mu           []float64 // molecular viscosity
}

func (f Fields) check(n int) error {
	for name, l := range map[string]int{
		"k": len(f.K), "omega": len(f.Omega), "velocity": len(f.Velocity),
		"wall distance": len(f.WallDistance), "rho": len(f.Rho), "mu": len(f.Mu),
	} {
		if l != n {
			return fmt.Errorf("field %s has %d nodal values, element has %d", name, l, n)
		}
	}
	return nil
}

// Point holds the closure evaluated at one quadrature point
type Point struct {
	K, Omega           float64
	GradK, GradOmega   [3]float64
	WallDistance       float64
	StrainMag          float64
	MuT                float64
	F1, F2             float64
	Pk                 float64 // limited production of k
	DestructionK       float64
	ProductionOmega    float64
	DestructionOmega   float64
	CrossDiffusion     float64
	SourceK            float64
	SourceOmega        float64
	SigmaK, SigmaOmega float64
}

// Closure evaluates the SST model at the quadrature points of an element
type Closure struct {
	Constants
}

func NewClosure(c Constants) *Closure {
	return &Closure{Constants: c}
}

// Evaluate interpolates the nodal fields with the shape functions of the
// element last passed to fe.Reinit and evaluates the model at every
// quadrature point
func (cl *Closure) Evaluate(fe *fevalues.FEValues, f Fields) (pts []Point, err error) {
	need := fevalues.UpdateShapeValues | fevalues.UpdateShapeGradients
	if fe.Flags()&need != need {
		panic(fmt.Errorf("closure needs %s, FEValues computes %s", need, fe.Flags()))
	}
	var (
		S = fe.ShapeValues()
		G = fe.ShapeGradients()
	)
	if len(S) == 0 {
		panic("closure evaluated before Reinit")
	}
	if err = f.check(len(S[0])); err != nil {
		return
	}
	pts = make([]Point, len(S))
	for q := range S {
		var (
			p       = &pts[q]
			rho, mu float64
			velGrad [3][3]float64
		)
		for n, s := range S[q] {
			g := G[q][n]
			p.K += s * f.K[n]
			p.Omega += s * f.Omega[n]
			p.WallDistance += s * f.WallDistance[n]
			rho += s * f.Rho[n]
			mu += s * f.Mu[n]
			for i := 0; i < 3; i++ {
				p.GradK[i] += g[i] * f.K[n]
				p.GradOmega[i] += g[i] * f.Omega[n]
				for j := 0; j < 3; j++ {
					velGrad[i][j] += f.Velocity[n][i] * g[j]
				}
			}
		}
		if !(p.Omega > 0) || !(p.WallDistance > 0) || !(rho > 0) || p.K < 0 {
			return nil, fmt.Errorf("quadrature point %d: non physical state k=%g omega=%g d=%g rho=%g",
				q, p.K, p.Omega, p.WallDistance, rho)
		}
		cl.evaluatePoint(p, rho, mu/rho, velGrad)
	}
	return
}

func (cl *Closure) evaluatePoint(p *Point, rho, nu float64, velGrad [3][3]float64) {
	p.StrainMag = StrainRateMagnitude(velGrad)
	p.F2 = F2(cl.Arg2(p.K, p.WallDistance, nu, p.Omega))
	p.MuT = cl.TurbulentViscosity(rho, p.K, p.Omega, p.StrainMag, p.F2)
	p.Pk = cl.ProductionK(p.MuT, rho, p.K, p.Omega, velGrad)

	cdkw := cl.CDkw(rho, p.Omega, p.GradK, p.GradOmega)
	p.F1 = F1(cl.Arg1(p.K, p.Omega, p.WallDistance, nu, rho, cdkw))

	p.DestructionK = cl.DestructionK(rho, p.K, p.Omega)
	p.ProductionOmega = cl.ProductionOmega(p.F1, rho, p.MuT, p.Pk)
	p.DestructionOmega = cl.DestructionOmega(p.F1, rho, p.Omega)
	p.CrossDiffusion = cl.CrossDiffusionOmega(p.F1, rho, p.Omega, p.GradK, p.GradOmega)

	p.SourceK = p.Pk - p.DestructionK
	p.SourceOmega = p.ProductionOmega - p.DestructionOmega + p.CrossDiffusion
	p.SigmaK = cl.SigmaK(p.F1)
	p.SigmaOmega = cl.SigmaW(p.F1)
}
