// Package turbulence evaluates the pointwise terms of Menter's SST k-omega
// model: blending functions, eddy viscosity and the source terms of the k and
// omega equations.
package turbulence

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
)

const (
	SigmaK1      = 0.85
	SigmaK2      = 1.0
	BetaStar     = 0.09
	SqrtBetaStar = 0.3
	SigmaW1      = 0.5
	SigmaW2      = 0.856
	Kappa        = 0.41
	Beta1        = 0.075
	Beta2        = 0.0828
	A1           = 0.31

	// ProductionLimit bounds P_k by ProductionLimit * BetaStar * rho * k * omega
	ProductionLimit = 10.
	// CDkwMin keeps the cross diffusion term in Arg1 positive
	CDkwMin = 1.e-20
)

// Constants are the closure coefficients. Set 1 applies near walls (F1 = 1),
// set 2 in the free stream.
type Constants struct {
	SigmaK1  float64 `json:"sigma_k1"`
	SigmaK2  float64 `json:"sigma_k2"`
	SigmaW1  float64 `json:"sigma_w1"`
	SigmaW2  float64 `json:"sigma_w2"`
	Beta1    float64 `json:"beta1"`
	Beta2    float64 `json:"beta2"`
	BetaStar float64 `json:"beta_star"`
	A1       float64 `json:"a1"`
	Kappa    float64 `json:"kappa"`
}

func DefaultConstants() Constants {
	return Constants{
		SigmaK1: SigmaK1, SigmaK2: SigmaK2,
		SigmaW1: SigmaW1, SigmaW2: SigmaW2,
		Beta1: Beta1, Beta2: Beta2, BetaStar: BetaStar,
		A1: A1, Kappa: Kappa,
	}
}

// ParseConstants reads YAML overrides on top of the default constants
func ParseConstants(data []byte) (c Constants, err error) {
	c = DefaultConstants()
	if err = yaml.Unmarshal(data, &c); err != nil {
		return
	}
	err = c.Validate()
	return
}

func (c Constants) Validate() error {
	for name, v := range map[string]float64{
		"sigma_k1": c.SigmaK1, "sigma_k2": c.SigmaK2,
		"sigma_w1": c.SigmaW1, "sigma_w2": c.SigmaW2,
		"beta1": c.Beta1, "beta2": c.Beta2, "beta_star": c.BetaStar,
		"a1": c.A1, "kappa": c.Kappa,
	} {
		if !(v > 0) {
			return fmt.Errorf("turbulence constant %s must be positive, got %g", name, v)
		}
	}
	return nil
}

// Gamma1 and Gamma2 are the omega production coefficients of each set
func (c Constants) Gamma1() float64 {
	return c.Beta1/c.BetaStar - c.SigmaW1*c.Kappa*c.Kappa/math.Sqrt(c.BetaStar)
}

func (c Constants) Gamma2() float64 {
	return c.Beta2/c.BetaStar - c.SigmaW2*c.Kappa*c.Kappa/math.Sqrt(c.BetaStar)
}

func F1(arg1 float64) float64 {
	return math.Tanh(arg1 * arg1 * arg1 * arg1)
}

func F2(arg2 float64) float64 {
	return math.Tanh(arg2 * arg2)
}

func Blend(f1, one, two float64) float64 {
	return f1*one + (1-f1)*two
}

// SigmaK and SigmaW are the blended diffusion coefficients
func (c Constants) SigmaK(f1 float64) float64 { return Blend(f1, c.SigmaK1, c.SigmaK2) }

func (c Constants) SigmaW(f1 float64) float64 { return Blend(f1, c.SigmaW1, c.SigmaW2) }

func (c Constants) Arg2(k, d, nu, omega float64) float64 {
	t1 := 2 * math.Sqrt(k) / (c.BetaStar * omega * d)
	t2 := 500 * nu / (d * d * omega)
	return math.Max(t1, t2)
}

// CDkw is the positive part of the cross diffusion used by Arg1
func (c Constants) CDkw(rho, omega float64, dkdx, dOmegaDx [3]float64) float64 {
	term := 2 * rho * c.SigmaW2 * dot(dkdx, dOmegaDx) / omega
	return math.Max(term, CDkwMin)
}

func (c Constants) Arg1(k, omega, d, nu, rho, cdkw float64) float64 {
	d2 := d * d
	term1 := math.Sqrt(k) / (c.BetaStar * omega * d)
	term2 := 500 * nu / (d2 * omega)
	term3 := 4 * rho * c.SigmaW2 * k / (cdkw * d2)
	return math.Min(math.Max(term1, term2), term3)
}

// TurbulentViscosity is mu_t = rho a1 k / max(a1 omega, S F2)
func (c Constants) TurbulentViscosity(rho, k, omega, strainMag, f2 float64) float64 {
	return rho * c.A1 * k / math.Max(c.A1*omega, strainMag*f2)
}

// ProductionK is tau_ij du_i/dx_j with the Boussinesq Reynolds stress,
// limited to ProductionLimit times the destruction of k
func (c Constants) ProductionK(mut, rho, k, omega float64, velGrad [3][3]float64) float64 {
	var (
		S     = StrainRate(velGrad)
		trace = S[0][0] + S[1][1] + S[2][2]
		P     float64
	)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tau := 2 * mut * S[i][j]
			if i == j {
				tau -= 2. / 3. * (mut*trace + rho*k)
			}
			P += tau * velGrad[i][j]
		}
	}
	return math.Min(P, ProductionLimit*c.BetaStar*rho*k*omega)
}

func (c Constants) DestructionK(rho, k, omega float64) float64 {
	return c.BetaStar * rho * omega * k
}

func (c Constants) ProductionOmega(f1, rho, mut, P float64) float64 {
	if mut <= 0 {
		return 0
	}
	gamma := Blend(f1, c.Gamma1(), c.Gamma2())
	return gamma * rho * P / mut
}

func (c Constants) DestructionOmega(f1, rho, omega float64) float64 {
	beta := Blend(f1, c.Beta1, c.Beta2)
	return beta * rho * omega * omega
}

func (c Constants) CrossDiffusionOmega(f1, rho, omega float64, dkdx, dOmegaDx [3]float64) float64 {
	return 2 * (1 - f1) * rho * c.SigmaW2 * dot(dkdx, dOmegaDx) / omega
}

// StrainRate is the symmetric part of the velocity gradient du_i/dx_j
func StrainRate(velGrad [3][3]float64) (S [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			S[i][j] = 0.5 * (velGrad[i][j] + velGrad[j][i])
		}
	}
	return
}

// StrainRateMagnitude is sqrt(2 S_ij S_ij)
func StrainRateMagnitude(velGrad [3][3]float64) float64 {
	var (
		S   = StrainRate(velGrad)
		sum float64
	)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum += S[i][j] * S[i][j]
		}
	}
	return math.Sqrt(2 * sum)
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
