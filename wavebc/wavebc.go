// Package wavebc provides boundary coefficients that generate first order
// Stokes waves at the inlet of a numerical wave tank. Coefficients follow the
// Robin form a u + b du/dn = g.
package wavebc

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/utils"
)

// ExtensionsFillable is the number of ghost layers the coefficients can fill
const ExtensionsFillable = 128

// Params describe the incident wave
type Params struct {
	Depth             float64 `json:"depth"`
	Omega             float64 `json:"omega"`
	Gravity           float64 `json:"gravitational_constant"`
	WaveNumber        float64 `json:"wave_number"`
	Amplitude         float64 `json:"amplitude"`
	NumInterfaceCells float64 `json:"num_interface_cells"`
}

// ParseParams reads wave parameters from YAML
func ParseParams(data []byte) (p Params, err error) {
	if err = yaml.Unmarshal(data, &p); err != nil {
		return
	}
	err = p.Validate()
	return
}

func (p Params) Validate() error {
	switch {
	case !(p.Depth > 0):
		return fmt.Errorf("wave depth must be positive, got %g", p.Depth)
	case !(p.Omega > 0):
		return fmt.Errorf("wave frequency must be positive, got %g", p.Omega)
	case !(p.Gravity > 0):
		return fmt.Errorf("gravitational constant must be positive, got %g", p.Gravity)
	case !(p.WaveNumber > 0):
		return fmt.Errorf("wave number must be positive, got %g", p.WaveNumber)
	case p.Amplitude < 0:
		return fmt.Errorf("wave amplitude must not be negative, got %g", p.Amplitude)
	case !(p.NumInterfaceCells > 0):
		return fmt.Errorf("num_interface_cells must be positive, got %g", p.NumInterfaceCells)
	}
	return nil
}

func (p Params) Print() {
	fmt.Printf("Wave: depth %g, omega %g, g %g, k %g, amplitude %g, interface cells %g\n",
		p.Depth, p.Omega, p.Gravity, p.WaveNumber, p.Amplitude, p.NumInterfaceCells)
}

// CoefStrategy sets the Robin coefficients at boundary location loc, position
// x, grid spacing h and time t. Location 2d is the lower side and 2d+1 the
// upper side of axis d.
type CoefStrategy interface {
	SetBcCoefs(loc int, x []float64, h, t float64) (a, b, g float64)
}

// Dirichlet imposes u = Value everywhere
type Dirichlet struct {
	Value float64
}

func (d Dirichlet) SetBcCoefs(int, []float64, float64, float64) (a, b, g float64) {
	return 1, 0, d.Value
}

// Coef imposes one velocity component of the incident wave at the x-lower
// boundary and defers to Fallback on every other boundary
type Coef struct {
	Params
	Component int
	Dim       int
	Fallback  CoefStrategy
}

func NewCoef(p Params, component, dim int) *Coef {
	if dim != 2 && dim != 3 {
		panic(fmt.Errorf("wave coefficients need dimension 2 or 3, got %d", dim))
	}
	if component < 0 || component >= dim {
		panic(fmt.Errorf("velocity component %d out of range for dimension %d", component, dim))
	}
	return &Coef{
		Params:    p,
		Component: component,
		Dim:       dim,
		Fallback:  Dirichlet{},
	}
}

func (c *Coef) NumberOfExtensionsFillable() int { return ExtensionsFillable }

// SmoothHeaviside is 1 below -alpha, 0 above alpha and a smooth ramp between
func SmoothHeaviside(phi, alpha float64) float64 {
	switch {
	case phi < -alpha:
		return 1
	case math.Abs(phi) <= alpha:
		return 1 - (0.5 + 0.5*phi/alpha + 1/(2*math.Pi)*math.Sin(math.Pi*phi/alpha))
	default:
		return 0
	}
}

// SetBcCoefs implements CoefStrategy. The vertical coordinate is the last one
// and is measured from the bottom.
func (c *Coef) SetBcCoefs(loc int, x []float64, h, t float64) (a, b, g float64) {
	if loc != 0 {
		return c.fallback().SetBcCoefs(loc, x, h, t)
	}
	if len(x) != c.Dim {
		panic(fmt.Errorf("position has %d coordinates, need %d", len(x), c.Dim))
	}
	var (
		alpha = c.NumInterfaceCells * h
		z     = x[c.Dim-1]
		theta = c.WaveNumber*x[0] - c.Omega*t
		eta   = c.Amplitude * math.Cos(theta)
		phi   = -eta + (z - c.Depth)
	)
	a, b = 1, 0
	g = SmoothHeaviside(phi, alpha) * c.velocity(z, theta)
	return
}

// velocity is the linear wave velocity component below the surface
func (c *Coef) velocity(z, theta float64) float64 {
	var (
		fac = c.Gravity * c.WaveNumber * c.Amplitude / c.Omega
		kd  = c.WaveNumber * c.Depth
	)
	switch c.Component {
	case 0:
		return fac * math.Cosh(c.WaveNumber*z) * math.Cos(theta) / math.Cosh(kd)
	case c.Dim - 1:
		return fac * math.Sinh(c.WaveNumber*z) * math.Sin(theta) / math.Cosh(kd)
	default:
		return 0
	}
}

func (c *Coef) fallback() CoefStrategy {
	if c.Fallback == nil {
		return Dirichlet{}
	}
	return c.Fallback
}

// ApplyToBoundary evaluates g at every node on the x-lower side of m at time
// t, using the mean element size as the grid spacing
func (c *Coef) ApplyToBoundary(m *mesh.Mesh, t float64) (nodes []int, g []float64) {
	var (
		lo, hi = m.Bounds()
		vol    = 1.
	)
	for d := 0; d < c.Dim; d++ {
		vol *= hi[d] - lo[d]
	}
	h := math.Pow(vol/float64(m.NumElements), 1/float64(c.Dim))
	for i, x := range m.Vertices {
		if math.Abs(x[0]-lo[0]) > utils.NODETOL*math.Max(1, math.Abs(lo[0])) {
			continue
		}
		_, _, gi := c.SetBcCoefs(0, x[:c.Dim], h, t)
		nodes = append(nodes, i)
		g = append(g, gi)
	}
	return
}
