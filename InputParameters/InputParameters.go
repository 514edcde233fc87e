package InputParameters

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/turbulence"
	"github.com/notargets/gofe/wavebc"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title           string               `json:"Title"`
	MeshFile        string               `json:"MeshFile"`
	QuadratureOrder int                  `json:"QuadratureOrder"`
	UpdateFlags     []string             `json:"UpdateFlags"`
	Workers         int                  `json:"Workers"`
	Partition       bool                 `json:"Partition"`
	WaveParams      *wavebc.Params       `json:"wave_parameters_db,omitempty"`
	Turbulence      turbulence.Constants `json:"Turbulence"`
}

func NewInputParameters() *InputParameters {
	return &InputParameters{
		QuadratureOrder: 2,
		UpdateFlags:     []string{"Default"},
		Turbulence:      turbulence.DefaultConstants(),
	}
}

// Parse overlays data onto the current values, so defaults survive for keys
// the file omits
func (ip *InputParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	return ip.Validate()
}

func ReadInputParameters(filename string) (ip *InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	ip = NewInputParameters()
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func (ip *InputParameters) Validate() (err error) {
	if ip.QuadratureOrder < 1 {
		return fmt.Errorf("QuadratureOrder must be at least 1, got %d", ip.QuadratureOrder)
	}
	if ip.Workers < 0 {
		return fmt.Errorf("Workers must not be negative, got %d", ip.Workers)
	}
	if _, err = ip.Flags(); err != nil {
		return
	}
	if ip.WaveParams != nil {
		if err = ip.WaveParams.Validate(); err != nil {
			return
		}
	}
	return ip.Turbulence.Validate()
}

// Flags combines the named update flags
func (ip *InputParameters) Flags() (flags fevalues.UpdateFlags, err error) {
	for _, name := range ip.UpdateFlags {
		var f fevalues.UpdateFlags
		if f, err = fevalues.ParseUpdateFlag(name); err != nil {
			return
		}
		flags |= f
	}
	if flags == 0 {
		flags = fevalues.UpdateDefault
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	fmt.Printf("[%d]\t\t\t\t= Quadrature Order\n", ip.QuadratureOrder)
	flags, _ := ip.Flags()
	fmt.Printf("[%s]\t= Update Flags\n", flags)
	fmt.Printf("[%d]\t\t\t\t= Workers\n", ip.Workers)
	fmt.Printf("[%t]\t\t\t= Partition\n", ip.Partition)
	t := ip.Turbulence
	fmt.Printf("SST: sigma_k = (%g, %g), sigma_w = (%g, %g), beta = (%g, %g), beta* = %g, a1 = %g, kappa = %g\n",
		t.SigmaK1, t.SigmaK2, t.SigmaW1, t.SigmaW2, t.Beta1, t.Beta2, t.BetaStar, t.A1, t.Kappa)
	if ip.WaveParams != nil {
		ip.WaveParams.Print()
	}
}
