package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/turbulence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileInput = []byte(`
Title: Wave Tank
MeshFile: tank.msh
QuadratureOrder: 3
UpdateFlags: [JxW, ShapeGradients]
Workers: 4
Partition: true
Turbulence:
  sigma_k1: 0.9
  beta_star: 0.1
wave_parameters_db:
  depth: 0.5
  omega: 6.283185307179586
  gravitational_constant: 9.81
  wave_number: 4
  amplitude: 0.02
  num_interface_cells: 2
`)

func TestParse(t *testing.T) {
	ip := NewInputParameters()
	require.NoError(t, ip.Parse(fileInput))
	assert.Equal(t, "Wave Tank", ip.Title)
	assert.Equal(t, "tank.msh", ip.MeshFile)
	assert.Equal(t, 3, ip.QuadratureOrder)
	assert.Equal(t, 4, ip.Workers)
	assert.True(t, ip.Partition)
	flags, err := ip.Flags()
	require.NoError(t, err)
	assert.Equal(t, fevalues.UpdateJxW|fevalues.UpdateShapeGradients, flags)

	// Overrides replace single constants, the rest keep their defaults
	assert.Equal(t, 0.9, ip.Turbulence.SigmaK1)
	assert.Equal(t, 0.1, ip.Turbulence.BetaStar)
	assert.Equal(t, turbulence.SigmaW2, ip.Turbulence.SigmaW2)

	require.NotNil(t, ip.WaveParams)
	assert.Equal(t, 9.81, ip.WaveParams.Gravity)
	assert.Equal(t, 2., ip.WaveParams.NumInterfaceCells)
	ip.Print()
}

func TestDefaults(t *testing.T) {
	ip := NewInputParameters()
	require.NoError(t, ip.Parse([]byte("Title: Defaults\n")))
	flags, err := ip.Flags()
	require.NoError(t, err)
	assert.Equal(t, fevalues.UpdateDefault, flags)
	assert.Equal(t, 2, ip.QuadratureOrder)
	assert.Nil(t, ip.WaveParams)
	assert.Equal(t, turbulence.DefaultConstants(), ip.Turbulence)
	ip.Print()
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"QuadratureOrder: 0\n",
		"Workers: -1\n",
		"UpdateFlags: [Hessians]\n",
		"Turbulence:\n  kappa: 0\n",
		"wave_parameters_db:\n  depth: 1\n",
		"Title: [unterminated\n",
	} {
		assert.Error(t, NewInputParameters().Parse([]byte(input)), input)
	}
}

func TestReadInputParameters(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(fileName, fileInput, 0644))
	ip, err := ReadInputParameters(fileName)
	require.NoError(t, err)
	assert.Equal(t, "tank.msh", ip.MeshFile)

	_, err = ReadInputParameters(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
