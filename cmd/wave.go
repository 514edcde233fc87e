/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/notargets/gofe/InputParameters"
	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/utils"
	"github.com/notargets/gofe/wavebc"
	"github.com/spf13/cobra"
)

type ModelWave struct {
	Input *InputParameters.InputParameters
	Time  float64
	Grid  int // cells over the depth of a generated tank
}

// WaveCmd represents the wave command
var WaveCmd = &cobra.Command{
	Use:   "wave",
	Short: "Evaluate the Stokes wave inlet velocity at a given time",
	Long: `
Prints the inlet velocity of a first order Stokes wave on the x-lower boundary
of a mesh, read from MeshFile or generated as a rectangular tank.

gofe wave -I params.yaml --time 0.5`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			mw  = &ModelWave{}
		)
		fileName, _ := cmd.Flags().GetString("inputConditionsFile")
		if len(fileName) == 0 {
			err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) with a wave_parameters_db section")
			fmt.Printf("error: %s\n", err.Error())
			exampleFile := `
########################################
Title: "Wave Tank"
wave_parameters_db:
  depth: 0.5
  omega: 6.283185307179586
  gravitational_constant: 9.81
  wave_number: 4.0
  amplitude: 0.02
  num_interface_cells: 2
########################################
`
			fmt.Printf("Example File:%s\n", exampleFile)
			os.Exit(1)
		}
		if mw.Input, err = InputParameters.ReadInputParameters(fileName); err == nil {
			mw.Time, _ = cmd.Flags().GetFloat64("time")
			mw.Grid, _ = cmd.Flags().GetInt("grid")
			err = RunWave(mw)
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(WaveCmd)
	WaveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file of input parameters")
	WaveCmd.Flags().Float64("time", 0, "time at which the inlet velocity is evaluated")
	WaveCmd.Flags().Int("grid", 10, "cells over the depth when generating a tank")
}

func RunWave(mw *ModelWave) (err error) {
	wp := mw.Input.WaveParams
	if wp == nil {
		return fmt.Errorf("input has no wave_parameters_db section")
	}
	wp.Print()
	var m *mesh.Mesh
	if len(mw.Input.MeshFile) != 0 {
		if m, err = mesh.ReadMeshFile(mw.Input.MeshFile); err != nil {
			return
		}
	} else {
		if mw.Grid < 1 {
			return fmt.Errorf("grid must be at least 1, got %d", mw.Grid)
		}
		m = mesh.NewRectangle(4*mw.Grid, mw.Grid, 0, 4*wp.Depth, 0, 1.5*wp.Depth, utils.Quad)
	}
	dim := m.Dim()
	if dim < 2 {
		return fmt.Errorf("wave inlet needs a 2D or 3D mesh, got dimension %d", dim)
	}
	var (
		nodes []int
		vel   = make([][]float64, dim)
	)
	for comp := 0; comp < dim; comp++ {
		nodes, vel[comp] = wavebc.NewCoef(*wp, comp, dim).ApplyToBoundary(m, mw.Time)
	}
	fmt.Printf("Inlet velocity at t = %g, %d nodes\n", mw.Time, len(nodes))
	for i, n := range nodes {
		x := m.Vertices[n]
		fmt.Printf("%6d %10.5f %10.5f", n, x[1], x[2])
		for comp := 0; comp < dim; comp++ {
			fmt.Printf(" %12.5e", vel[comp][i])
		}
		fmt.Println()
	}
	return
}
