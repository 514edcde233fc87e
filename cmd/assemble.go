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
	"math"
	"os"
	"runtime"
	"time"

	"github.com/notargets/gofe/InputParameters"
	"github.com/notargets/gofe/assembly"
	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/turbulence"
	"github.com/notargets/gofe/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ModelAssemble struct {
	Input   *InputParameters.InputParameters
	Grid    int    // cells per direction for a generated mesh
	Etype   string // element type of a generated mesh, or Mixed
	Profile    string
	Perf       bool
	Turbulence bool // evaluate the SST closure on a model shear layer
}

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble mass and stiffness matrices over a mesh",
	Long: `
Reads a Gmsh (.msh), Gambit (.neu) or SU2 (.su2) mesh file, or generates a
structured mesh, and assembles the domain measure, the mass matrix and the
stiffness matrix with one FEValues cache per worker and reference domain.
With --turbulence the SST closure, using the Turbulence constants of the input
file, is evaluated on a shear layer over the mesh.

gofe assemble -F mesh.msh -I input.yaml --workers 8 --partition --turbulence`,
	Run: func(cmd *cobra.Command, args []string) {
		ma, err := processAssembleInput(cmd)
		if err == nil {
			err = RunAssemble(ma)
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("meshFile", "F", "", "Gmsh (.msh), Gambit (.neu) or SU2 (.su2) mesh file, overrides MeshFile in the input file")
	AssembleCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file of input parameters")
	AssembleCmd.Flags().Int("order", 2, "quadrature degree")
	AssembleCmd.Flags().Int("workers", 0, "number of worker goroutines, 0 uses all CPUs")
	AssembleCmd.Flags().Bool("partition", false, "assign elements to workers with METIS")
	AssembleCmd.Flags().Int("grid", 8, "cells per direction when generating a mesh")
	AssembleCmd.Flags().String("etype", "Quad", "element type of a generated mesh, or Mixed for quads and triangles")
	AssembleCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
	AssembleCmd.Flags().Bool("perf", false, "count CPU instructions used by the assembly")
	AssembleCmd.Flags().Bool("turbulence", false, "evaluate the SST closure on a shear layer over the mesh")
	for _, name := range []string{"order", "workers", "partition"} {
		_ = viper.BindPFlag(name, AssembleCmd.Flags().Lookup(name))
	}
}

// processAssembleInput merges the input file with the command line, flags win
func processAssembleInput(cmd *cobra.Command) (ma *ModelAssemble, err error) {
	ma = &ModelAssemble{Input: InputParameters.NewInputParameters()}
	var fileName string
	if fileName, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
		return
	}
	if len(fileName) != 0 {
		if ma.Input, err = InputParameters.ReadInputParameters(fileName); err != nil {
			return
		}
	}
	ip := ma.Input
	if meshFile, _ := cmd.Flags().GetString("meshFile"); len(meshFile) != 0 {
		ip.MeshFile = meshFile
	}
	if cmd.Flags().Changed("order") || len(fileName) == 0 {
		ip.QuadratureOrder = viper.GetInt("order")
	}
	if cmd.Flags().Changed("workers") || len(fileName) == 0 {
		ip.Workers = viper.GetInt("workers")
	}
	if viper.GetBool("partition") {
		ip.Partition = true
	}
	ma.Grid, _ = cmd.Flags().GetInt("grid")
	ma.Etype, _ = cmd.Flags().GetString("etype")
	ma.Profile, _ = cmd.Flags().GetString("profile")
	ma.Perf, _ = cmd.Flags().GetBool("perf")
	ma.Turbulence, _ = cmd.Flags().GetBool("turbulence")
	err = ip.Validate()
	return
}

func RunAssemble(ma *ModelAssemble) (err error) {
	switch ma.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		return fmt.Errorf("unknown profile type %q, use cpu or mem", ma.Profile)
	}
	ip := ma.Input
	ip.Print()
	var m *mesh.Mesh
	if m, err = loadMesh(ip.MeshFile, ma.Grid, ma.Etype); err != nil {
		return
	}
	m.PrintStatistics()

	nw := ip.Workers
	if nw < 1 {
		nw = runtime.GOMAXPROCS(0)
	}
	if nw > m.NumElements {
		nw = m.NumElements
	}
	var flags fevalues.UpdateFlags
	if flags, err = ip.Flags(); err != nil {
		return
	}
	opts := []assembly.Option{assembly.Workers(nw), assembly.WithFlags(flags)}
	if ip.Partition {
		if err = mesh.Partition(m, nw); err != nil {
			return
		}
		opts = append(opts, assembly.WithPartition())
	}
	a := assembly.New(m, ip.QuadratureOrder, opts...)

	var cl *turbulence.Closure
	if ma.Turbulence {
		need := fevalues.UpdateJxW | fevalues.UpdateShapeValues | fevalues.UpdateShapeGradients
		if flags&need != need {
			return fmt.Errorf("--turbulence needs the %s update flags, have %s", need, flags)
		}
		cl = turbulence.NewClosure(ip.Turbulence)
	}
	work := func() error { return assembleAll(a, flags, cl) }
	if ma.Perf {
		var instructions uint64
		if instructions, err = countInstructions(work); err != nil {
			return
		}
		fmt.Printf("CPU instructions: %d\n", instructions)
		return
	}
	return work()
}

func assembleAll(a *assembly.Assembler, flags fevalues.UpdateFlags, cl *turbulence.Closure) (err error) {
	start := time.Now()
	var vol float64
	if vol, err = a.Measure(); err != nil {
		return
	}
	fmt.Printf("Domain measure: %.8f\n", vol)
	if flags&fevalues.UpdateShapeValues != 0 {
		var M utils.CSR
		if M, err = a.MassMatrix(); err != nil {
			return
		}
		fmt.Printf("Mass matrix: %d non zeros, sum %.8f\n", M.NNZ(), M.Sum())
	}
	if flags&fevalues.UpdateShapeGradients != 0 {
		var K utils.CSR
		if K, err = a.StiffnessMatrix(); err != nil {
			return
		}
		r, _ := K.Dims()
		ones := make([]float64, r)
		for i := range ones {
			ones[i] = 1
		}
		rs := K.MulVec(ones)
		if utils.IsNan(rs) {
			return fmt.Errorf("stiffness matrix contains NaN")
		}
		var rmax float64
		for _, v := range rs {
			rmax = math.Max(rmax, math.Abs(v))
		}
		fmt.Printf("Stiffness matrix: %d non zeros, max row sum %.3e\n", K.NNZ(), rmax)
	}
	if cl != nil {
		var sst assembly.ClosureSummary
		if sst, err = a.EvaluateClosure(cl, shearLayer(a.Mesh)); err != nil {
			return
		}
		sst.Print()
	}
	a.Stats().Print()
	fmt.Printf("Total time: %v, %s\n", time.Since(start), utils.GetMemUsage())
	return
}

func loadMesh(meshFile string, grid int, etype string) (m *mesh.Mesh, err error) {
	if len(meshFile) != 0 {
		return mesh.ReadMeshFile(meshFile)
	}
	if grid < 1 {
		return nil, fmt.Errorf("grid must be at least 1, got %d", grid)
	}
	if etype == "Mixed" {
		return mesh.NewMixedRectangle(grid, grid, 0, 1, 0, 1), nil
	}
	var et utils.ElementType
	if et, err = utils.ParseElementType(etype); err != nil {
		return
	}
	switch et {
	case utils.Line, utils.Line3:
		m = mesh.NewInterval(grid, 0, 1, et)
	case utils.Triangle, utils.Triangle6, utils.Quad, utils.Quad9:
		m = mesh.NewRectangle(grid, grid, 0, 1, 0, 1, et)
	case utils.Tet, utils.Hex, utils.Prism:
		m = mesh.NewBox(grid, grid, grid, 0, 1, 0, 1, 0, 1, et)
	default:
		err = fmt.Errorf("cannot generate a mesh of %s elements", et)
	}
	return
}

// shearLayer is a model boundary layer over the wall at the lower bound of the
// last coordinate axis: u = (s, 0, 0) with s the distance from the wall,
// k = 0.01 and omega = 1 / (s + 0.1)
func shearLayer(m *mesh.Mesh) func(c mesh.Cell) turbulence.Fields {
	var (
		axis  = m.Dim() - 1
		lo, _ = m.Bounds()
	)
	if axis < 0 {
		axis = 0
	}
	return func(c mesh.Cell) (f turbulence.Fields) {
		for _, x := range c.Nodes() {
			d := x[axis] - lo[axis] + 0.1
			f.K = append(f.K, 0.01)
			f.Omega = append(f.Omega, 1/d)
			f.Velocity = append(f.Velocity, [3]float64{d - 0.1, 0, 0})
			f.WallDistance = append(f.WallDistance, d)
			f.Rho = append(f.Rho, 1)
			f.Mu = append(f.Mu, 1.e-3)
		}
		return
	}
}
