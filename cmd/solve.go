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

	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/model_problems/Gravity3D"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run one distributed Poisson solve",
	Long: `
Runs the spectral/tridiagonal Poisson solver on one of the built-in model
problems and reports error norms where an analytic potential exists,

gopoisson solve -c monopole-shell`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := InputParameters.DefaultParameters()
		if inputFile, _ := cmd.Flags().GetString("input"); inputFile != "" {
			data, err := os.ReadFile(inputFile)
			if err == nil {
				err = ip.Parse(data)
			}
			if err != nil {
				fmt.Printf("unable to read input file %s: %v\n", inputFile, err)
				os.Exit(1)
			}
		}
		if v, err := cmd.Flags().GetInt("nr"); err == nil && cmd.Flags().Changed("nr") {
			ip.Nr = v
		}
		if v, err := cmd.Flags().GetInt("ntheta"); err == nil && cmd.Flags().Changed("ntheta") {
			ip.Ntheta = v
		}
		if v, err := cmd.Flags().GetInt("nphi"); err == nil && cmd.Flags().Changed("nphi") {
			ip.Nphi = v
		}
		if v, err := cmd.Flags().GetInt("ptheta"); err == nil && cmd.Flags().Changed("ptheta") {
			ip.ProcTheta = v
		}
		if v, err := cmd.Flags().GetInt("pphi"); err == nil && cmd.Flags().Changed("pphi") {
			ip.ProcPhi = v
		}
		if v, err := cmd.Flags().GetString("case"); err == nil && cmd.Flags().Changed("case") {
			ip.Case = v
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		runSolve := func() error {
			gr, err := Gravity3D.NewGravity3D(ip)
			if err != nil {
				return err
			}
			return gr.Run()
		}
		var err error
		if withPerf, _ := cmd.Flags().GetBool("perf"); withPerf {
			err = runWithPerf(runSolve)
		} else {
			err = runSolve()
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().IntP("nr", "r", 32, "number of radial zones")
	SolveCmd.Flags().IntP("ntheta", "t", 16, "number of theta zones (power of two)")
	SolveCmd.Flags().IntP("nphi", "p", 16, "number of phi zones (power of two)")
	SolveCmd.Flags().Int("ptheta", 1, "process grid extent along theta (power of two)")
	SolveCmd.Flags().Int("pphi", 1, "process grid extent along phi (power of two)")
	SolveCmd.Flags().StringP("case", "c", "monopole-shell", "model problem: zero, point-mass, monopole-shell, quadrupole-shell")
	SolveCmd.Flags().StringP("input", "i", "", "YAML input parameter file")
	SolveCmd.Flags().Bool("profile", false, "write a CPU profile for the solve")
	SolveCmd.Flags().Bool("perf", false, "report hardware counters for the solve (linux only)")
}
