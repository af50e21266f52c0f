//go:build linux
// +build linux

package cmd

import (
	"fmt"
	"os"

	perf "github.com/hodgesds/perf-utils"
)

// runWithPerf wraps fn with hardware counter collection on the calling
// process and prints instructions and cycles afterwards.
func runWithPerf(fn func() error) (err error) {
	hw, err := perf.NewHardwareProfiler(os.Getpid(), -1, perf.AllHardwareProfilers)
	if err != nil {
		// Counters are frequently unavailable (permissions, VMs); run
		// without them rather than fail the solve.
		fmt.Printf("hardware counters unavailable: %v\n", err)
		return fn()
	}
	defer hw.Close()
	if err = hw.Start(); err != nil {
		fmt.Printf("hardware counters unavailable: %v\n", err)
		return fn()
	}
	if err = fn(); err != nil {
		return
	}
	profileValue := &perf.HardwareProfile{}
	if errP := hw.Profile(profileValue); errP == nil {
		if profileValue.Instructions != nil {
			fmt.Printf("%12d = instructions\n", *profileValue.Instructions)
		}
		if profileValue.CPUCycles != nil {
			fmt.Printf("%12d = cpu cycles\n", *profileValue.CPUCycles)
		}
	}
	return hw.Stop()
}
