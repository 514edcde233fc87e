//go:build linux

package cmd

import (
	"fmt"

	perf "github.com/hodgesds/perf-utils"
)

// countInstructions runs f under a hardware instruction counter
func countInstructions(f func() error) (count uint64, err error) {
	var pv *perf.ProfileValue
	if pv, err = perf.CPUInstructions(f); err != nil {
		return
	}
	if pv.TimeRunning < pv.TimeEnabled {
		fmt.Printf("instruction counter was multiplexed, running %d of %d ns\n", pv.TimeRunning, pv.TimeEnabled)
	}
	return pv.Value, nil
}
