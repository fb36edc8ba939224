package sched

import "runtime"

// fallbackNumCPU is the common last resort shared by both AvailableCPUs
// build variants.
func fallbackNumCPU() int {
	return runtime.NumCPU()
}
