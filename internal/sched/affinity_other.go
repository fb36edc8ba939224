//go:build !linux

package sched

// AvailableCPUs falls back to runtime.NumCPU on platforms with no portable
// affinity-mask syscall (spec.md's CPU-count fallback: a non-Linux build
// simply cannot see taskset-style pinning, so the host's full core count is
// the best available answer).
func AvailableCPUs() int {
	return fallbackNumCPU()
}
