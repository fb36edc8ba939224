//go:build linux

package sched

import "golang.org/x/sys/unix"

// AvailableCPUs reports the number of CPUs this process is actually allowed
// to run on, honoring an explicit affinity mask (taskset, a Kubernetes CPU
// pin) rather than the host's full core count — runtime.NumCPU() ignores
// affinity entirely, and automaxprocs only accounts for cgroup CFS quotas,
// not an explicit CPU set. Falls back to runtime.NumCPU() if the syscall is
// unavailable (e.g. under a restrictive seccomp profile).
func AvailableCPUs() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return fallbackNumCPU()
	}
	if n := set.Count(); n > 0 {
		return n
	}
	return fallbackNumCPU()
}
