package sched

import (
	"context"
	"time"
)

// TickChanKey is the opaque channel identity processes block on when they
// call the user-space sleep(n) syscall equivalent (spec.md 4.5: "CPU 0
// increments the global ticks and wakes sleepers on the &ticks channel").
const TickChanKey uintptr = 1

// TickInterval is the wall-clock period between simulated timer ticks. It
// has no effect on scheduling semantics, only on how fast a scenario runs in
// real time.
var TickInterval = 10 * time.Millisecond

// tickDriver stands in for the external timer interrupt source spec.md
// explicitly treats as an out-of-scope collaborator ("the core consumes a
// monotonically increasing ticks counter"). It advances the counter and
// wakes anyone parked on TickChanKey; per-process preemption decisions
// happen inline in applyOutcome, not here, since this simulation's
// "interrupt" granularity already is one tick per dispatch.
func (s *Scheduler) tickDriver(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ticks.Add(1)
			s.Wakeup(TickChanKey)
		}
	}
}

// SleepTicks is the workload-facing helper implementing the user-space
// sleep(n) syscall: block until at least n timer ticks have elapsed,
// re-checking the predicate on every spurious wake as spec.md 4.6 requires.
func SleepTicks(s *Scheduler, pc *ProcContext, n uint64) (killed bool) {
	target := s.Ticks() + n
	for s.Ticks() < target {
		if pc.SleepOn(TickChanKey) {
			return true
		}
	}
	return false
}
