package sched

import "context"

// assertSchedPreconditions checks the invariants sched() requires before a
// dispatch's outcome may be applied (spec.md 4.5): interrupts disabled on
// this CPU, held exactly once (ncli == 1), and the process not already
// marked Running. Violating any of these is a StateViolation (spec.md
// section 7) — fatal in the original kernel, returned here so callers and
// tests can observe it instead of crashing the process.
func assertSchedPreconditions(cpu *CPU, p *Process) error {
	if !cpu.interruptsDisabled() {
		return ErrInterruptsEnabled
	}
	if cpu.ncli != 1 {
		return ErrNotHoldingLock
	}
	if p.State == Running {
		return ErrRunningCantSched
	}
	return nil
}

// runCPU is the per-CPU scheduler loop (spec.md 4.4). It owns cpu for its
// entire lifetime; no other goroutine touches cpu.Current or cpu.ncli.
func (s *Scheduler) runCPU(ctx context.Context, cpu *CPU) {
	defer s.wg.Done()
	var iteration uint64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		iteration++

		cpu.Cli()
		s.table.Lock()

		ticksNow := s.ticks.Load()
		s.policy.PeriodicPass(s.table.snapshot(), cpu.Queue, ticksNow, iteration)

		p := cpu.Queue.Select(uint32(ticksNow)*2654435761 ^ uint32(iteration))
		if p == nil {
			s.table.Unlock()
			cpu.Sti()
			continue
		}
		cpu.Queue.Remove(p)

		if err := assertSchedPreconditions(cpu, p); err != nil {
			// A genuine StateViolation would halt the kernel; in this
			// simulation we surface it by panicking, since continuing would
			// corrupt invariants I1-I9 further.
			s.table.Unlock()
			cpu.Sti()
			panic(err)
		}
		s.beginRun(cpu, p, ticksNow)

		// Run p for one tick at a time until it stops being the CPU's
		// choice: either it yields/sleeps/exits in a way that hands the CPU
		// back to the queue, or its own time slice/priority standing says
		// so. This inner loop is what spec.md 4.4 calls "context_switch
		// returns when p yields back" repeated across consecutive ticks
		// the same process keeps winning its own quantum.
		for {
			ev := dispatch(p)
			again := s.applyOutcome(cpu, p, ev, s.ticks.Load())
			if !again {
				break
			}
		}

		cpu.Current = nil
		s.table.Unlock()
		cpu.Sti()
	}
}

// beginRun marks p Running on cpu and updates the counters spec.md 4.4
// assigns at selection time. Must be called with the table lock held.
func (s *Scheduler) beginRun(cpu *CPU, p *Process, ticksNow uint64) {
	cpu.Current = p
	p.State = Running
	p.TicksScheduled++
	p.RecentSchedules++
	p.LastScheduled = ticksNow
	if !p.HasRun {
		p.FirstRunTime = ticksNow
		p.HasRun = true
	}
	switches := s.contextSwitches.Add(1)
	if s.policy.Kind() == PriorityKind {
		s.scheduleLog.append(ticksNow, p.PID, p.Priority.Priority, switches)
	}
}

// dispatch hands control to p's workload goroutine for exactly one tick and
// waits for it to report back. This is the context_switch(&this_cpu.context,
// p.context) call of spec.md 4.4, realized as a synchronous channel
// handshake instead of a register/stack swap.
func dispatch(p *Process) yieldEvent {
	p.resume <- struct{}{}
	return <-p.yielded
}

// applyOutcome is the scheduler-side half of sched(): given what the
// process's tick produced, update its state and report whether this CPU
// should keep dispatching the same process for another tick (true) or hand
// the CPU back to the run queue (false). Must be called with the
// process-table lock held and interrupts disabled.
func (s *Scheduler) applyOutcome(cpu *CPU, p *Process, ev yieldEvent, ticksNow uint64) bool {
	p.CPUTime++

	switch ev.kind {
	case yieldExit:
		s.doExit(p, ticksNow)
		return false
	case yieldSleep:
		s.doSleep(p, ev.chanKey, ticksNow)
		return false
	}

	// yieldContinue or yieldVoluntary: still Runnable. Decide whether the
	// time slice has elapsed or a strictly higher-priority process is
	// waiting (spec.md 4.5's yield()/timer-tick path); lottery and
	// round-robin always hand back after one tick (1-tick quantum).
	quantumElapsed := ev.kind == yieldVoluntary ||
		p.CPUTime%s.policy.TimeSliceTicks(p) == 0 ||
		s.policy.ShouldPreempt(p, cpu.Queue)

	if !quantumElapsed {
		p.State = Running
		return true
	}

	p.State = Runnable
	if err := cpu.Queue.Add(p); err != nil {
		// Duplicate-enqueue would violate I2; in this simulation it can only
		// happen from a programming error, so surface it loudly rather than
		// silently dropping the process.
		panic(err)
	}
	return false
}
