package sched

import "time"

func waitPoll() { time.Sleep(time.Millisecond) }

// doSleep is the scheduler-side half of sleep(chan, lk) (spec.md 4.6): the
// workload side has already reported yieldSleep; here, under the
// process-table lock, we record the channel key, detach from the run queue
// (already done by the caller, which never re-added p), and transition the
// process to Sleeping. A lock-swap for an external "lk" is elided: every
// workload in this simulation blocks only on the process-table lock's own
// rendezvous, never a second lock, so the atomic "release lk, acquire
// ptable" sequence the original sleep() performs has nothing to swap.
func (s *Scheduler) doSleep(p *Process, chanKey uintptr, ticksNow uint64) {
	p.State = Sleeping
	p.Chan = chanKey
	p.RecentSchedules = 0
}

// wakeupLocked transitions every Sleeping process whose channel matches
// chanKey to Runnable and re-adds it to its home CPU's run queue (spec.md
// 4.6). Must be called with the process-table lock held, matching sleep()'s
// own precondition; callers that do not hold the lock should use Wakeup,
// which takes it.
func (s *Scheduler) wakeupLocked(chanKey uintptr) {
	for _, p := range s.table.snapshot() {
		if p.State != Sleeping || p.Chan != chanKey {
			continue
		}
		p.State = Runnable
		p.Chan = 0
		s.policy.OnWake(p)
		cpu := s.cpus[p.CPU]
		if err := cpu.Queue.Add(p); err != nil {
			panic(err)
		}
	}
}

// Wakeup is the public entry point for waking sleepers on chanKey from
// outside the scheduler loop (e.g. I/O completion in a harness).
func (s *Scheduler) Wakeup(chanKey uintptr) {
	s.table.Lock()
	defer s.table.Unlock()
	s.wakeupLocked(chanKey)
}

// doExit is the scheduler-side half of exit() (spec.md 4.3): re-parent
// children to init, wake the parent, mark Zombie, and record completion.
// Resources (file handles, cwd) are opaque in this design and have nothing
// to release; I8 is satisfied by Wait reclaiming the slot later.
func (s *Scheduler) doExit(p *Process, ticksNow uint64) {
	init := s.table.byPID(s.initPID)
	for child := range p.children {
		c := s.table.byPID(child)
		if c == nil {
			continue
		}
		if init != nil {
			c.Parent = s.table.indexOf(init)
			if init.children == nil {
				init.children = make(map[int]struct{})
			}
			init.children[c.PID] = struct{}{}
		}
		if c.State == Zombie && init != nil {
			s.wakeupLocked(pidChanKey(init.PID))
		}
	}
	p.children = nil

	p.State = Zombie
	p.CompletionTime = ticksNow
	if p.Parent >= 0 {
		parent := s.table.slots[p.Parent]
		s.wakeupLocked(pidChanKey(parent.PID))
	}
}

// pidChanKey derives a stable, opaque sleep-channel identity from a pid, the
// same role "wait on &curproc" plays in the original kernel: identity only,
// never dereferenced.
func pidChanKey(pid int) uintptr {
	return uintptr(pid) | 1<<40
}

// Wait blocks the calling goroutine (synchronously, not via a workload
// goroutine — Wait models the wait() syscall invoked from outside this
// package, e.g. by a test or harness acting as the parent) until a Zombie
// child of callerPID appears, reaps it, and returns its pid. Returns
// ErrNoChildren if callerPID currently has none, and ErrKilled if callerPID
// is marked killed.
func (s *Scheduler) Wait(callerPID int) (int, error) {
	for {
		s.table.Lock()
		caller := s.table.byPID(callerPID)
		if caller == nil {
			s.table.Unlock()
			return -1, ErrPIDNotFound
		}
		if len(caller.children) == 0 {
			s.table.Unlock()
			return -1, ErrNoChildren
		}
		if caller.Killed {
			s.table.Unlock()
			return -1, ErrKilled
		}
		for childPID := range caller.children {
			child := s.table.byPID(childPID)
			if child != nil && child.State == Zombie {
				reaped := child.PID
				delete(caller.children, childPID)
				s.table.revert(child)
				s.table.Unlock()
				return reaped, nil
			}
		}
		s.table.Unlock()
		// Spurious-wake-tolerant poll: a production build would park the
		// caller on pidChanKey(callerPID) and rely on Wakeup; tests and the
		// CLI harness call Wait from outside any CPU's goroutine, so a short
		// re-check loop stands in for that parked wait.
		waitPoll()
	}
}

// Kill sets the target's killed flag and, if it is Sleeping, wakes it so it
// observes the flag on its next scheduling point (spec.md 4.3/4.5).
func (s *Scheduler) Kill(pid int) error {
	s.table.Lock()
	defer s.table.Unlock()
	p := s.table.byPID(pid)
	if p == nil {
		return ErrPIDNotFound
	}
	p.Killed = true
	if p.State == Sleeping {
		p.State = Runnable
		p.Chan = 0
		cpu := s.cpus[p.CPU]
		if err := cpu.Queue.Add(p); err != nil {
			panic(err)
		}
	}
	return nil
}
