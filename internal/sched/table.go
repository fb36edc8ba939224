package sched

import "sync"

// ProcessTable is the fixed-capacity array of process slots (spec.md 4.3).
// Its mutex is "the process-table lock" referred to throughout the spec:
// first in the lock hierarchy (section 5), and the only lock whose hold
// spans a simulated context switch (see scheduler.go).
type ProcessTable struct {
	mu      sync.Mutex
	slots   []*Process
	nextPID int
}

// NewProcessTable allocates NPROC slots, all Unused.
func NewProcessTable(nproc int) *ProcessTable {
	t := &ProcessTable{
		slots:   make([]*Process, nproc),
		nextPID: 1,
	}
	for i := range t.slots {
		t.slots[i] = &Process{State: Unused, Parent: -1, CPU: -1}
	}
	return t
}

// Lock acquires the process-table lock. Callers must pair with Unlock and
// must not acquire any per-CPU run-queue lock while holding it except in
// the documented order (section 5: ptable -> run-queue -> external).
func (t *ProcessTable) Lock() { t.mu.Lock() }

// Unlock releases the process-table lock.
func (t *ProcessTable) Unlock() { t.mu.Unlock() }

// Alloc scans for an Unused slot, transitions it to Embryo, and assigns a
// fresh pid. Returns ErrNoFreeSlot if the table is full. Must be called with
// the lock held.
func (t *ProcessTable) alloc(name string, ticksNow uint64) (*Process, error) {
	for _, p := range t.slots {
		if p.State == Unused {
			p.reset()
			p.State = Embryo
			p.PID = t.nextPID
			t.nextPID++
			p.Name = name
			p.Parent = -1
			p.CPU = -1
			p.Lottery = LotteryMeta{Tickets: 1}
			p.Priority = PriorityMeta{Priority: defaultPriority}
			p.CreationTime = ticksNow
			p.children = make(map[int]struct{})
			return p, nil
		}
	}
	return nil, ErrNoFreeSlot
}

// revert undoes a failed post-allocation step, returning the slot to Unused
// (spec.md 4.3: "On any post-allocation failure, the slot is reverted to
// Unused and resources freed").
func (t *ProcessTable) revert(p *Process) {
	p.reset()
}

// indexOf returns p's slot index, or -1 if it is not a member of this table.
func (t *ProcessTable) indexOf(p *Process) int {
	for i, s := range t.slots {
		if s == p {
			return i
		}
	}
	return -1
}

// byPID returns the live (non-Unused) slot with the given pid, or nil.
func (t *ProcessTable) byPID(pid int) *Process {
	for _, p := range t.slots {
		if p.State != Unused && p.PID == pid {
			return p
		}
	}
	return nil
}

// snapshot returns the slice of slots for periodic policy passes. Must be
// called with the lock held; the returned slice aliases live slots and must
// not be retained past the critical section.
func (t *ProcessTable) snapshot() []*Process {
	return t.slots
}
