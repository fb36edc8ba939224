package sched

import "errors"

// Sentinel errors, grouped by the taxonomy they belong to. Callers should
// classify with errors.Is, never string matching.

var (
	// ErrNoFreeSlot means the process table has no Unused slot (ResourceExhaustion).
	ErrNoFreeSlot = errors.New("sched: no free process slot")

	// ErrBadTickets means a caller supplied tickets < 1 (InvalidArgument).
	ErrBadTickets = errors.New("sched: tickets must be >= 1")

	// ErrBadPriority means a caller supplied a priority outside [0,10] (InvalidArgument).
	ErrBadPriority = errors.New("sched: priority must be in [0,10]")

	// ErrPIDNotFound means a named pid has no live slot (InvalidArgument).
	ErrPIDNotFound = errors.New("sched: pid not found")

	// ErrNoChildren means wait() was called by a process with no children (InvalidArgument).
	ErrNoChildren = errors.New("sched: no children to wait for")

	// ErrKilled means a blocking call unwound because the caller was killed (Cancelled).
	ErrKilled = errors.New("sched: process killed")

	// ErrRunQueueFull means a per-CPU run queue has no capacity left (ResourceExhaustion).
	ErrRunQueueFull = errors.New("sched: run queue full")

	// ErrDuplicateEnqueue means add() was called on a process already a member
	// of a run queue (StateViolation: violates I2).
	ErrDuplicateEnqueue = errors.New("sched: process already enqueued")

	// ErrNotHoldingLock is raised by sched() when called without the process
	// table lock held exactly once (StateViolation: fatal in the original kernel,
	// returned here so tests can assert on it instead of crashing the process).
	ErrNotHoldingLock = errors.New("sched: must be called with ptable lock held")

	// ErrRunningCantSched means sched() was invoked while the caller's state is
	// still Running (StateViolation).
	ErrRunningCantSched = errors.New("sched: caller must not be Running")

	// ErrInterruptsEnabled means a caller tried to touch the process table with
	// interrupts enabled on the local CPU (StateViolation).
	ErrInterruptsEnabled = errors.New("sched: ptable touched with interrupts enabled")

	// ErrNoCPU means the load balancer could not find any configured CPU
	// (ResourceExhaustion; should not happen outside misconfiguration).
	ErrNoCPU = errors.New("sched: no CPUs configured")

	// ErrUnknownPolicy means NewPolicy was asked for a Kind it doesn't recognize
	// (InvalidArgument).
	ErrUnknownPolicy = errors.New("sched: unknown scheduling policy")
)
