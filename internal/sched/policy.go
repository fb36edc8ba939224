package sched

// Kind names one of the three pluggable scheduling policies. Chosen at
// construction time; never switched at runtime (spec.md 4.2).
type Kind int

const (
	LotteryKind Kind = iota
	PriorityKind
	RoundRobinKind
)

func (k Kind) String() string {
	switch k {
	case LotteryKind:
		return "lottery"
	case PriorityKind:
		return "priority"
	case RoundRobinKind:
		return "round-robin"
	default:
		return "unknown"
	}
}

// Policy is the tagged-variant dispatch surface the scheduler loop is
// written against once (spec.md Design Notes, "Policy dispatch"). Each
// implementation owns the shape of its per-CPU run queue and the two
// policy-specific decisions the uniform scheduler loop defers to it.
type Policy interface {
	Kind() Kind

	// NewQueue constructs the run-queue representation this policy wants for
	// one CPU, identified by cpuID (used to seed any per-CPU PRNG stream).
	// Representation choice is deliberately per-policy (Design Notes):
	// lottery and round-robin want a flat/FIFO pool, priority wants 12 bands.
	NewQueue(cpuID int) RunQueue

	// PeriodicPass runs once per scheduler iteration, before selection, under
	// the process-table lock: priority's aging/forced-correction sweep,
	// lottery's optional recent_schedules decay, or round-robin's
	// waiting-time bookkeeping. rq is the calling CPU's own run queue, passed
	// so a policy can exclude whichever member it is about to hand to
	// Select this same iteration.
	PeriodicPass(procs []*Process, rq RunQueue, ticksNow uint64, iteration uint64)

	// TimeSliceTicks returns how many ticks p may run before the timer
	// handler should preempt it unconditionally. Priority derives this from
	// priority; lottery and round-robin use a fixed 1-tick quantum.
	TimeSliceTicks(p *Process) uint64

	// ShouldPreempt additionally considers whether some other Runnable
	// process on the same CPU has strict priority over p, independent of
	// elapsed time slice (only meaningful for the priority policy).
	ShouldPreempt(p *Process, rq RunQueue) bool

	// OnWake lets a policy adjust a process's metadata when it transitions
	// Sleeping -> Runnable (spec.md 4.6: lottery resets recent_schedules and
	// grants a boost; priority promotes to 0 unless the process belongs in
	// the short-lived lane).
	OnWake(p *Process)
}

// NewPolicy dispatches to a concrete Policy by Kind, mirroring the teacher's
// NewCollector(alpha) factory that picks a Collector implementation by
// detected cgroup mode. Here the dispatch key is explicit (Kind) rather than
// probed from the environment, since policy is a build/configuration choice.
func NewPolicy(kind Kind, cfg Config) (Policy, error) {
	switch kind {
	case LotteryKind:
		return newLotteryPolicy(cfg), nil
	case PriorityKind:
		return newPriorityPolicy(cfg), nil
	case RoundRobinKind:
		return newRoundRobinPolicy(cfg), nil
	default:
		return nil, ErrUnknownPolicy
	}
}
