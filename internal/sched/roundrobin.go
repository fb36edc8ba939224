package sched

// roundRobinQueue is a single order-preserving FIFO of Runnable processes
// home to one CPU. spec.md 4.2 describes round-robin as requiring "no
// explicit queue" because the reference implementation rescans the whole
// process table each iteration; a single FIFO that the scheduler pops from
// and (via sched()) pushes back onto is behaviorally identical and lets
// round-robin share the same uniform select/remove scheduler loop as the
// other two policies.
type roundRobinQueue struct {
	fifo *fifoQueue
}

func newRoundRobinQueue() *roundRobinQueue {
	return &roundRobinQueue{fifo: newFIFOQueue()}
}

func (q *roundRobinQueue) Add(p *Process) error { return q.fifo.Add(p) }
func (q *roundRobinQueue) Remove(p *Process)    { q.fifo.Remove(p) }
func (q *roundRobinQueue) Len() int             { return q.fifo.Len() }

// Load is member count for round-robin (spec.md 4.3): no per-process weight.
func (q *roundRobinQueue) Load() int { return q.Len() }

func (q *roundRobinQueue) Select(salt uint32) *Process {
	q.fifo.mu.Lock()
	defer q.fifo.mu.Unlock()
	if len(q.fifo.items) == 0 {
		return nil
	}
	return q.fifo.items[0]
}

type roundRobinPolicy struct {
	cfg Config
}

func newRoundRobinPolicy(cfg Config) *roundRobinPolicy {
	return &roundRobinPolicy{cfg: cfg}
}

func (r *roundRobinPolicy) Kind() Kind { return RoundRobinKind }

func (r *roundRobinPolicy) NewQueue(cpuID int) RunQueue { return newRoundRobinQueue() }

// PeriodicPass increments every Runnable process's waiting-time counter
// except the one this CPU is about to hand to Select this same iteration
// (spec.md 4.2: "increment a waiting-time counter on every other Runnable
// slot each time a slot is chosen" — the about-to-run slot's own wait
// already ended).
func (r *roundRobinPolicy) PeriodicPass(procs []*Process, rq RunQueue, ticksNow uint64, iteration uint64) {
	var next *Process
	if q, ok := rq.(*roundRobinQueue); ok {
		next = q.Select(0)
	}
	for _, p := range procs {
		if p.State == Runnable && p != next {
			p.WaitingTime++
		}
	}
}

func (r *roundRobinPolicy) TimeSliceTicks(p *Process) uint64 { return 1 }

func (r *roundRobinPolicy) ShouldPreempt(p *Process, rq RunQueue) bool { return false }

func (r *roundRobinPolicy) OnWake(p *Process) {}
