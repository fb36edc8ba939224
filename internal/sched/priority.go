package sched

const (
	priorityBands   = 11 // priority values 0..10
	shortLivedBand  = -1 // sentinel lane index distinct from 0..10
	minPriority     = 0
	maxPriority     = 10
	defaultPriority = 5
)

// priorityQueue holds the 11 FIFO priority bands plus the short-lived lane,
// grounded on the priority scheduler's runqueue.c (priority_head/tail[11]
// and short_lived_head/tail). Selection checks the short-lived lane first,
// then bands in ascending order, head of FIFO within a band.
type priorityQueue struct {
	bands      [priorityBands]*ringQueue
	shortLived *ringQueue
	minPID     int
}

func newPriorityQueue(capacity, shortLivedMinPID int) *priorityQueue {
	q := &priorityQueue{shortLived: newRingQueue(capacity), minPID: shortLivedMinPID}
	for i := range q.bands {
		q.bands[i] = newRingQueue(capacity)
	}
	return q
}

// bandFor routes a process to the short-lived lane if it was enqueued at
// exactly priority 5 and its pid exceeds the configured threshold (spec.md
// Design Notes: "entered by any process whose priority is exactly 5 at the
// moment of enqueue ... an implementation heuristic for forked children, not
// a fundamental invariant").
func (q *priorityQueue) bandFor(p *Process) *ringQueue {
	if p.Priority.Priority == defaultPriority && p.PID > q.minPID {
		return q.shortLived
	}
	return q.bands[p.Priority.Priority]
}

func (q *priorityQueue) Add(p *Process) error {
	return q.bandFor(p).Add(p)
}

func (q *priorityQueue) Remove(p *Process) {
	// The process may have aged into a different band than bandFor(p) would
	// compute now (priority mutates in place), so every lane must be tried.
	q.shortLived.Remove(p)
	for _, b := range q.bands {
		b.Remove(p)
	}
}

func (q *priorityQueue) Select(salt uint32) *Process {
	if m := q.shortLived.front(); m != nil {
		return m
	}
	for _, b := range q.bands {
		if m := b.front(); m != nil {
			return m
		}
	}
	return nil
}

func (q *priorityQueue) Len() int {
	n := q.shortLived.Len()
	for _, b := range q.bands {
		n += b.Len()
	}
	return n
}

// Load is member count for the priority policy (spec.md 4.3): priority
// bands have no per-process weight analogous to lottery tickets.
func (q *priorityQueue) Load() int { return q.Len() }

type priorityPolicy struct {
	cfg Config
}

func newPriorityPolicy(cfg Config) *priorityPolicy {
	return &priorityPolicy{cfg: cfg}
}

func (pp *priorityPolicy) Kind() Kind { return PriorityKind }

func (pp *priorityPolicy) NewQueue(cpuID int) RunQueue {
	return newPriorityQueue(pp.cfg.NPROC, pp.cfg.ShortLivedLaneMinPID)
}

// PeriodicPass implements update_priorities: optional stale-process reaping
// (behind Config.ReapStaleAfterTicks, default disabled), the short-lived-lane
// re-entry heuristic, and aging (wait_ticks >= AgingThresholdTicks, default
// 50, decrements the priority number by one, promoting the process, and
// resets the counter).
func (pp *priorityPolicy) PeriodicPass(procs []*Process, rq RunQueue, ticksNow uint64, iteration uint64) {
	for _, p := range procs {
		if p.State != Runnable && p.State != Running && p.State != Sleeping {
			continue
		}

		if pp.cfg.ReapStaleAfterTicks > 0 && p.PID > 2 {
			if ticksNow-p.CreationTime > pp.cfg.ReapStaleAfterTicks {
				p.Killed = true
			}
		}

		if p.PID > pp.cfg.ShortLivedLaneMinPID && p.Priority.Priority != defaultPriority {
			p.Priority.Priority = defaultPriority
		}

		p.Priority.WaitTicks++
		if p.Priority.WaitTicks >= pp.cfg.AgingThresholdTicks && p.Priority.Priority > minPriority {
			p.Priority.Priority--
			p.Priority.WaitTicks = 0
		}
	}
}

// TimeSliceTicks derives the quantum from priority: 0-2 get 5 ticks, 3-10
// get 2 ticks (spec.md 4.5).
func (pp *priorityPolicy) TimeSliceTicks(p *Process) uint64 {
	if p.Priority.Priority <= 2 {
		return 5
	}
	return 2
}

// ShouldPreempt additionally yields if some other Runnable process on the
// same CPU strictly outranks p (lower numeric priority).
func (pp *priorityPolicy) ShouldPreempt(p *Process, rq RunQueue) bool {
	pq, ok := rq.(*priorityQueue)
	if !ok {
		return false
	}
	if pq.shortLived.Len() > 0 {
		return p.Priority.Priority != defaultPriority || p.PID <= pq.minPID
	}
	for band := 0; band < p.Priority.Priority; band++ {
		if pq.bands[band].Len() > 0 {
			return true
		}
	}
	return false
}

// OnWake promotes a woken process to priority 0, the standard I/O-bound
// boost, unless it belongs in the short-lived lane.
func (pp *priorityPolicy) OnWake(p *Process) {
	if p.PID > pp.cfg.ShortLivedLaneMinPID && p.Priority.Priority == defaultPriority {
		return
	}
	p.Priority.Priority = minPriority
	p.Priority.WaitTicks = 0
}
