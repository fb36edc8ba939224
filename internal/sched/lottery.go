package sched

// lotteryQueue is the flat, unordered member pool the lottery policy
// selects from. Grounded on the lottery scheduler's runqueue.c: rq_add
// appends to the first free slot, rq_remove swaps with the last occupied
// slot, and rq_select sums tickets, Fisher-Yates shuffles, then draws a
// winning ticket.
type lotteryQueue struct {
	ring  *ringQueue
	prng  *PRNG
	cpuID int
}

func newLotteryQueue(cpuID, capacity int) *lotteryQueue {
	return &lotteryQueue{
		ring:  newRingQueue(capacity),
		prng:  NewPRNG(uint32(cpuID + 1)),
		cpuID: cpuID,
	}
}

func (q *lotteryQueue) Add(p *Process) error { return q.ring.Add(p) }
func (q *lotteryQueue) Remove(p *Process)    { q.ring.Remove(p) }
func (q *lotteryQueue) Len() int             { return q.ring.Len() }

// Load sums effective tickets (Tickets+Boost) across members, the metric
// spec.md 4.3 calls for when balancing load under the lottery policy: raw
// member count hides the fact that a handful of high-ticket processes can
// out-schedule many low-ticket ones.
func (q *lotteryQueue) Load() int {
	var total int
	for _, m := range q.ring.members() {
		t := m.Lottery.Tickets + m.Lottery.Boost
		if t < 1 {
			t = 1
		}
		total += int(t)
	}
	return total
}

// Select performs the documented three-step draw: sum effective tickets,
// Fisher-Yates shuffle (de-biases iteration order among equal-ticket
// members), then walk accumulating until the winning ticket is covered.
func (q *lotteryQueue) Select(salt uint32) *Process {
	members := q.ring.members()
	if len(members) == 0 {
		return nil
	}

	// The caller already folds the tick count into salt.
	q.prng.Reseed(0, q.cpuID, salt)

	total := uint32(0)
	effective := make([]uint32, len(members))
	for i, m := range members {
		t := m.Lottery.Tickets + m.Lottery.Boost
		if t < 1 {
			t = 1
		}
		effective[i] = t
		total += t
	}
	if total == 0 {
		return nil
	}

	// Fisher-Yates shuffle of (members, effective) in lockstep.
	for i := len(members) - 1; i > 0; i-- {
		j := int(q.prng.Range(uint32(i + 1)))
		members[i], members[j] = members[j], members[i]
		effective[i], effective[j] = effective[j], effective[i]
	}

	winner := q.prng.Range(total)
	var cum uint32
	for i, m := range members {
		cum += effective[i]
		if cum > winner {
			return m
		}
	}
	// Unreachable if total was computed correctly; fall back to last member.
	return members[len(members)-1]
}

type lotteryPolicy struct {
	cfg Config
}

func newLotteryPolicy(cfg Config) *lotteryPolicy {
	return &lotteryPolicy{cfg: cfg}
}

func (l *lotteryPolicy) Kind() Kind { return LotteryKind }

func (l *lotteryPolicy) NewQueue(cpuID int) RunQueue {
	return newLotteryQueue(cpuID, l.cfg.NPROC)
}

// PeriodicPass implements the optional recent_schedules decay
// (scheduler() in proc.c: every 100th iteration, recent_schedules *= 3/4 for
// Runnable|Running slots). Off by default per spec.md's Open Question
// resolution (dynamic ticket scaling defaults off); gated by
// Config.LotteryDecayEnabled.
func (l *lotteryPolicy) PeriodicPass(procs []*Process, rq RunQueue, ticksNow uint64, iteration uint64) {
	if !l.cfg.LotteryDecayEnabled {
		return
	}
	if iteration%100 != 0 {
		return
	}
	for _, p := range procs {
		if p.State == Runnable || p.State == Running {
			p.RecentSchedules = p.RecentSchedules * 3 / 4
		}
	}
}

func (l *lotteryPolicy) TimeSliceTicks(p *Process) uint64 { return 1 }

func (l *lotteryPolicy) ShouldPreempt(p *Process, rq RunQueue) bool { return false }

// OnWake resets recent_schedules and, when Config.LotteryDecayEnabled is set,
// grants a starvation boost, matching wakeup1's lottery-specific field reset
// in proc.c.
func (l *lotteryPolicy) OnWake(p *Process) {
	p.RecentSchedules = 0
	if l.cfg.LotteryDecayEnabled {
		p.Lottery.Boost++
	}
}
