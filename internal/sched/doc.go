// Package sched implements the process-scheduling core of a small
// xv6-style teaching kernel: a fixed-capacity process table, per-CPU run
// queues, three pluggable selection policies, timer-driven preemption,
// channel-keyed sleep/wake, and the statistics surface a user-space harness
// reads.
//
// Overview
//
//   - Scheduler: the top-level object. NewScheduler(kind, cfg) picks one of
//     LotteryKind, PriorityKind, RoundRobinKind and wires a process table and
//     one CPU per cfg.NCPU. Run(ctx) starts one goroutine per CPU plus a
//     tick driver; Stop() cancels and waits.
//
//   - Spawn(name, parentPID, workload) creates a process, load-balances it
//     onto the least-loaded CPU, and starts its workload goroutine. The
//     workload is arbitrary Go code that cooperates with the scheduler
//     through a *ProcContext: pc.Tick() consumes one simulated tick and may
//     be preempted, pc.Yield() gives up the CPU early, pc.SleepOn(chanKey)
//     blocks until a matching Wakeup, and returning from the workload
//     function is an implicit exit().
//
//   - Policies (lottery.go, priority.go, roundrobin.go) each supply their own
//     RunQueue representation and two decisions the scheduler loop defers to
//     them: the per-process time slice, and whether some other Runnable
//     process has a standing claim to preempt early.
//
//   - Wait(pid) / Kill(pid) / SetTickets / SetPriority / GetPInfo are the
//     external operations a user-space harness calls; PrintSchedLog and Dump
//     are debug aids with no scheduling effect.
//
// # Context switches
//
// There is no real kernel stack to swap here, so "context_switch" is
// realized as a synchronous handoff over a pair of channels per process: the
// scheduler sends on resume to let the workload goroutine run one tick, then
// receives on yielded to learn what happened. This keeps the process-table
// lock's hold-across-a-dispatch semantics (spec section 5) intact while
// giving every CPU's loop genuine goroutine-level concurrency with the
// others — only the process-table lock and each run queue's own lock
// serialize them.
//
// # Example
//
//	s, _ := sched.NewScheduler(sched.LotteryKind, sched.DefaultConfig())
//	s.Run(context.Background())
//	p, _ := s.Spawn("cpu-hog", 0, func(pc *sched.ProcContext) {
//		for i := 0; i < 1000; i++ {
//			if pc.Tick() {
//				return // killed
//			}
//		}
//	})
//	s.SetTickets(p.PID, 30)
package sched
