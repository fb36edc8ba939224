package sched

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// PInfo is one record of the getpinfo() surface (spec.md 4.7/6): for a live
// slot, {pid, tickets-or-priority, ticks_scheduled}; zero-valued for an
// Unused slot.
type PInfo struct {
	PID            int
	Name           string
	TicketsOrPrio  int
	TicksScheduled uint64
}

// GetPInfo fills at most NPROC records, one per slot, matching getpinfo()'s
// contract.
func (s *Scheduler) GetPInfo() []PInfo {
	s.table.Lock()
	defer s.table.Unlock()

	infos := make([]PInfo, len(s.table.slots))
	for i, p := range s.table.slots {
		if p.PID == 0 {
			continue
		}
		v := p.Priority.Priority
		if s.policy.Kind() == LotteryKind {
			v = int(p.Lottery.Tickets)
		}
		infos[i] = PInfo{PID: p.PID, Name: p.Name, TicketsOrPrio: v, TicksScheduled: p.TicksScheduled}
	}
	return infos
}

// SetTickets sets pid's ticket count (lottery only).
func (s *Scheduler) SetTickets(pid int, n uint32) error {
	if n < 1 {
		return ErrBadTickets
	}
	s.table.Lock()
	defer s.table.Unlock()
	p := s.table.byPID(pid)
	if p == nil {
		return ErrPIDNotFound
	}
	p.Lottery.Tickets = n
	return nil
}

// SetPriority sets pid's priority (priority policy only), re-inserting it
// into the correct band if it is currently Runnable (spec.md 4.7).
func (s *Scheduler) SetPriority(pid, prio int) error {
	if prio < minPriority || prio > maxPriority {
		return ErrBadPriority
	}
	s.table.Lock()
	defer s.table.Unlock()
	p := s.table.byPID(pid)
	if p == nil {
		return ErrPIDNotFound
	}

	if p.State == Runnable && p.CPU >= 0 {
		cpu := s.cpus[p.CPU]
		cpu.Queue.Remove(p)
		p.Priority.Priority = prio
		p.Priority.WaitTicks = 0
		if err := cpu.Queue.Add(p); err != nil {
			return err
		}
		return nil
	}

	p.Priority.Priority = prio
	p.Priority.WaitTicks = 0
	return nil
}

// scheduleLog is a fixed-capacity ring of recent dispatch events, the
// analog of the priority scheduler's log_schedule()/print_sched_log, used
// for Scheduler.PrintSchedLog's debug listing.
type scheduleLog struct {
	entries []logEntry
	next    int
	filled  bool
}

type logEntry struct {
	Ticks    uint64
	PID      int
	Priority int
	Switch   uint64
}

func newScheduleLog(capacity int) *scheduleLog {
	return &scheduleLog{entries: make([]logEntry, capacity)}
}

func (l *scheduleLog) append(ticks uint64, pid, prio int, sw uint64) {
	l.entries[l.next] = logEntry{Ticks: ticks, PID: pid, Priority: prio, Switch: sw}
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.filled = true
	}
}

func (l *scheduleLog) snapshot() []logEntry {
	if !l.filled {
		return append([]logEntry(nil), l.entries[:l.next]...)
	}
	out := make([]logEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// PrintSchedLog writes the recent dispatch log (priority policy's
// print_sched_log syscall) to w as a tab-aligned table.
func (s *Scheduler) PrintSchedLog(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKS\tPID\tPRIORITY\tSWITCH#")
	for _, e := range s.scheduleLog.snapshot() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", e.Ticks, e.PID, e.Priority, e.Switch)
	}
	tw.Flush()
}

// Dump writes a procdump-style table of every process slot: pid, state,
// name, home CPU, and the active policy's scheduling metadata. Grounded on
// the lottery scheduler's procdump() debug routine.
func (s *Scheduler) Dump(w io.Writer) {
	s.table.Lock()
	defer s.table.Unlock()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tSTATE\tNAME\tCPU\tTICKETS\tPRIORITY\tTICKS_SCHEDULED")
	for _, p := range s.table.slots {
		if p.State == Unused {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
			p.PID, p.State, p.Name, p.CPU, p.Lottery.Tickets, p.Priority.Priority, p.TicksScheduled)
	}
	tw.Flush()
}
