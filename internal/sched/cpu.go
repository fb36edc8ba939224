package sched

// CPU is one simulated core: a home for a run queue and, at most, one
// Running process. Each CPU's scheduler loop executes as its own goroutine
// (scheduler.go), giving genuine parallelism across CPUs; the process-table
// lock (table.go) is the only thing that serializes them, matching the
// "single global process-table lock + per-CPU run-queue lock" hierarchy of
// spec.md section 5.
type CPU struct {
	ID      int
	Queue   RunQueue
	Current *Process // the slot Running on this CPU, nil if idle

	// ncli is the nested disable-interrupts depth (spec.md section 5). It is
	// only ever touched by this CPU's own scheduler goroutine, so it needs no
	// synchronization of its own.
	ncli int
}

// Cli disables interrupts on this CPU, tracking nesting depth. sched()
// asserts ncli == 1 at the point it is called (section 5).
func (c *CPU) Cli() {
	c.ncli++
}

// Sti re-enables interrupts if this is the outermost Cli.
func (c *CPU) Sti() {
	if c.ncli == 0 {
		panic("sched: Sti without matching Cli")
	}
	c.ncli--
}

// interruptsDisabled reports whether this CPU currently has interrupts
// masked (ncli > 0).
func (c *CPU) interruptsDisabled() bool {
	return c.ncli > 0
}
