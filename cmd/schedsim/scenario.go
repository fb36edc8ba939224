package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xv6sched/xv6sched/internal/sched"
	"gopkg.in/yaml.v3"
)

// scenarioSpec is the YAML-decodable shape of a --scenario-file document: a
// list of processes to spawn up front, each running one of a small set of
// named synthetic workloads so a scenario file never needs to embed Go code.
type scenarioSpec struct {
	Policy string           `yaml:"policy"`
	NCPU   int              `yaml:"ncpu"`
	Ticks  uint64           `yaml:"run_ticks"`
	Procs  []scenarioProc   `yaml:"processes"`
}

type scenarioProc struct {
	Name     string `yaml:"name"`
	Tickets  uint32 `yaml:"tickets"`
	Priority int    `yaml:"priority"`
	Kind     string `yaml:"workload"` // "cpu-hog", "sleeper", "yielder"
	Ticks    int    `yaml:"ticks"`    // total simulated ticks this workload consumes before exiting
}

func loadScenario(path string) (*scenarioSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s scenarioSpec
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	return &s, nil
}

func policyFromName(name string) (sched.Kind, error) {
	switch name {
	case "", "lottery":
		return sched.LotteryKind, nil
	case "priority":
		return sched.PriorityKind, nil
	case "round-robin", "rr":
		return sched.RoundRobinKind, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want lottery, priority, or round-robin)", name)
	}
}

// workloadFor builds a Workload closure from a scenario's small vocabulary of
// synthetic process shapes: a cpu-hog spins its full tick budget, a sleeper
// alternates ticking and sleeping, a yielder gives the CPU back early every
// other tick.
func workloadFor(s *sched.Scheduler, kind string, ticks int) sched.Workload {
	return func(pc *sched.ProcContext) {
		for i := 0; i < ticks; i++ {
			switch kind {
			case "sleeper":
				if i%4 == 3 {
					if sched.SleepTicks(s, pc, 2) {
						return
					}
					continue
				}
				if pc.Tick() {
					return
				}
			case "yielder":
				if i%2 == 1 {
					if pc.Yield() {
						return
					}
					continue
				}
				if pc.Tick() {
					return
				}
			default: // cpu-hog
				if pc.Tick() {
					return
				}
			}
		}
	}
}

// runScenario executes a scenario: build the scheduler, spawn every configured
// process under an implicit init (pid 1), run for the requested number of
// ticks, then stop and return the scheduler for reporting.
func runScenario(spec *scenarioSpec) (*sched.Scheduler, error) {
	kind, err := policyFromName(spec.Policy)
	if err != nil {
		return nil, err
	}

	cfg := sched.DefaultConfig()
	if spec.NCPU > 0 {
		cfg.NCPU = spec.NCPU
	}

	s, err := sched.NewScheduler(kind, cfg)
	if err != nil {
		return nil, err
	}

	initProc, err := s.Spawn("init", 0, func(pc *sched.ProcContext) {
		for !pc.Killed() {
			if sched.SleepTicks(s, pc, 1000) {
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	for _, p := range spec.Procs {
		ticks := p.Ticks
		if ticks <= 0 {
			ticks = 50
		}
		proc, err := s.Spawn(p.Name, initProc.PID, workloadFor(s, p.Kind, ticks))
		if err != nil {
			return nil, fmt.Errorf("spawning %q: %w", p.Name, err)
		}
		if p.Tickets > 0 {
			_ = s.SetTickets(proc.PID, p.Tickets)
		}
		if p.Priority > 0 {
			_ = s.SetPriority(proc.PID, p.Priority)
		}
	}

	s.Run(context.Background())

	target := spec.Ticks
	if target == 0 {
		target = 200
	}
	deadline := time.Now().Add(time.Duration(target) * sched.TickInterval * 4)
	for s.Ticks() < target && time.Now().Before(deadline) {
		time.Sleep(sched.TickInterval)
	}
	s.Stop()
	return s, nil
}
