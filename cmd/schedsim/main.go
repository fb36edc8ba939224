package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/xv6sched/xv6sched/internal/sched"
	"go.uber.org/automaxprocs/maxprocs"
)

const _console = `
 __  _____   __ ___  ___  ___| |__   ___  __| |
 \ \/ / \ \ / // __|/ __|/ __| '_ \ / _ \/ _` + "`" + ` |
  >  <   \ V / \__ \ (__| (__| | | |  __/ (_| |
 /_/\_\   \_/  |___/\___|\___|_| |_|\___|\__,_|
`

func main() {
	if _, err := maxprocs.Set(); err != nil {
		slog.Warn("maxprocs: failed to adjust GOMAXPROCS", "err", err)
	}

	var (
		policyName   string
		ncpu         int
		scenarioPath string
		runTicks     uint64
		metricsAddr  string
	)

	root := &cobra.Command{
		Use:   "schedsim",
		Short: "xv6-style process scheduler simulator",
		Long: _console + `
schedsim drives the scheduler core (internal/sched) through a scenario:
a fixed set of processes, each running a small synthetic workload, under
one of three pluggable policies (lottery, priority+aging, round-robin).

Examples:
  schedsim run --policy lottery --scenario-file scenarios/fair-share.yaml
  schedsim run --policy priority --ncpu 4 --ticks 500
  schedsim serve-metrics --policy round-robin --addr :9102`,
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "run one scenario to completion and print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmd(cmd.Context(), policyName, ncpu, scenarioPath, runTicks)
		},
	}
	run.Flags().StringVar(&policyName, "policy", "lottery", "scheduling policy: lottery, priority, round-robin")
	run.Flags().IntVar(&ncpu, "ncpu", 1, "number of simulated CPUs")
	run.Flags().StringVar(&scenarioPath, "scenario-file", "", "YAML scenario file (overrides --policy/--ncpu)")
	run.Flags().Uint64Var(&runTicks, "ticks", 200, "number of simulated ticks to run when no scenario file is given")

	serveMetrics := &cobra.Command{
		Use:   "serve-metrics",
		Short: "run a scenario and expose its counters as Prometheus metrics until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMetricsCmd(cmd.Context(), policyName, ncpu, scenarioPath, metricsAddr)
		},
	}
	serveMetrics.Flags().StringVar(&policyName, "policy", "lottery", "scheduling policy: lottery, priority, round-robin")
	serveMetrics.Flags().IntVar(&ncpu, "ncpu", 1, "number of simulated CPUs")
	serveMetrics.Flags().StringVar(&scenarioPath, "scenario-file", "", "YAML scenario file (overrides --policy/--ncpu)")
	serveMetrics.Flags().StringVar(&metricsAddr, "addr", ":9102", "listen address for /metrics")

	root.AddCommand(run, serveMetrics)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultSpec(policyName string, ncpu int, ticks uint64) *scenarioSpec {
	return &scenarioSpec{
		Policy: policyName,
		NCPU:   ncpu,
		Ticks:  ticks,
		Procs: []scenarioProc{
			{Name: "hog-a", Tickets: 10, Priority: 3, Kind: "cpu-hog", Ticks: 80},
			{Name: "hog-b", Tickets: 30, Priority: 3, Kind: "cpu-hog", Ticks: 80},
			{Name: "io-bound", Tickets: 10, Priority: 1, Kind: "sleeper", Ticks: 40},
			{Name: "polite", Tickets: 10, Priority: 5, Kind: "yielder", Ticks: 40},
		},
	}
}

func loadOrDefault(scenarioPath, policyName string, ncpu int, ticks uint64) (*scenarioSpec, error) {
	if scenarioPath == "" {
		return defaultSpec(policyName, ncpu, ticks), nil
	}
	return loadScenario(scenarioPath)
}

func runCmd(ctx context.Context, policyName string, ncpu int, scenarioPath string, ticks uint64) error {
	spec, err := loadOrDefault(scenarioPath, policyName, ncpu, ticks)
	if err != nil {
		return err
	}

	s, err := runScenario(spec)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "policy\t%s\n", s.Kind())
	fmt.Fprintf(tw, "ticks\t%d\n", s.Ticks())
	fmt.Fprintf(tw, "context_switches\t%d\n", s.ContextSwitches())
	tw.Flush()

	fmt.Println()
	s.Dump(os.Stdout)

	if s.Kind() == sched.PriorityKind {
		fmt.Println()
		s.PrintSchedLog(os.Stdout)
	}
	return nil
}

func serveMetricsCmd(ctx context.Context, policyName string, ncpu int, scenarioPath, addr string) error {
	spec, err := loadOrDefault(scenarioPath, policyName, ncpu, 0)
	if err != nil {
		return err
	}
	spec.Ticks = 0 // run indefinitely; metrics are served until interrupted

	kind, err := policyFromName(spec.Policy)
	if err != nil {
		return err
	}
	cfg := sched.DefaultConfig()
	if spec.NCPU > 0 {
		cfg.NCPU = spec.NCPU
	}
	s, err := sched.NewScheduler(kind, cfg)
	if err != nil {
		return err
	}

	init, err := s.Spawn("init", 0, func(pc *sched.ProcContext) {
		for !pc.Killed() {
			if sched.SleepTicks(s, pc, 1000) {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	for _, p := range spec.Procs {
		ticks := p.Ticks
		if ticks <= 0 {
			ticks = 1 << 30 // effectively unbounded under serve-metrics
		}
		proc, err := s.Spawn(p.Name, init.PID, workloadFor(s, p.Kind, ticks))
		if err != nil {
			return err
		}
		if p.Tickets > 0 {
			_ = s.SetTickets(proc.PID, p.Tickets)
		}
		if p.Priority > 0 {
			_ = s.SetPriority(proc.PID, p.Priority)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Run(ctx)
	defer s.Stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(sched.NewPrometheusCollector(s))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	slog.Info("serving scheduler metrics", "addr", addr, "policy", s.Kind())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
