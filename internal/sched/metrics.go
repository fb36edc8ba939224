package sched

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector adapts a Scheduler's counters to prometheus.Collector,
// grounded on the metrics surface pattern used for resource-manager-style
// daemons in the retrieval pack (intel-cri-resource-manager). Registered
// once by cmd/schedsim's serve-metrics command.
type PrometheusCollector struct {
	s *Scheduler

	contextSwitches *prometheus.Desc
	ticksScheduled  *prometheus.Desc
	runqueueLength  *prometheus.Desc
	globalTicks     *prometheus.Desc
}

// NewPrometheusCollector wraps s for registration with a prometheus.Registry.
func NewPrometheusCollector(s *Scheduler) *PrometheusCollector {
	return &PrometheusCollector{
		s: s,
		contextSwitches: prometheus.NewDesc(
			"xv6sched_context_switches_total",
			"Cumulative number of scheduler dispatches since boot.",
			nil, nil,
		),
		ticksScheduled: prometheus.NewDesc(
			"xv6sched_process_ticks_scheduled",
			"Cumulative number of times a process has been selected to run.",
			[]string{"pid", "name"}, nil,
		),
		runqueueLength: prometheus.NewDesc(
			"xv6sched_runqueue_length",
			"Current number of Runnable processes on a CPU's run queue.",
			[]string{"cpu"}, nil,
		),
		globalTicks: prometheus.NewDesc(
			"xv6sched_ticks_total",
			"Cumulative number of simulated timer ticks.",
			nil, nil,
		),
	}
}

func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.contextSwitches
	ch <- c.ticksScheduled
	ch <- c.runqueueLength
	ch <- c.globalTicks
}

func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.contextSwitches, prometheus.CounterValue, float64(c.s.ContextSwitches()))
	ch <- prometheus.MustNewConstMetric(c.globalTicks, prometheus.CounterValue, float64(c.s.Ticks()))

	for _, info := range c.s.GetPInfo() {
		if info.PID == 0 {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.ticksScheduled, prometheus.CounterValue,
			float64(info.TicksScheduled), fmt.Sprint(info.PID), info.Name)
	}

	for _, cpu := range c.s.cpus {
		ch <- prometheus.MustNewConstMetric(c.runqueueLength, prometheus.GaugeValue,
			float64(cpu.Queue.Len()), fmt.Sprint(cpu.ID))
	}
}
