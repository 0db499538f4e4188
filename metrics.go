package rvsim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats aggregates the runtime counters the simulator reports:
// cycles, retired instructions, pipeline flushes, L1 instruction/data
// cache hits and misses, and branch prediction accuracy. L2/L3 levels
// and DRAM row-buffer behavior are not counted. Each is exposed
// as a Prometheus metric so `--metrics-addr` can serve them
// alongside whatever textual summary the CLI prints at exit.
type Stats struct {
	Cycles   prometheus.Counter
	Instret  prometheus.Counter
	Flushes  prometheus.Counter

	BranchPredicted prometheus.Counter
	BranchCorrect   prometheus.Counter

	ICacheHits   prometheus.Counter
	ICacheMisses prometheus.Counter
	DCacheHits   prometheus.Counter
	DCacheMisses prometheus.Counter

	lastICacheHits, lastICacheMisses uint64
	lastDCacheHits, lastDCacheMisses uint64
	lastRetired, lastFlushes         uint64
	lastBranchChecked, lastBranchOK  uint64
}

// NewStats registers a fresh metric set against the default
// Prometheus registry.
func NewStats() *Stats {
	ns := "rvsim"
	return &Stats{
		Cycles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "cycles_total", Help: "Cycles executed.",
		}),
		Instret: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "instructions_retired_total", Help: "Instructions committed.",
		}),
		Flushes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "pipeline_flushes_total", Help: "Full pipeline flushes (traps, interrupts, mispredicts, xRET).",
		}),
		BranchPredicted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "branch_predictions_total", Help: "Branches/jumps resolved at commit.",
		}),
		BranchCorrect: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "branch_correct_total", Help: "Correctly predicted branches/jumps.",
		}),
		ICacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "icache", Name: "hits_total", Help: "L1 instruction cache hits.",
		}),
		ICacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "icache", Name: "misses_total", Help: "L1 instruction cache misses.",
		}),
		DCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "dcache", Name: "hits_total", Help: "L1 data cache hits.",
		}),
		DCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "dcache", Name: "misses_total", Help: "L1 data cache misses.",
		}),
	}
}

// Observe is called once per Simulator.Step, diffing the cumulative
// counters the Cpu's cache levels and the Pipeline's plain retire/
// flush/branch counters already keep (per-call deltas, since
// prometheus.Counter only supports Add). stage_commit.go bumps those
// pipeline counters inline so it never needs to import prometheus
// itself.
func (s *Stats) Observe(cpu *Cpu, p *Pipeline) {
	s.Cycles.Inc()

	if cpu.ICache != nil {
		s.addDelta(s.ICacheHits, cpu.ICache.Hits, &s.lastICacheHits)
		s.addDelta(s.ICacheMisses, cpu.ICache.Misses, &s.lastICacheMisses)
	}
	if cpu.DCache != nil {
		s.addDelta(s.DCacheHits, cpu.DCache.Hits, &s.lastDCacheHits)
		s.addDelta(s.DCacheMisses, cpu.DCache.Misses, &s.lastDCacheMisses)
	}

	s.addDelta(s.Instret, p.Retired, &s.lastRetired)
	s.addDelta(s.Flushes, p.Flushes, &s.lastFlushes)
	s.addDelta(s.BranchPredicted, p.BranchChecked, &s.lastBranchChecked)
	s.addDelta(s.BranchCorrect, p.BranchCorrect, &s.lastBranchOK)
}

func (s *Stats) addDelta(c prometheus.Counter, cur uint64, last *uint64) {
	if cur > *last {
		c.Add(float64(cur - *last))
		*last = cur
	}
}
