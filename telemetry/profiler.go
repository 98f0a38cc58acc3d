package telemetry

import (
	"sort"
	"sync"
	"time"
)

// Profiler accumulates per-reactor wall-clock cost, supplementing the
// Prometheus histogram with an in-process summary cheap enough to print
// at the end of a CLI run (original_source profiling.rs). Purely
// additive instrumentation: it never influences simulated outcomes.
type Profiler struct {
	mu      sync.Mutex
	entries map[string]*profileEntry
}

type profileEntry struct {
	count int
	total time.Duration
	max   time.Duration
}

// NewProfiler constructs an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{entries: make(map[string]*profileEntry)}
}

// Record adds one reactor invocation's duration under name.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[name]
	if !ok {
		e = &profileEntry{}
		p.entries[name] = e
	}
	e.count++
	e.total += d
	if d > e.max {
		e.max = d
	}
}

// Timed runs fn and records its duration under name.
func (p *Profiler) Timed(name string, fn func()) {
	start := time.Now()
	fn()
	p.Record(name, time.Since(start))
}

// ReactorStat is one row of a Profiler.Report().
type ReactorStat struct {
	Name     string
	Count    int
	Total    time.Duration
	Max      time.Duration
	Average  time.Duration
}

// Report returns per-reactor stats sorted by descending total duration,
// the ordering most useful for spotting which reactor dominates step cost.
func (p *Profiler) Report() []ReactorStat {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make([]ReactorStat, 0, len(p.entries))
	for name, e := range p.entries {
		avg := time.Duration(0)
		if e.count > 0 {
			avg = e.total / time.Duration(e.count)
		}
		stats = append(stats, ReactorStat{Name: name, Count: e.count, Total: e.total, Max: e.max, Average: avg})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Total > stats[j].Total })
	return stats
}
