package game

import "time"

// stageNames is the substep pipeline in execution order. The perf log and
// HUD report stages in this order rather than sorting by cost; the pipeline
// is short enough that the fixed order reads better.
var stageNames = [...]string{"clear", "p2g", "grid", "g2p"}

// PerfStats keeps a rolling window of per-stage substep timings.
type PerfStats struct {
	samples    map[string][]time.Duration
	maxSamples int
}

// NewPerfStats creates a tracker sized for about two seconds of frames.
func NewPerfStats() *PerfStats {
	return &PerfStats{
		samples:    make(map[string][]time.Duration, len(stageNames)),
		maxSamples: 120,
	}
}

// Record adds a duration sample for the named stage.
func (p *PerfStats) Record(name string, d time.Duration) {
	p.samples[name] = append(p.samples[name], d)
	if len(p.samples[name]) > p.maxSamples {
		p.samples[name] = p.samples[name][1:]
	}
}

// Avg returns the average duration for the named stage over the window.
func (p *PerfStats) Avg(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Total returns the average full-substep cost: the pipeline stage averages
// summed.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for _, name := range stageNames {
		total += p.Avg(name)
	}
	return total
}
