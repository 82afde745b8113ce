// Package metrics provides in-memory timing statistics for pipeline
// phases, logged at the end of each session.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Phase names for the collector.
const (
	OpCapture    = "capture"
	OpTranscribe = "transcribe"
	OpSummarize  = "summarize"
	OpWriteNote  = "write_note"
)

// PhaseMetrics holds aggregated timings for a single pipeline phase.
type PhaseMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Words processed (transcription and summarization only).
	TotalWords int64
}

// PhaseSnapshot provides computed stats from raw metrics.
type PhaseSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	// WordsPerSecond is zero when the phase tracks no words.
	TotalWords     int64
	WordsPerSecond float64
}

// Snapshot is the full per-process view at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	Phases        map[string]PhaseSnapshot
}

// Collector aggregates per-phase statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	phases    map[string]*PhaseMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		phases:    make(map[string]*PhaseMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a phase.
// Caller must hold write lock.
func (c *Collector) getOrCreate(phase string) *PhaseMetrics {
	m, ok := c.phases[phase]
	if !ok {
		m = &PhaseMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.phases[phase] = m
	}
	return m
}

// RecordTiming records the duration of one phase run.
func (c *Collector) RecordTiming(phase string, duration time.Duration) {
	c.RecordWords(phase, duration, 0)
}

// RecordWords records a phase run together with the number of words it
// processed, for throughput reporting.
func (c *Collector) RecordWords(phase string, duration time.Duration, words int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(phase)
	m.Count++
	m.TotalTime += duration
	m.TotalWords += int64(words)

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Snapshot returns a point-in-time snapshot of all recorded phases.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Phases:        make(map[string]PhaseSnapshot, len(c.phases)),
	}

	for phase, m := range c.phases {
		if m.Count == 0 {
			continue
		}
		ps := PhaseSnapshot{
			Count:       m.Count,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
			TotalWords:  m.TotalWords,
		}
		if m.TotalWords > 0 && m.TotalTime > 0 {
			ps.WordsPerSecond = float64(m.TotalWords) / m.TotalTime.Seconds()
		}
		snap.Phases[phase] = ps
	}
	return snap
}
