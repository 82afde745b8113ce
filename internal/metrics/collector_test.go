package metrics

import (
	"testing"
	"time"
)

func TestCollectorTimings(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpCapture, 2*time.Second)
	c.RecordTiming(OpCapture, 4*time.Second)

	snap := c.Snapshot()
	ps, ok := snap.Phases[OpCapture]
	if !ok {
		t.Fatal("capture phase missing from snapshot")
	}
	if ps.Count != 2 {
		t.Errorf("count = %d, want 2", ps.Count)
	}
	if ps.MinTimeMs != 2000 || ps.MaxTimeMs != 4000 {
		t.Errorf("min/max = %d/%d, want 2000/4000", ps.MinTimeMs, ps.MaxTimeMs)
	}
	if ps.AvgTimeMs != 3000 {
		t.Errorf("avg = %v, want 3000", ps.AvgTimeMs)
	}
	if ps.WordsPerSecond != 0 {
		t.Errorf("words/s = %v for a wordless phase", ps.WordsPerSecond)
	}
}

func TestCollectorThroughput(t *testing.T) {
	c := NewCollector()

	c.RecordWords(OpTranscribe, 10*time.Second, 500)

	ps := c.Snapshot().Phases[OpTranscribe]
	if ps.TotalWords != 500 {
		t.Errorf("words = %d, want 500", ps.TotalWords)
	}
	if ps.WordsPerSecond != 50 {
		t.Errorf("words/s = %v, want 50", ps.WordsPerSecond)
	}
}

func TestSnapshotSkipsEmptyPhases(t *testing.T) {
	c := NewCollector()
	if n := len(c.Snapshot().Phases); n != 0 {
		t.Errorf("fresh collector has %d phases", n)
	}
}
