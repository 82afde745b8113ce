package models

import (
	"fmt"
	"strings"
	"time"
)

// Segment is a single timestamped utterance.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the ordered, immutable result of transcribing a
// session's audio. Segment start offsets are non-decreasing.
type Transcript struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Text returns the plain transcript text with segments joined by spaces.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount counts whitespace-delimited tokens across all segments.
func (t *Transcript) WordCount() int {
	return len(strings.Fields(t.Text()))
}

// Duration is the end offset of the last segment.
func (t *Transcript) Duration() time.Duration {
	if len(t.Segments) == 0 {
		return 0
	}
	last := t.Segments[len(t.Segments)-1]
	return time.Duration(last.End * float64(time.Second))
}

// Formatted renders the transcript with a leading [MM:SS] timestamp
// per segment, one segment per paragraph.
func (t *Transcript) Formatted() string {
	var b strings.Builder
	for i, seg := range t.Segments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**[%s]** %s", FormatClock(time.Duration(seg.Start*float64(time.Second))), strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// Ordered reports whether segment start offsets are non-decreasing.
func (t *Transcript) Ordered() bool {
	for i := 1; i < len(t.Segments); i++ {
		if t.Segments[i].Start < t.Segments[i-1].Start {
			return false
		}
	}
	return true
}
