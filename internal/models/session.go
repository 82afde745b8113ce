// Package models defines data structures for the meetnotes pipeline.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects which audio sources a session captures.
type Mode string

const (
	// ModeMic captures the default microphone only.
	ModeMic Mode = "mic"

	// ModeSystem captures the default sink monitor only.
	ModeSystem Mode = "system"

	// ModeCombined captures both and mixes them into one file.
	ModeCombined Mode = "combined"
)

// ParseMode validates a recording mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMic, ModeSystem, ModeCombined:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid recording mode %q (want mic, system or combined)", s)
	}
}

// Session is one capture-to-note attempt. Its identity is the
// start-of-recording instant, which also becomes the note's date.
// At most one session exists at a time; the pipeline enforces this.
type Session struct {
	StartedAt time.Time
	StoppedAt time.Time
	Title     string
	UserNotes string
	Mode      Mode

	// ArtifactPaths are audio files owned exclusively by this session
	// until transcription consumes them.
	ArtifactPaths []string

	// ScratchDir holds all intermediate files for this session.
	ScratchDir string
}

// NewSession creates a session starting now.
func NewSession(mode Mode, scratchDir string) *Session {
	return &Session{
		StartedAt:  time.Now(),
		Mode:       mode,
		ScratchDir: scratchDir,
	}
}

// Duration returns the elapsed recording time. Before StoppedAt is
// set it measures against the current time. Never negative.
func (s *Session) Duration() time.Duration {
	end := s.StoppedAt
	if end.IsZero() {
		end = time.Now()
	}
	d := end.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// DisplayTitle returns the user title, or a timestamp-derived default.
func (s *Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "Meeting " + s.StartedAt.Format("2006-01-02 15:04")
}

// ErrSessionActive is returned when a new recording is requested while
// another session is still live.
var ErrSessionActive = errors.New("a recording session is already active")
