package pipeline

import "github.com/raphaelgruber/meetnotes/internal/status"

// State is the lifecycle position of the current session.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateStopping     State = "stopping"
	StateTranscribing State = "transcribing"
	StateSummarizing  State = "summarizing"
	StateWriting      State = "writing"
	StateDone         State = "done"
	StateCancelled    State = "cancelled"
	StateFailed       State = "failed"
)

// transitions is the full set of legal state changes. Every phase may
// fail; cancellation is only legal before transcription starts.
var transitions = map[State][]State{
	StateIdle:         {StateRecording},
	StateRecording:    {StateStopping, StateCancelled, StateFailed},
	StateStopping:     {StateTranscribing, StateCancelled, StateFailed},
	StateTranscribing: {StateSummarizing, StateFailed},
	StateSummarizing:  {StateWriting, StateFailed},
	StateWriting:      {StateDone, StateFailed},
	StateDone:         {StateIdle},
	StateCancelled:    {StateIdle},
	StateFailed:       {StateIdle},
}

func (s State) canTransition(to State) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the session has finished, one way or another.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}

// Cancelable reports whether a cancel request is still honored. Once
// transcription starts the session runs to completion or failure.
func (s State) Cancelable() bool {
	return s == StateRecording || s == StateStopping
}

// phase maps the internal state onto the coarse externally visible
// status surface.
func (s State) phase() status.Phase {
	switch s {
	case StateRecording:
		return status.PhaseRecording
	case StateStopping, StateTranscribing, StateSummarizing, StateWriting:
		return status.PhaseProcessing
	default:
		return status.PhaseIdle
	}
}
