package audio

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const pactlTimeout = 2 * time.Second

// DefaultSink returns the name of the default audio sink via pactl.
// An empty result means "use the system default" and is not an error;
// capture falls back to the default monitor source.
func DefaultSink() string {
	ctx, cancel := context.WithTimeout(context.Background(), pactlTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pactl", "get-default-sink").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// DefaultSource returns the name of the default input device via pactl.
func DefaultSource() string {
	ctx, cancel := context.WithTimeout(context.Background(), pactlTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pactl", "get-default-source").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// monitorTarget resolves the system-audio capture target for the given
// capture tool. pw-record accepts a sink name and records its monitor;
// parec needs the explicit .monitor source.
func monitorTarget(bin string) string {
	sink := DefaultSink()
	if sink == "" {
		return ""
	}
	if strings.HasSuffix(bin, "parec") {
		return sink + ".monitor"
	}
	return sink
}
