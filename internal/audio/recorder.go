// Package audio captures meeting audio through PipeWire/PulseAudio
// subprocesses (pw-record, with parec as fallback) and mixes combined
// recordings with ffmpeg.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

var (
	// ErrDeviceUnavailable means the required audio source or sink
	// could not be opened, or no capture tool is installed.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrCaptureAborted means the capture subprocess exited before a
	// stop was requested. Treated as a session failure, never as a
	// recording of silence.
	ErrCaptureAborted = errors.New("capture aborted unexpectedly")
)

// Test hooks.
var (
	lookPath     = exec.LookPath
	startCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command(name, args...)
	}
)

const (
	stopGrace = 5 * time.Second
	killGrace = 2 * time.Second
	mixLimit  = 30 * time.Second
)

// Recorder starts, stops and cancels capture subprocesses.
type Recorder struct {
	log      *slog.Logger
	keepTemp bool
}

// NewRecorder creates a recorder. keepTemp preserves intermediate
// per-source files after mixing, for debugging.
func NewRecorder(log *slog.Logger, keepTemp bool) *Recorder {
	return &Recorder{log: log, keepTemp: keepTemp}
}

// capture is one running capture subprocess and its output file.
type capture struct {
	cmd     *exec.Cmd
	path    string
	done    chan struct{}
	waitErr error
}

func (c *capture) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Handle owns an in-flight capture until Stop or Cancel consumes it.
type Handle struct {
	mode       models.Mode
	scratchDir string
	outPath    string
	captures   []*capture
	tempPaths  []string
}

// Failed reports whether any capture subprocess has already exited.
// The record view polls this each tick so a dead recorder surfaces
// immediately instead of at stop time.
func (h *Handle) Failed() bool {
	for _, c := range h.captures {
		if c.exited() {
			return true
		}
	}
	return false
}

// Start launches capture for the given mode, writing artifacts under
// scratchDir. Returns ErrDeviceUnavailable if no capture tool is
// present or a subprocess cannot start.
func (r *Recorder) Start(mode models.Mode, scratchDir string) (*Handle, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	bin, err := findCaptureBinary()
	if err != nil {
		return nil, err
	}

	r.log.Info("starting capture", "mode", mode, "tool", bin, "scratch", scratchDir)

	h := &Handle{mode: mode, scratchDir: scratchDir}

	switch mode {
	case models.ModeMic:
		h.outPath = filepath.Join(scratchDir, "recording.wav")
		c, err := r.startCapture(bin, "", 1, h.outPath)
		if err != nil {
			return nil, err
		}
		h.captures = []*capture{c}

	case models.ModeSystem:
		h.outPath = filepath.Join(scratchDir, "recording.wav")
		c, err := r.startCapture(bin, monitorTarget(bin), 2, h.outPath)
		if err != nil {
			return nil, err
		}
		h.captures = []*capture{c}

	case models.ModeCombined:
		micPath := filepath.Join(scratchDir, "temp-mic.wav")
		sysPath := filepath.Join(scratchDir, "temp-system.wav")
		h.outPath = filepath.Join(scratchDir, "recording.wav")
		h.tempPaths = []string{micPath, sysPath}

		mic, err := r.startCapture(bin, "", 1, micPath)
		if err != nil {
			return nil, err
		}
		sys, err := r.startCapture(bin, monitorTarget(bin), 2, sysPath)
		if err != nil {
			r.terminate(mic)
			return nil, err
		}
		h.captures = []*capture{mic, sys}

	default:
		return nil, fmt.Errorf("unknown recording mode %q", mode)
	}

	return h, nil
}

func (r *Recorder) startCapture(bin, target string, channels int, out string) (*capture, error) {
	args := captureArgs(bin, target, channels, out)
	cmd := startCommand(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrDeviceUnavailable, bin, err)
	}

	c := &capture{cmd: cmd, path: out, done: make(chan struct{})}
	go func() {
		c.waitErr = cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

// Stop gracefully terminates the capture and returns the finalized
// artifact paths. If any subprocess had already exited, the handle's
// partial files are removed and ErrCaptureAborted is returned.
func (r *Recorder) Stop(h *Handle) ([]string, error) {
	aborted := h.Failed()

	for _, c := range h.captures {
		r.terminate(c)
	}

	if aborted {
		r.log.Error("capture subprocess exited before stop", "mode", h.mode)
		r.removeScratch(h)
		return nil, ErrCaptureAborted
	}

	if h.mode == models.ModeCombined {
		if err := r.mix(h); err != nil {
			r.removeScratch(h)
			return nil, fmt.Errorf("%w: %v", ErrCaptureAborted, err)
		}
	}

	if fi, err := os.Stat(h.outPath); err != nil || fi.Size() == 0 {
		r.log.Error("capture produced no audio", "path", h.outPath)
		r.removeScratch(h)
		return nil, ErrCaptureAborted
	}

	r.log.Info("capture stopped", "path", h.outPath)
	return []string{h.outPath}, nil
}

// Cancel terminates immediately and deletes all partial artifacts.
// It never fails; cleanup errors are logged only.
//
// Cancel is safe to call while a Stop on the same handle is still in
// flight: both wait on the subprocess exit channel, scratch removal is
// idempotent, and a Stop raced by Cancel reports ErrCaptureAborted
// once its output file is gone.
func (r *Recorder) Cancel(h *Handle) {
	if h == nil {
		return
	}
	for _, c := range h.captures {
		if !c.exited() {
			if err := c.cmd.Process.Kill(); err != nil {
				r.log.Warn("kill capture process", "error", err)
			}
			<-c.done
		}
	}
	r.removeScratch(h)
	r.log.Info("capture cancelled", "scratch", h.scratchDir)
}

// terminate stops one subprocess: SIGINT so the tool flushes its WAV
// header, then SIGTERM, then SIGKILL.
func (r *Recorder) terminate(c *capture) {
	if c.exited() {
		return
	}
	_ = c.cmd.Process.Signal(syscall.SIGINT)
	select {
	case <-c.done:
		return
	case <-time.After(stopGrace):
	}

	r.log.Warn("capture ignored SIGINT, terminating", "path", c.path)
	_ = c.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-c.done:
		return
	case <-time.After(killGrace):
	}

	r.log.Warn("capture ignored SIGTERM, killing", "path", c.path)
	_ = c.cmd.Process.Kill()
	<-c.done
}

func (r *Recorder) mix(h *Handle) error {
	ffmpeg, err := lookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), mixLimit)
	defer cancel()

	args := mixArgs(h.tempPaths[0], h.tempPaths[1], h.outPath)
	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mix audio: %w: %s", err, tail(out, 200))
	}

	if !r.keepTemp {
		for _, p := range h.tempPaths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				r.log.Warn("remove temp audio", "path", p, "error", err)
			}
		}
	}
	return nil
}

func (r *Recorder) removeScratch(h *Handle) {
	if err := os.RemoveAll(h.scratchDir); err != nil {
		r.log.Warn("remove scratch dir", "path", h.scratchDir, "error", err)
	}
}

// captureArgs builds the full command line for one capture subprocess.
func captureArgs(bin, target string, channels int, out string) []string {
	if filepath.Base(bin) == "pw-record" {
		args := []string{bin}
		if target != "" {
			args = append(args, "--target="+target)
		}
		return append(args,
			fmt.Sprintf("--channels=%d", channels),
			"--format=s16",
			"--rate=48000",
			out,
		)
	}

	// parec fallback
	args := []string{bin}
	if target != "" {
		args = append(args, "--device="+target)
	}
	return append(args,
		fmt.Sprintf("--channels=%d", channels),
		"--format=s16le",
		"--rate=48000",
		out,
	)
}

// mixArgs builds the ffmpeg amix invocation: both sources boosted
// equally and mixed without renormalization so neither side drowns
// the other.
func mixArgs(micPath, sysPath, out string) []string {
	return []string{
		"-i", micPath,
		"-i", sysPath,
		"-filter_complex",
		"[0:a]volume=2.0[a0];[1:a]volume=2.0[a1];[a0][a1]amix=inputs=2:duration=longest:normalize=0[out]",
		"-map", "[out]",
		"-ar", "48000",
		"-ac", "2",
		"-y",
		out,
	}
}

func findCaptureBinary() (string, error) {
	if path, err := lookPath("pw-record"); err == nil {
		return path, nil
	}
	if path, err := lookPath("parec"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: neither pw-record nor parec found", ErrDeviceUnavailable)
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
