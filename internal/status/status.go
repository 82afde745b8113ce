// Package status maintains the file-backed status surface polled by
// desktop bars (waybar, sketchybar). The file is a tiny key-value
// document with STATUS, TITLE and DURATION fields, always written by a
// single writer. Readers must verify the owning process is alive
// before trusting the content: the file survives abnormal exits.
package status

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

// Phase is the externally visible pipeline phase.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRecording  Phase = "recording"
	PhaseProcessing Phase = "processing"
)

// Record is one observation of the status surface.
type Record struct {
	Phase    Phase
	Title    string
	Duration string
}

// Writer owns the status file. All writes go through a temp file and
// rename so a polling reader never sees a half-written record.
type Writer struct {
	path string
}

// NewWriter creates a status writer for the given file path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the status file location.
func (w *Writer) Path() string {
	return w.path
}

// Publish overwrites the status file with the given phase, title and
// elapsed duration. Empty title and zero duration omit their fields.
func (w *Writer) Publish(phase Phase, title string, elapsed time.Duration) error {
	var b strings.Builder
	fmt.Fprintf(&b, "STATUS=%q\n", string(phase))
	if title != "" {
		fmt.Fprintf(&b, "TITLE=%q\n", title)
	}
	if phase != PhaseIdle {
		fmt.Fprintf(&b, "DURATION=%q\n", models.FormatClock(elapsed))
	}
	return w.commit(b.String())
}

// Clear resets the surface to the idle phase.
func (w *Writer) Clear() error {
	return w.commit("STATUS=\"idle\"\n")
}

func (w *Writer) commit(content string) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".status-*")
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close status: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit status: %w", err)
	}
	return nil
}

// Read parses a status file. A missing file reads as idle.
func Read(path string) (Record, error) {
	rec := Record{Phase: PhaseIdle}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("read status: %w", err)
	}

	for line := range strings.Lines(string(data)) {
		key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		if unq, err := strconv.Unquote(val); err == nil {
			val = unq
		}
		switch key {
		case "STATUS":
			rec.Phase = Phase(val)
		case "TITLE":
			rec.Title = val
		case "DURATION":
			rec.Duration = val
		}
	}
	return rec, nil
}

// PIDPath derives the pid file location from the status file path.
func PIDPath(statusPath string) string {
	return statusPath + ".pid"
}

// WritePID records the owning process so readers can do the liveness
// check the surface contract requires of them.
func WritePID(statusPath string) error {
	return os.WriteFile(PIDPath(statusPath), []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// RemovePID deletes the pid file. Best effort.
func RemovePID(statusPath string) {
	os.Remove(PIDPath(statusPath))
}

// OwnerAlive reports whether the process named in the pid file is
// still running. A missing or malformed pid file reads as not alive,
// which tells readers to disregard the status file content.
func OwnerAlive(statusPath string) bool {
	data, err := os.ReadFile(PIDPath(statusPath))
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
