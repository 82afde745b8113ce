package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPublishAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".status")
	w := NewWriter(path)

	if err := w.Publish(PhaseRecording, "Website Redesign Discussion", 2*time.Minute+59*time.Second); err != nil {
		t.Fatalf("Publish(): %v", err)
	}

	rec, err := Read(path)
	if err != nil {
		t.Fatalf("Read(): %v", err)
	}
	if rec.Phase != PhaseRecording {
		t.Errorf("phase = %q, want recording", rec.Phase)
	}
	if rec.Title != "Website Redesign Discussion" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Duration != "02:59" {
		t.Errorf("duration = %q, want 02:59", rec.Duration)
	}
}

func TestPublishOmitsEmptyTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".status")
	w := NewWriter(path)

	if err := w.Publish(PhaseProcessing, "", 10*time.Second); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "TITLE") {
		t.Errorf("status file should omit empty TITLE:\n%s", data)
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".status")
	w := NewWriter(path)

	if err := w.Publish(PhaseRecording, "standup", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear(): %v", err)
	}

	rec, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Phase != PhaseIdle {
		t.Errorf("phase after Clear() = %q, want idle", rec.Phase)
	}
	if rec.Title != "" || rec.Duration != "" {
		t.Errorf("Clear() left stale fields: %+v", rec)
	}
}

func TestReadMissingFileIsIdle(t *testing.T) {
	rec, err := Read(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Read() on missing file: %v", err)
	}
	if rec.Phase != PhaseIdle {
		t.Errorf("phase = %q, want idle", rec.Phase)
	}
}

func TestPublishLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".status")
	w := NewWriter(path)

	for i := 0; i < 5; i++ {
		if err := w.Publish(PhaseRecording, "", time.Duration(i)*time.Second); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the status file, found %v", names)
	}
}

func TestDurationMonotonicDuringRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".status")
	w := NewWriter(path)

	var prev string
	for _, elapsed := range []time.Duration{0, time.Second, 2 * time.Second, time.Minute} {
		if err := w.Publish(PhaseRecording, "", elapsed); err != nil {
			t.Fatal(err)
		}
		rec, err := Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Duration < prev {
			t.Errorf("duration went backwards: %q after %q", rec.Duration, prev)
		}
		prev = rec.Duration
	}
}

func TestOwnerAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".status")

	if OwnerAlive(path) {
		t.Error("OwnerAlive() = true with no pid file")
	}

	if err := WritePID(path); err != nil {
		t.Fatalf("WritePID(): %v", err)
	}
	if !OwnerAlive(path) {
		t.Error("OwnerAlive() = false for our own pid")
	}

	RemovePID(path)
	if OwnerAlive(path) {
		t.Error("OwnerAlive() = true after RemovePID()")
	}

	// Malformed pid content must read as not alive.
	if err := os.WriteFile(PIDPath(path), []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if OwnerAlive(path) {
		t.Error("OwnerAlive() = true for malformed pid file")
	}
}
