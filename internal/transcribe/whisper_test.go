package transcribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const fixtureJSON = `{
  "text": " Let's start with the homepage. I agree with that approach.",
  "language": "en",
  "segments": [
    {"start": 0.0, "end": 3.5, "text": " Let's start with the homepage."},
    {"start": 3.5, "end": 7.2, "text": " I agree with that approach."}
  ]
}`

// fakeWhisper copies a canned JSON result into whisper's output dir
// instead of running the real engine.
func fakeWhisper(t *testing.T, fixture string, fail bool) {
	t.Helper()
	fixturePath := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(fixturePath, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := execCommand
	execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if fail {
			return exec.CommandContext(ctx, "sh", "-c", "echo 'engine error' >&2; exit 1")
		}
		var outDir string
		for i, a := range args {
			if a == "--output_dir" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		audio := args[0]
		base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
		dest := filepath.Join(outDir, base+".json")
		return exec.CommandContext(ctx, "cp", fixturePath, dest)
	}
	t.Cleanup(func() { execCommand = orig })
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.wav")
	if err := os.WriteFile(path, []byte("fakeaudio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewWhisperValidatesModel(t *testing.T) {
	for _, valid := range ModelSizes {
		if _, err := NewWhisper("whisper", valid, discardLogger()); err != nil {
			t.Errorf("NewWhisper(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := NewWhisper("whisper", "turbo-xl", discardLogger()); err == nil {
		t.Error("NewWhisper with invalid model should fail")
	}
}

func TestTranscribe(t *testing.T) {
	fakeWhisper(t, fixtureJSON, false)
	audio := writeAudioFixture(t)

	w, err := NewWhisper("whisper", "base", discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	tr, err := w.Transcribe(context.Background(), []string{audio})
	if err != nil {
		t.Fatalf("Transcribe(): %v", err)
	}

	if len(tr.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(tr.Segments))
	}
	if tr.Language != "en" {
		t.Errorf("language = %q, want en", tr.Language)
	}
	if tr.Segments[0].Text != "Let's start with the homepage." {
		t.Errorf("segment text not trimmed: %q", tr.Segments[0].Text)
	}
	if !tr.Ordered() {
		t.Error("segments out of order")
	}
}

func TestTranscribeMultipleArtifactsShiftsOffsets(t *testing.T) {
	fakeWhisper(t, fixtureJSON, false)

	dir := t.TempDir()
	var audio []string
	for _, name := range []string{"part1.wav", "part2.wav"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("fakeaudio"), 0o644); err != nil {
			t.Fatal(err)
		}
		audio = append(audio, p)
	}

	w, _ := NewWhisper("whisper", "base", discardLogger())
	tr, err := w.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe(): %v", err)
	}

	if len(tr.Segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(tr.Segments))
	}
	if !tr.Ordered() {
		t.Error("concatenated segments out of order")
	}
	// Second artifact's first segment starts after the first artifact ends.
	if tr.Segments[2].Start != 7.2 {
		t.Errorf("offset shift: segment[2].Start = %v, want 7.2", tr.Segments[2].Start)
	}
}

func TestTranscribeEngineError(t *testing.T) {
	fakeWhisper(t, "", true)
	audio := writeAudioFixture(t)

	w, _ := NewWhisper("whisper", "base", discardLogger())
	_, err := w.Transcribe(context.Background(), []string{audio})
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
	if !strings.Contains(err.Error(), "engine error") {
		t.Errorf("error should carry engine stderr: %v", err)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	fakeWhisper(t, fixtureJSON, false)

	w, _ := NewWhisper("whisper", "base", discardLogger())
	_, err := w.Transcribe(context.Background(), []string{"/nonexistent/audio.wav"})
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
}

func TestTranscribeMalformedOutput(t *testing.T) {
	fakeWhisper(t, "{not json", false)
	audio := writeAudioFixture(t)

	w, _ := NewWhisper("whisper", "base", discardLogger())
	_, err := w.Transcribe(context.Background(), []string{audio})
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
}

func TestTranscribeNoArtifacts(t *testing.T) {
	w, _ := NewWhisper("whisper", "base", discardLogger())
	_, err := w.Transcribe(context.Background(), nil)
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
}
