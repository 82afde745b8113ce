package note

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedSession(t *testing.T, title string, seconds int) *models.Session {
	t.Helper()
	start, err := time.Parse("2006-01-02 15:04:05", "2026-08-25 14:30:00")
	if err != nil {
		t.Fatal(err)
	}
	return &models.Session{
		StartedAt: start,
		StoppedAt: start.Add(time.Duration(seconds) * time.Second),
		Title:     title,
		Mode:      models.ModeCombined,
	}
}

// transcriptWithWords builds a transcript containing exactly n
// whitespace-delimited words, split across timestamped segments.
func transcriptWithWords(n int) *models.Transcript {
	tr := &models.Transcript{Language: "en"}
	var start float64
	word := 0
	for word < n {
		count := 7
		if n-word < count {
			count = n - word
		}
		words := make([]string, count)
		for i := range words {
			words[i] = fmt.Sprintf("word%d", word+i)
		}
		tr.Segments = append(tr.Segments, models.Segment{
			Start: start,
			End:   start + 3,
			Text:  strings.Join(words, " "),
		})
		start += 3
		word += count
	}
	return tr
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	sess := fixedSession(t, "Website Redesign Discussion", 179)
	tr := transcriptWithWords(419)

	path, err := w.Write(sess, tr, &models.Summary{})
	if err != nil {
		t.Fatalf("Write(): %v", err)
	}

	fm, body, err := Read(path)
	if err != nil {
		t.Fatalf("Read(): %v", err)
	}

	if fm.Title != "Website Redesign Discussion" {
		t.Errorf("title = %q", fm.Title)
	}
	if fm.DurationSeconds != 179 {
		t.Errorf("duration_seconds = %d, want 179", fm.DurationSeconds)
	}
	if fm.WordCount != 419 {
		t.Errorf("word_count = %d, want 419", fm.WordCount)
	}
	if fm.RecordingMode != "combined" {
		t.Errorf("recording_mode = %q, want combined", fm.RecordingMode)
	}

	var hasMarkerTag bool
	for _, tag := range fm.Tags {
		if tag == TagAutoGenerated {
			hasMarkerTag = true
		}
	}
	if !hasMarkerTag {
		t.Errorf("tags %v missing machine-generated marker", fm.Tags)
	}

	if !strings.Contains(body, "**[00:00]**") {
		t.Error("transcript must start at 00:00")
	}

	// Transcript timestamps must appear in non-decreasing order.
	var lastIdx int
	for _, seg := range tr.Segments {
		ts := "**[" + models.FormatClock(time.Duration(seg.Start*float64(time.Second))) + "]**"
		idx := strings.Index(body[lastIdx:], ts)
		if idx < 0 {
			t.Fatalf("timestamp %s missing or out of order", ts)
		}
		lastIdx += idx
	}
}

func TestWriteSummaryUnavailableMarker(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	sess := fixedSession(t, "Standup", 60)
	tr := transcriptWithWords(20)

	path, err := w.Write(sess, tr, nil)
	if err != nil {
		t.Fatalf("Write(): %v", err)
	}

	fm, body, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(body, SummaryUnavailableMarker) {
		t.Error("note missing summary-unavailable marker")
	}
	for _, tag := range fm.Tags {
		if tag == TagAISummary {
			t.Error("ai-summary tag present without a summary")
		}
	}
	if !strings.Contains(body, "## Full Transcript") {
		t.Error("note missing transcript section")
	}
}

func TestWriteWithSummary(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	sess := fixedSession(t, "Planning", 300)
	sess.UserNotes = "remember to ask about the budget"
	tr := transcriptWithWords(50)
	summary := &models.Summary{
		Overview:     "The team planned the next sprint.",
		KeyPoints:    []string{"Sprint scope agreed"},
		ActionItems:  []string{"Dana to file the tickets by Friday"},
		Decisions:    []string{"Two-week sprint length"},
		Participants: []string{"Dana", "Alex"},
	}

	path, err := w.Write(sess, tr, summary)
	if err != nil {
		t.Fatal(err)
	}

	fm, body, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	var hasAITag bool
	for _, tag := range fm.Tags {
		if tag == TagAISummary {
			hasAITag = true
		}
	}
	if !hasAITag {
		t.Errorf("tags %v missing ai-summary", fm.Tags)
	}

	// Fixed section order: User Notes before AI Summary before transcript.
	notesIdx := strings.Index(body, "## User Notes")
	summaryIdx := strings.Index(body, "## AI Summary")
	transcriptIdx := strings.Index(body, "## Full Transcript")
	if notesIdx < 0 || summaryIdx < 0 || transcriptIdx < 0 {
		t.Fatalf("missing sections: notes=%d summary=%d transcript=%d", notesIdx, summaryIdx, transcriptIdx)
	}
	if !(notesIdx < summaryIdx && summaryIdx < transcriptIdx) {
		t.Error("sections out of order")
	}

	if !strings.Contains(body, "Dana to file the tickets by Friday") {
		t.Error("action item missing from body")
	}
	if strings.Contains(body, SummaryUnavailableMarker) {
		t.Error("marker present despite summary")
	}
}

func TestWriteUnwritableDir(t *testing.T) {
	// Using a regular file as the target directory makes MkdirAll fail
	// regardless of the uid the tests run under.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(filepath.Join(blocker, "notes"), discardLogger())
	sess := fixedSession(t, "Doomed", 10)
	tr := transcriptWithWords(5)

	_, err := w.Write(sess, tr, nil)
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Errorf("error = %v, want ErrPersistenceFailed", err)
	}

	// The in-memory transcript must survive the failure for a retry.
	if tr.WordCount() != 5 {
		t.Error("transcript mutated by failed write")
	}
}

func TestFilename(t *testing.T) {
	sess := fixedSession(t, "Website Redesign Discussion", 10)
	got := Filename(sess)
	want := "2026-08-25-143000-website-redesign-discussion.md"
	if got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}

	untitled := fixedSession(t, "", 10)
	got = Filename(untitled)
	if !strings.HasPrefix(got, "2026-08-25-143000-meeting-") {
		t.Errorf("Filename() for untitled session = %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	if _, err := w.Write(fixedSession(t, "A", 5), transcriptWithWords(3), nil); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"2026-08-20-100000-first.md",
		"2026-08-25-143000-second.md",
		"not-a-note.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("List() = %v, want 2 notes", got)
	}
	if got[0] != "2026-08-25-143000-second.md" {
		t.Errorf("List() not newest-first: %v", got)
	}

	empty, err := List(filepath.Join(dir, "missing"))
	if err != nil || empty != nil {
		t.Errorf("List() on missing dir = %v, %v", empty, err)
	}
}
