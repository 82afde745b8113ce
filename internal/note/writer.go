package note

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

// ErrPersistenceFailed means the note could not be committed to disk.
// The caller keeps the in-memory transcript and summary so a retry or
// an alternate path stays possible.
var ErrPersistenceFailed = errors.New("note persistence failed")

const maxSlugLen = 50

// Writer persists notes into a directory.
type Writer struct {
	dir string
	log *slog.Logger
}

// NewWriter creates a note writer targeting dir.
func NewWriter(dir string, log *slog.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

// Write renders the session into a markdown note and commits it via
// write-to-temporary-then-rename, so a reader never observes a partial
// note. Returns the final note path.
func (w *Writer) Write(sess *models.Session, tr *models.Transcript, summary *models.Summary) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create notes dir: %v", ErrPersistenceFailed, err)
	}

	path := filepath.Join(w.dir, Filename(sess))
	content, err := render(sess, tr, summary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	tmp, err := os.CreateTemp(w.dir, ".note-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	w.log.Info("note written", "path", path, "words", tr.WordCount())
	return path, nil
}

// Filename derives the note file name from the session's creation
// timestamp plus a slug of the title, capped so paths stay sane.
func Filename(sess *models.Session) string {
	base := sess.StartedAt.Format("2006-01-02-150405")
	if slug := models.Slugify(sess.DisplayTitle()); slug != "" {
		if len(slug) > maxSlugLen {
			slug = slug[:maxSlugLen]
		}
		base += "-" + slug
	}
	return base + ".md"
}

func render(sess *models.Session, tr *models.Transcript, summary *models.Summary) (string, error) {
	tags := []string{TagMeeting, TagAutoGenerated}
	if !summary.IsEmpty() {
		tags = append(tags, TagAISummary)
	}

	fm := Frontmatter{
		Title:           sess.DisplayTitle(),
		Date:            sess.StartedAt.Format("2006-01-02"),
		Time:            sess.StartedAt.Format("15:04"),
		DurationSeconds: int(sess.Duration().Seconds()),
		WordCount:       tr.WordCount(),
		Tags:            tags,
		RecordingMode:   string(sess.Mode),
		Language:        tr.Language,
	}

	fmYAML, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %v", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmYAML)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", fm.Title)
	fmt.Fprintf(&b, "**Date:** %s  \n", sess.StartedAt.Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "**Duration:** %s  \n", models.FormatDurationWords(sess.Duration()))
	fmt.Fprintf(&b, "**Words:** %d\n\n", fm.WordCount)

	// Fixed section order: User Notes, AI Summary, Full Transcript.
	if sess.UserNotes != "" {
		b.WriteString("## User Notes\n\n")
		b.WriteString(sess.UserNotes)
		b.WriteString("\n\n")
	}

	b.WriteString("## AI Summary\n\n")
	if summary.IsEmpty() {
		b.WriteString(SummaryUnavailableMarker)
		b.WriteString("\n\n")
	} else {
		writeSummary(&b, summary)
	}

	b.WriteString("## Full Transcript\n\n")
	b.WriteString(tr.Formatted())
	b.WriteString("\n")

	return b.String(), nil
}

func writeSummary(b *strings.Builder, s *models.Summary) {
	if s.Overview != "" {
		b.WriteString(s.Overview)
		b.WriteString("\n\n")
	}

	b.WriteString("### Key Points\n\n")
	writeList(b, s.KeyPoints)

	b.WriteString("### Action Items\n\n")
	writeList(b, s.ActionItems)

	b.WriteString("### Decisions\n\n")
	writeList(b, s.Decisions)

	if len(s.Participants) > 0 {
		b.WriteString("### Participants\n\n")
		b.WriteString(strings.Join(s.Participants, ", "))
		b.WriteString("\n\n")
	}
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- None identified\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
