// Package note renders finished recording sessions into durable
// markdown notes and reads them back.
package note

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tags attached to generated notes.
const (
	TagMeeting       = "meeting"
	TagAutoGenerated = "auto-generated"
	TagAISummary     = "ai-summary"
)

// SummaryUnavailableMarker is written in place of the AI Summary
// section body when summarization was disabled or failed.
const SummaryUnavailableMarker = "_AI summary unavailable for this recording._"

// Frontmatter is the structured metadata header of a note.
type Frontmatter struct {
	Title           string   `yaml:"title"`
	Date            string   `yaml:"date"`
	Time            string   `yaml:"time"`
	DurationSeconds int      `yaml:"duration_seconds"`
	WordCount       int      `yaml:"word_count"`
	Tags            []string `yaml:"tags,flow"`
	RecordingMode   string   `yaml:"recording_mode,omitempty"`
	Language        string   `yaml:"language,omitempty"`
}

// Read parses a note file's frontmatter and returns it with the body.
// Used by the list command and by tests; the pipeline only writes.
func Read(path string) (*Frontmatter, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read note: %w", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		return nil, content, fmt.Errorf("note %s has no frontmatter", path)
	}

	endIdx := strings.Index(content[4:], "\n---")
	if endIdx < 0 {
		return nil, content, fmt.Errorf("note %s has unterminated frontmatter", path)
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(content[4:4+endIdx]), &fm); err != nil {
		return nil, content, fmt.Errorf("parse note frontmatter: %w", err)
	}

	body := strings.TrimPrefix(content[4+endIdx+4:], "\n")
	return &fm, body, nil
}

// List returns all note files in dir, newest first. The timestamped
// filename prefix makes lexical order chronological.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			paths = append(paths, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}
