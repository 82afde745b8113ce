package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts a title into a filesystem-safe slug: lowercased,
// punctuation stripped, runs of spaces and hyphens collapsed to one
// hyphen.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FormatClock renders a duration as MM:SS, or HH:MM:SS past an hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatDurationWords renders a duration like "2 minutes, 59 seconds".
func FormatDurationWords(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%d hour%s", h, plural(h)))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%d minute%s", m, plural(m)))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d second%s", s, plural(s)))
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
