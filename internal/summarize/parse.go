package summarize

import (
	"strings"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

// sectionHeaders maps response headers to section keys, in the order
// the prompt requests them.
var sectionHeaders = map[string]string{
	"OVERVIEW:":     "overview",
	"KEY POINTS:":   "key_points",
	"ACTION ITEMS:": "action_items",
	"DECISIONS:":    "decisions",
	"PARTICIPANTS:": "participants",
}

// parseResponse converts the model's sectioned text response into a
// structured Summary. Unparseable responses degrade to an overview-only
// summary carrying the raw text, never to an error: by the time we are
// parsing, the provider call already succeeded.
func parseResponse(response string) *models.Summary {
	sections := splitSections(response)

	if len(sections) == 0 {
		return &models.Summary{Overview: strings.TrimSpace(response)}
	}

	return &models.Summary{
		Overview:     sections["overview"],
		KeyPoints:    parseBullets(sections["key_points"]),
		ActionItems:  parseBullets(sections["action_items"]),
		Decisions:    parseBullets(sections["decisions"]),
		Participants: parseParticipants(sections["participants"]),
	}
}

func splitSections(response string) map[string]string {
	sections := make(map[string]string)
	var current string
	var content []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(content, "\n"))
		}
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)

		matched := false
		for header, key := range sectionHeaders {
			if strings.HasPrefix(strings.ToUpper(line), header) {
				flush()
				current = key
				content = nil
				if rest := strings.TrimSpace(line[len(header):]); rest != "" {
					content = append(content, rest)
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current != "" && line != "" {
			content = append(content, line)
		}
	}
	flush()
	return sections
}

// parseBullets extracts "- item" lines. "None identified" anywhere in
// the list means the section is empty.
func parseBullets(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "- "); ok {
			item := strings.TrimSpace(after)
			if strings.Contains(strings.ToLower(item), "none identified") {
				return nil
			}
			if item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

func parseParticipants(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(strings.ToLower(text), "unable to identify") ||
		strings.Contains(strings.ToLower(text), "none identified") {
		return nil
	}

	var names []string
	for _, name := range strings.Split(text, ",") {
		if n := strings.TrimSpace(name); n != "" {
			names = append(names, n)
		}
	}
	return names
}
