package models

// Summary is the structured result of summarizing a transcript.
// A disabled or failed summarization yields the zero value, never a
// partially filled one.
type Summary struct {
	Overview     string   `json:"overview"`
	KeyPoints    []string `json:"key_points"`
	ActionItems  []string `json:"action_items"`
	Decisions    []string `json:"decisions"`
	Participants []string `json:"participants"`
}

// IsEmpty reports whether no summary content was produced.
func (s *Summary) IsEmpty() bool {
	return s == nil || (s.Overview == "" &&
		len(s.KeyPoints) == 0 &&
		len(s.ActionItems) == 0 &&
		len(s.Decisions) == 0 &&
		len(s.Participants) == 0)
}
