package entities

import "time"

// AnswerSet is an immutable snapshot of questionnaire answers keyed by
// question id. Values are a string, a list of strings, or nil; anything
// else is treated as "no information".
type AnswerSet map[string]interface{}

// String returns the single-choice answer for a question, or "" when the
// question is unanswered or malformed.
func (a AnswerSet) String(questionID string) string {
	v, ok := a[questionID]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// List returns the multi-select answer for a question. Malformed entries
// inside the list are skipped; a missing or malformed answer yields nil.
func (a AnswerSet) List(questionID string) []string {
	v, ok := a[questionID]
	if !ok || v == nil {
		return nil
	}
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		// A single-choice answer to a multi-select question still counts.
		return []string{vals}
	}
	return nil
}

// Selected reports whether the given option was chosen for a question,
// across both single- and multi-select answers.
func (a AnswerSet) Selected(questionID, option string) bool {
	for _, v := range a.List(questionID) {
		if v == option {
			return true
		}
	}
	return false
}

// Assessment represents one completed questionnaire submission. Flags
// holds the derived identifiers in lexical order once the engine has
// run.
type Assessment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Answers     AnswerSet `json:"answers"`
	Flags       []string  `json:"flags,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
