// Package analysis talks to the remote document analysis service.
package analysis

// Result is the study material returned for one document. Every field is
// optional; an empty field renders as an empty section.
type Result struct {
	Summary       string     `json:"summary,omitempty"`
	KeyPoints     []string   `json:"keyPoints,omitempty"`
	QuizQuestions []Question `json:"quizQuestions,omitempty"`
	StudyGuide    []string   `json:"studyGuide,omitempty"`

	// FileName is echoed back by the service when it knows it.
	FileName string `json:"fileName,omitempty"`
}

// Question is one multiple-choice quiz item.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`

	// Correct is a zero-based index into Options, or nil when the service
	// supplied no answer.
	Correct *int `json:"correct,omitempty"`
}

// Answer returns the index of the correct option. ok is false when no answer
// was supplied or the index does not name one of the options.
func (q Question) Answer() (idx int, ok bool) {
	if q.Correct == nil {
		return 0, false
	}
	idx = *q.Correct
	if idx < 0 || idx >= len(q.Options) {
		return 0, false
	}
	return idx, true
}

// Letter returns the option letter for a zero-based index: A..Z, then AA, AB...
func Letter(i int) string {
	if i < 0 {
		return ""
	}
	var buf []byte
	for i >= 0 {
		buf = append([]byte{byte('A' + i%26)}, buf...)
		i = i/26 - 1
	}
	return string(buf)
}
