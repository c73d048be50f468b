package workspace

import "strings"

type queryState struct {
	input   string
	loading bool
	err     string
	answer  *Answer
	seq     uint64
}

// QueryPanel owns the input text, the loading flag, the error message and the
// published answer.
type QueryPanel struct {
	s *State
}

// Input returns the current composer text.
func (q QueryPanel) Input() string { return q.s.query.input }

// SetInput stores the composer text on every keystroke.
func (q QueryPanel) SetInput(text string) { q.s.query.input = text }

// Loading is true exactly while a request is outstanding.
func (q QueryPanel) Loading() bool { return q.s.query.loading }

// CanSubmit reports whether the send control is enabled.
func (q QueryPanel) CanSubmit() bool { return !q.s.query.loading }

// Err returns the message of the last failure. It is hidden while loading.
func (q QueryPanel) Err() string {
	if q.s.query.loading {
		return ""
	}
	return q.s.query.err
}

// Answer returns the published answer, or false before the first query.
func (q QueryPanel) Answer() (Answer, bool) {
	if q.s.query.answer == nil {
		return Answer{}, false
	}
	return *q.s.query.answer, true
}

// Begin starts a request for text. Blank text, or a request already in
// flight, is a silent no-op that returns false. Otherwise the answer is
// cleared to an empty placeholder and the sequence number of the new request
// is returned.
func (q QueryPanel) Begin(text string) (uint64, bool) {
	if strings.TrimSpace(text) == "" || q.s.query.loading {
		return 0, false
	}
	q.s.query.seq++
	q.s.query.loading = true
	q.s.query.err = ""
	q.s.query.answer = &Answer{Citations: []Citation{}}
	return q.s.query.seq, true
}

// Succeed publishes the answer of request seq. Responses to older requests
// are dropped so the latest request always wins.
func (q QueryPanel) Succeed(seq uint64, answer Answer) bool {
	if seq != q.s.query.seq {
		return false
	}
	if answer.Citations == nil {
		answer.Citations = []Citation{}
	}
	q.s.query.loading = false
	q.s.query.err = ""
	q.s.query.answer = &answer
	return true
}

// Fail records the failure of request seq. The answer stays the empty
// placeholder set by Begin.
func (q QueryPanel) Fail(seq uint64, message string) bool {
	if seq != q.s.query.seq {
		return false
	}
	if strings.TrimSpace(message) == "" {
		message = "Unknown error occurred"
	}
	q.s.query.loading = false
	q.s.query.err = message
	return true
}
