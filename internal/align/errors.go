package align

import (
	"errors"
	"fmt"
)

var (
	// ErrAlignmentFormat indicates a malformed n-best or evidence record.
	ErrAlignmentFormat = errors.New("alignment format error")

	// ErrEndOfAlignments is returned when an n-best stream has no more
	// sentences. It is distinct from a sentence that simply has no evidence.
	ErrEndOfAlignments = errors.New("end of alignments")
)

// FormatError locates a malformed alignment record.
// Wraps ErrAlignmentFormat.
type FormatError struct {
	Source   string // stream name or "alignments" for inline evidence
	Line     int    // 1-based line in the stream, 0 if not applicable
	Sentence int    // sentence index from the record, -1 if unknown
	Msg      string
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Sentence >= 0 {
		loc = fmt.Sprintf("%s (sentence %d)", loc, e.Sentence)
	}
	return fmt.Sprintf("%s: %s: %s", ErrAlignmentFormat.Error(), loc, e.Msg)
}

func (e *FormatError) Unwrap() error { return ErrAlignmentFormat }
