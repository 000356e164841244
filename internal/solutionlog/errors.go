package solutionlog

import (
	"errors"
	"fmt"
)

// maxRawInMessage bounds how much of the offending line Error prints.
const maxRawInMessage = 120

// ParseError reports a log line that is not valid JSON.
type ParseError struct {
	// Line is the 1-based line number.
	Line int
	// Raw is the line content as read.
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > maxRawInMessage {
		raw = raw[:maxRawInMessage] + "..."
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
