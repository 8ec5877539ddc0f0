package parser

import (
	"errors"
	"fmt"
)

// SourceLocation captures a source span for parser diagnostics.
type SourceLocation struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// ParseError includes a message plus a best-effort source location.
// Incomplete is set when the input ended inside an open list or string, so
// interactive callers can ask for more input instead of reporting an error.
type ParseError struct {
	Message    string
	Location   SourceLocation
	Incomplete bool
}

func (e *ParseError) Error() string {
	if e.Location.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Location)
}

// IsIncomplete reports whether err is a parse error caused by truncated input.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Incomplete
	}
	return false
}

func syntaxError(loc SourceLocation, format string, args ...any) *ParseError {
	return &ParseError{
		Message:  "parser: " + fmt.Sprintf(format, args...),
		Location: loc,
	}
}

func incompleteError(loc SourceLocation, format string, args ...any) *ParseError {
	err := syntaxError(loc, format, args...)
	err.Incomplete = true
	return err
}
