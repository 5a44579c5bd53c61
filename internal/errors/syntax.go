package errors

import "fmt"

// SyntaxError is a build failure carrying a source location. It is kept
// distinct from DuoError so the CLI can render the location line and so
// plugins can report positions without knowing about categories.
type SyntaxError struct {
	Message string
	File    string
	Line    int
	Column  int
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%s in %s", e.Message, e.File)
}

// NewSyntax creates a SyntaxError for the given file and position.
// Line and column may be zero when the position is unknown.
func NewSyntax(message, file string, line, column int) *SyntaxError {
	return &SyntaxError{
		Message: message,
		File:    file,
		Line:    line,
		Column:  column,
	}
}

// WrapSyntax lifts a SyntaxError into the build category so callers that
// classify by category still see a build failure.
func WrapSyntax(err *SyntaxError) *DuoError {
	return &DuoError{
		Category: CategorySyntax,
		Severity: SeverityFatal,
		Message:  err.Message,
		Cause:    err,
	}
}
