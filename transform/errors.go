package transform

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned for files whose extension has no loader
var ErrUnsupportedLanguage = errors.New("unsupported language")

// CompileError describes the first syntax error in a script. Line is 1-based
// and Column a 0-based byte offset; both are zero when the compiler reported
// no location.
type CompileError struct {
	Path     string
	Message  string
	Line     int
	Column   int
	LineText string   // Source line the error points into
	Notes    []string // Every further message reported for the same file
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
