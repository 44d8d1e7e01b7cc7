package filesystem

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/previewfs/internal/pathutil"
)

var (
	// ErrInvalidPath indicates a path with no canonical form, or one that would
	// have to descend through a file
	ErrInvalidPath = pathutil.ErrInvalidPath

	// ErrAlreadyExists indicates a node already occupies the path
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates no node exists at the path
	ErrNotFound = errors.New("not found")

	// ErrNotAFile indicates a file operation on a directory
	ErrNotAFile = errors.New("not a file")

	// ErrNotADirectory indicates a directory operation on a file
	ErrNotADirectory = errors.New("not a directory")

	// ErrInvalidOperation indicates a request the tree refuses regardless of
	// state, e.g. deleting the root or moving a directory into itself
	ErrInvalidOperation = errors.New("invalid operation")
)

// Error wraps tree errors with the operation and affected path.
// Use errors.Is against the sentinel errors above to classify it.
type Error struct {
	Op   string // Operation that failed (e.g. "create", "rename")
	Path string // Affected path as given by the caller
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

// detail attaches a human-readable explanation to one of the sentinel errors
func detail(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
