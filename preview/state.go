package preview

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/previewfs/resolver"
	"github.com/brettbedarf/previewfs/transform"
)

// State of the preview surface
type State int

const (
	StateEmpty State = iota // No files, nothing to render
	StateReady              // Document renders without known errors
	StateError              // Build or runtime errors; see the error list
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateEmpty, StateReady, StateError} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown preview state %q", text)
}

// ErrorKind classifies a PreviewError
type ErrorKind string

const (
	ErrorCompile    ErrorKind = "compile"
	ErrorResolution ErrorKind = "resolution"
	ErrorEntry      ErrorKind = "entry"
	ErrorRuntime    ErrorKind = "runtime"
)

// MsgNoComponent is reported when no file qualifies as the preview entry
const MsgNoComponent = "no component found"

// PreviewError is one user-facing problem with a preview
type PreviewError struct {
	Kind      ErrorKind `json:"kind"`
	Path      string    `json:"path,omitempty"`
	Specifier string    `json:"specifier,omitempty"`
	Message   string    `json:"message"`
	Line      int       `json:"line,omitempty"`
	Column    int       `json:"column,omitempty"`
}

// Location renders the error's path with line and column when known
func (e PreviewError) Location() string {
	switch {
	case e.Path == "":
		return ""
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	default:
		return e.Path
	}
}

func (e PreviewError) Error() string {
	if loc := e.Location(); loc != "" {
		return fmt.Sprintf("%s error: %s: %s", e.Kind, loc, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func compileFailure(path string, err error) PreviewError {
	pe := PreviewError{Kind: ErrorCompile, Path: path, Message: err.Error()}
	var ce *transform.CompileError
	if errors.As(err, &ce) {
		pe.Message = ce.Message
		pe.Line = ce.Line
		pe.Column = ce.Column
	}
	return pe
}

func resolutionFailure(re resolver.ResolutionError) PreviewError {
	return PreviewError{
		Kind:      ErrorResolution,
		Path:      re.Importer,
		Specifier: re.Specifier,
		Message:   fmt.Sprintf("cannot resolve %q: %s", re.Specifier, re.Reason),
	}
}
