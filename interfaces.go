// Package previewfs contains core domain types and interfaces shared by the
// in-memory project tree and the preview pipeline.
package previewfs

import "context"

// FileSystemOperator defines the mutation and read operations external
// consumers (agent tool calls, editors, the dev server) need from a project tree.
// All paths are normalized by the implementation before use.
type FileSystemOperator interface {
	CreateFile(path, content string) error
	CreateDirectory(path string) error
	UpdateFile(path, content string) error
	DeleteNode(path string) error
	Rename(oldPath, newPath string) error

	ReadFile(path string) (string, error)
	Exists(path string) bool

	// ReplaceInFile replaces every occurrence of old with new and returns the
	// number of replacements made
	ReplaceInFile(path, old, new string) (int, error)
	// InsertInFile inserts text after the given 1-based line; 0 inserts at the top
	InsertInFile(path string, line int, text string) error
	// ViewFile returns a line-numbered file listing or a directory listing
	ViewFile(path string) (string, error)
}

// SnapshotOperator is implemented by trees that can be flattened to and
// restored from a [Snapshot] by an external persistence layer
type SnapshotOperator interface {
	Serialize() Snapshot
	Deserialize(snap Snapshot) error
}

// ProjectSource loads a project snapshot from wherever it is stored
type ProjectSource interface {
	Load(ctx context.Context) (Snapshot, error)
	// Location returns the path or URL the source reads from
	Location() string
}

// SourceProvider creates sources for the locations of one kind, e.g. "http"
type SourceProvider interface {
	NewSource(location string) (ProjectSource, error)
}
