package previewfs

// NodeKind valid kinds are FileKind "file", DirectoryKind "directory"
type NodeKind string

const (
	FileKind      NodeKind = "file"
	DirectoryKind NodeKind = "directory"
)

// Valid reports whether k is one of the known node kinds
func (k NodeKind) Valid() bool {
	return k == FileKind || k == DirectoryKind
}

// NodeDescriptor is the plain, persistence-friendly description of one node.
// Content is only set for files.
type NodeDescriptor struct {
	Path    string   `json:"-" yaml:"-"`
	Kind    NodeKind `json:"kind" yaml:"kind"`
	Content *string  `json:"content,omitempty" yaml:"content,omitempty"`
}

// FileDescriptor returns a file descriptor for path holding content
func FileDescriptor(path, content string) NodeDescriptor {
	return NodeDescriptor{Path: path, Kind: FileKind, Content: &content}
}

// DirDescriptor returns a directory descriptor for path
func DirDescriptor(path string) NodeDescriptor {
	return NodeDescriptor{Path: path, Kind: DirectoryKind}
}
