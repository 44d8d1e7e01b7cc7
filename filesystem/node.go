package filesystem

import (
	"slices"

	"github.com/brettbedarf/previewfs"
)

// node is the tree's internal record. A node's identity is the path it is
// indexed under in [FileTree]; it holds no reference to its parent.
type node struct {
	name     string
	kind     previewfs.NodeKind
	content  string   // files only
	children []string // directories only; child names in insertion order
}

func newDirNode(name string) *node {
	return &node{name: name, kind: previewfs.DirectoryKind, children: make([]string, 0)}
}

func newFileNode(name, content string) *node {
	return &node{name: name, kind: previewfs.FileKind, content: content}
}

func (n *node) isDir() bool {
	return n.kind == previewfs.DirectoryKind
}

// addChild appends name to the ordered children list.
// Caller must ensure the name is not already present.
func (n *node) addChild(name string) {
	n.children = append(n.children, name)
}

func (n *node) removeChild(name string) bool {
	i := slices.Index(n.children, name)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	return true
}

func (n *node) hasChild(name string) bool {
	return slices.Contains(n.children, name)
}

// Node is a read-only copy of one node returned to callers.
// Mutating it has no effect on the tree.
type Node struct {
	Path     string
	Name     string // Final path segment; empty for the root
	Kind     previewfs.NodeKind
	Content  string   // Set for files only
	Children []string // Child names in insertion order; set for directories only
}

// IsDir returns true if the node is a directory
func (n Node) IsDir() bool {
	return n.Kind == previewfs.DirectoryKind
}

// File is one file's path and content, as fed to the preview pipeline
type File struct {
	Path    string
	Content string
}

func (n *node) view(path string) Node {
	v := Node{Path: path, Name: n.name, Kind: n.kind}
	if n.isDir() {
		v.Children = slices.Clone(n.children)
	} else {
		v.Content = n.content
	}
	return v
}
