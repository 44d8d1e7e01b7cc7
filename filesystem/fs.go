package filesystem

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/internal/pathutil"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// FileTree is the in-memory, path-addressed store of a project's files and
// directories. Nodes live in a flat index keyed by normalized path and each
// directory keeps its children as an ordered list of names, so the tree needs no
// parent pointers and cannot form cycles.
//
// Every successful mutation runs to completion under the write lock and then
// bumps the revision exactly once; a failed mutation changes nothing.
type FileTree struct {
	mu    sync.RWMutex
	nodes map[string]*node // Protected by mu

	revision    atomic.Uint64                     // Bumped once per successful mutation; only written under mu
	lastSubID   atomic.Uint64                     // Last subscription ID assigned
	subscribers *xsync.Map[uint64, chan uint64] // Revision listeners by subscription ID
}

var (
	_ previewfs.FileSystemOperator = (*FileTree)(nil)
	_ previewfs.SnapshotOperator   = (*FileTree)(nil)
)

// New returns an empty tree holding only the root directory
func New() *FileTree {
	return &FileTree{
		nodes:       map[string]*node{pathutil.Root: newDirNode("")},
		subscribers: xsync.NewMap[uint64, chan uint64](),
	}
}

// NewFromFiles returns a tree populated from a path -> content mapping, creating
// files in sorted path order. The revision reflects one bump per created file.
func NewFromFiles(files map[string]string) (*FileTree, error) {
	t := New()
	for _, p := range sortedKeys(files) {
		if err := t.CreateFile(p, files[p]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Revision returns the current revision counter
func (t *FileTree) Revision() uint64 {
	return t.revision.Load()
}

// CreateFile creates a file holding content, creating any missing ancestor
// directories along the way.
// Fails with ErrAlreadyExists if any node occupies path and with ErrInvalidPath
// if an ancestor is a file.
func (t *FileTree) CreateFile(path, content string) error {
	logger := util.GetLogger("FileTree.CreateFile")

	np, err := pathutil.Normalize(path)
	if err != nil {
		return newError("create", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	missing, err := t.prepareCreateLocked(np)
	if err != nil {
		logger.Debug().Err(err).Str("path", np).Msg("Refused to create file")
		return newError("create", path, err)
	}
	t.mkdirsLocked(missing)
	t.attachLocked(np, newFileNode(pathutil.Base(np), content))

	rev := t.commitLocked()
	logger.Debug().Str("path", np).Int("newDirs", len(missing)).Uint64("revision", rev).Msg("Created file")
	return nil
}

// CreateDirectory creates a directory and any missing ancestors.
// Same existence and ancestor rules as [FileTree.CreateFile].
func (t *FileTree) CreateDirectory(path string) error {
	logger := util.GetLogger("FileTree.CreateDirectory")

	np, err := pathutil.Normalize(path)
	if err != nil {
		return newError("mkdir", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	missing, err := t.prepareCreateLocked(np)
	if err != nil {
		logger.Debug().Err(err).Str("path", np).Msg("Refused to create directory")
		return newError("mkdir", path, err)
	}
	t.mkdirsLocked(append(missing, np))

	rev := t.commitLocked()
	logger.Debug().Str("path", np).Uint64("revision", rev).Msg("Created directory")
	return nil
}

// UpdateFile replaces the content of an existing file
func (t *FileTree) UpdateFile(path, content string) error {
	logger := util.GetLogger("FileTree.UpdateFile")

	np, err := pathutil.Normalize(path)
	if err != nil {
		return newError("update", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.fileLocked(np)
	if err != nil {
		return newError("update", path, err)
	}
	n.content = content

	rev := t.commitLocked()
	logger.Debug().Str("path", np).Int("bytes", len(content)).Uint64("revision", rev).Msg("Updated file")
	return nil
}

// DeleteNode removes a file, or a directory together with all of its
// descendants. Deleting the root is rejected with ErrInvalidOperation.
func (t *FileTree) DeleteNode(path string) error {
	logger := util.GetLogger("FileTree.DeleteNode")

	np, err := pathutil.Normalize(path)
	if err != nil {
		return newError("delete", path, err)
	}
	if np == pathutil.Root {
		return newError("delete", path, detail(ErrInvalidOperation, "cannot delete the root"))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[np]; !ok {
		return newError("delete", path, ErrNotFound)
	}
	removed := t.subtreeLocked(np)
	for _, p := range removed {
		delete(t.nodes, p)
	}
	t.nodes[pathutil.Dir(np)].removeChild(pathutil.Base(np))

	rev := t.commitLocked()
	logger.Debug().Str("path", np).Int("removed", len(removed)).Uint64("revision", rev).Msg("Deleted node")
	return nil
}

// Rename moves the node at oldPath, and all of its descendants if it is a
// directory, to newPath. Missing ancestors of newPath are created.
// A rename within the same directory keeps the node's position among its siblings.
func (t *FileTree) Rename(oldPath, newPath string) error {
	logger := util.GetLogger("FileTree.Rename")

	src, err := pathutil.Normalize(oldPath)
	if err != nil {
		return newError("rename", oldPath, err)
	}
	dst, err := pathutil.Normalize(newPath)
	if err != nil {
		return newError("rename", newPath, err)
	}
	if src == pathutil.Root || dst == pathutil.Root {
		return newError("rename", oldPath, detail(ErrInvalidOperation, "cannot move the root"))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[src]; !ok {
		return newError("rename", oldPath, ErrNotFound)
	}
	if dst != src && pathutil.IsWithin(dst, src) {
		return newError("rename", newPath, detail(ErrInvalidOperation, "cannot move %s into its own descendant", src))
	}
	missing, err := t.prepareCreateLocked(dst)
	if err != nil {
		return newError("rename", newPath, err)
	}
	t.mkdirsLocked(missing)

	// Re-key the whole subtree; collect first so no entry is visited twice
	moved := t.subtreeLocked(src)
	rekeyed := make(map[string]*node, len(moved))
	for _, p := range moved {
		rekeyed[dst+strings.TrimPrefix(p, src)] = t.nodes[p]
		delete(t.nodes, p)
	}
	for p, n := range rekeyed {
		t.nodes[p] = n
	}

	oldName, newName := pathutil.Base(src), pathutil.Base(dst)
	rekeyed[dst].name = newName
	oldParent, newParent := t.nodes[pathutil.Dir(src)], t.nodes[pathutil.Dir(dst)]
	if oldParent == newParent {
		for i, name := range oldParent.children {
			if name == oldName {
				oldParent.children[i] = newName
				break
			}
		}
	} else {
		oldParent.removeChild(oldName)
		newParent.addChild(newName)
	}

	rev := t.commitLocked()
	logger.Debug().Str("from", src).Str("to", dst).Int("moved", len(moved)).Uint64("revision", rev).Msg("Renamed node")
	return nil
}

// ReadFile returns the content of the file at path
func (t *FileTree) ReadFile(path string) (string, error) {
	np, err := pathutil.Normalize(path)
	if err != nil {
		return "", newError("read", path, err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.fileLocked(np)
	if err != nil {
		return "", newError("read", path, err)
	}
	return n.content, nil
}

// GetNode returns a copy of the node at path
func (t *FileTree) GetNode(path string) (Node, error) {
	np, err := pathutil.Normalize(path)
	if err != nil {
		return Node{}, newError("stat", path, err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[np]
	if !ok {
		return Node{}, newError("stat", path, ErrNotFound)
	}
	return n.view(np), nil
}

// Exists reports whether any node exists at path. Invalid paths never exist.
func (t *FileTree) Exists(path string) bool {
	np, err := pathutil.Normalize(path)
	if err != nil {
		return false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.nodes[np]
	return ok
}

// ListDirectory returns the immediate children of a directory in insertion order
func (t *FileTree) ListDirectory(path string) ([]Node, error) {
	np, err := pathutil.Normalize(path)
	if err != nil {
		return nil, newError("list", path, err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	dir, err := t.dirLocked(np)
	if err != nil {
		return nil, newError("list", path, err)
	}
	out := make([]Node, 0, len(dir.children))
	for _, name := range dir.children {
		cp := childPath(np, name)
		out = append(out, t.nodes[cp].view(cp))
	}
	return out, nil
}

// AllFiles returns every file in depth-first traversal order (children in
// insertion order) together with the revision the listing was taken at.
func (t *FileTree) AllFiles() ([]File, uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]File, 0, len(t.nodes))
	t.walkLocked(pathutil.Root, func(p string, n *node) {
		if !n.isDir() {
			files = append(files, File{Path: p, Content: n.content})
		}
	})
	return files, t.revision.Load()
}

// AllFilesMap returns the path -> content mapping of every file
func (t *FileTree) AllFilesMap() map[string]string {
	files, _ := t.AllFiles()
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = f.Content
	}
	return out
}

// Walk calls fn for every node below the root in depth-first order
func (t *FileTree) Walk(fn func(n Node)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	t.walkLocked(pathutil.Root, func(p string, n *node) {
		if p != pathutil.Root {
			fn(n.view(p))
		}
	})
}

// prepareCreateLocked validates that a new node may be placed at np and
// returns the missing ancestor directories, shallowest first.
func (t *FileTree) prepareCreateLocked(np string) ([]string, error) {
	if _, ok := t.nodes[np]; ok {
		return nil, ErrAlreadyExists
	}
	var missing []string
	cur := pathutil.Root
	segs := pathutil.Segments(np)
	for _, seg := range segs[:len(segs)-1] {
		cur = childPath(cur, seg)
		n, ok := t.nodes[cur]
		if !ok {
			missing = append(missing, cur)
			continue
		}
		if !n.isDir() {
			return nil, detail(ErrInvalidPath, "ancestor %s is a file", cur)
		}
	}
	return missing, nil
}

// mkdirsLocked creates directories for paths whose parents already exist or
// appear earlier in paths
func (t *FileTree) mkdirsLocked(paths []string) {
	for _, p := range paths {
		t.attachLocked(p, newDirNode(pathutil.Base(p)))
	}
}

// attachLocked indexes n under p and appends it to its parent's children
func (t *FileTree) attachLocked(p string, n *node) {
	t.nodes[p] = n
	t.nodes[pathutil.Dir(p)].addChild(n.name)
}

func (t *FileTree) fileLocked(np string) (*node, error) {
	n, ok := t.nodes[np]
	if !ok {
		return nil, ErrNotFound
	}
	if n.isDir() {
		return nil, ErrNotAFile
	}
	return n, nil
}

func (t *FileTree) dirLocked(np string) (*node, error) {
	n, ok := t.nodes[np]
	if !ok {
		return nil, ErrNotFound
	}
	if !n.isDir() {
		return nil, ErrNotADirectory
	}
	return n, nil
}

// subtreeLocked returns p and all of its descendants in depth-first order
func (t *FileTree) subtreeLocked(p string) []string {
	var out []string
	t.walkLocked(p, func(cp string, _ *node) {
		out = append(out, cp)
	})
	return out
}

func (t *FileTree) walkLocked(p string, fn func(p string, n *node)) {
	n := t.nodes[p]
	fn(p, n)
	for _, name := range n.children {
		t.walkLocked(childPath(p, name), fn)
	}
}

// commitLocked bumps the revision and notifies subscribers.
// Must be the last step of a successful mutation.
func (t *FileTree) commitLocked() uint64 {
	rev := t.revision.Add(1)
	t.notifyLocked(rev)
	return rev
}

func childPath(dir, name string) string {
	if dir == pathutil.Root {
		return pathutil.Root + name
	}
	return dir + "/" + name
}
