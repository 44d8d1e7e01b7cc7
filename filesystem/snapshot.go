package filesystem

import (
	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/internal/pathutil"
	"github.com/brettbedarf/previewfs/internal/util"
)

// Serialize returns every node below the root in depth-first traversal order
func (t *FileTree) Serialize() previewfs.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]previewfs.NodeDescriptor, 0, len(t.nodes)-1)
	t.walkLocked(pathutil.Root, func(p string, n *node) {
		switch {
		case p == pathutil.Root:
		case n.isDir():
			entries = append(entries, previewfs.DirDescriptor(p))
		default:
			entries = append(entries, previewfs.FileDescriptor(p, n.content))
		}
	})
	return previewfs.Snapshot{Entries: entries}
}

// Deserialize replaces the whole tree with the contents of snap.
// The snapshot is validated in full before the live tree is touched, so a
// rejected snapshot leaves the tree and its revision unchanged. A successful
// restore counts as one mutation.
//
// Entries must use normalized paths and may not repeat. Parents missing from
// the snapshot are created implicitly.
func (t *FileTree) Deserialize(snap previewfs.Snapshot) error {
	logger := util.GetLogger("FileTree.Deserialize")

	nodes, err := buildNodes(snap)
	if err != nil {
		logger.Debug().Err(err).Int("entries", snap.Len()).Msg("Rejected snapshot")
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes = nodes
	rev := t.commitLocked()
	logger.Debug().Int("entries", snap.Len()).Int("nodes", len(nodes)).Uint64("revision", rev).Msg("Restored snapshot")
	return nil
}

// Reset empties the tree back to the bare root. Counts as one mutation.
func (t *FileTree) Reset() {
	logger := util.GetLogger("FileTree.Reset")

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes = map[string]*node{pathutil.Root: newDirNode("")}
	rev := t.commitLocked()
	logger.Debug().Uint64("revision", rev).Msg("Reset tree")
}

// buildNodes builds a fresh node index from snap without touching any tree
func buildNodes(snap previewfs.Snapshot) (map[string]*node, error) {
	nodes := map[string]*node{pathutil.Root: newDirNode("")}
	seen := make(map[string]bool, snap.Len())

	attach := func(p string, n *node) {
		nodes[p] = n
		nodes[pathutil.Dir(p)].addChild(n.name)
	}

	for _, e := range snap.Entries {
		if !e.Kind.Valid() {
			return nil, newError("deserialize", e.Path, detail(ErrInvalidOperation, "unknown node kind %q", e.Kind))
		}
		np, err := pathutil.Normalize(e.Path)
		if err != nil {
			return nil, newError("deserialize", e.Path, err)
		}
		if np != e.Path {
			return nil, newError("deserialize", e.Path, detail(ErrInvalidPath, "not normalized, expected %s", np))
		}
		if seen[np] {
			return nil, newError("deserialize", e.Path, detail(ErrAlreadyExists, "duplicate entry"))
		}
		seen[np] = true

		if e.Kind == previewfs.DirectoryKind && e.Content != nil {
			return nil, newError("deserialize", e.Path, detail(ErrInvalidOperation, "directory entry carries content"))
		}
		if np == pathutil.Root {
			if e.Kind != previewfs.DirectoryKind {
				return nil, newError("deserialize", e.Path, detail(ErrInvalidPath, "root must be a directory"))
			}
			continue
		}

		// Already implied as the parent of an earlier entry
		if existing, ok := nodes[np]; ok {
			if e.Kind == previewfs.FileKind || !existing.isDir() {
				return nil, newError("deserialize", e.Path, detail(ErrAlreadyExists, "conflicts with an earlier entry"))
			}
			continue
		}

		cur := pathutil.Root
		segs := pathutil.Segments(np)
		for _, seg := range segs[:len(segs)-1] {
			cur = childPath(cur, seg)
			n, ok := nodes[cur]
			if !ok {
				attach(cur, newDirNode(seg))
				continue
			}
			if !n.isDir() {
				return nil, newError("deserialize", e.Path, detail(ErrInvalidPath, "parent %s is a file", cur))
			}
		}

		if e.Kind == previewfs.DirectoryKind {
			attach(np, newDirNode(pathutil.Base(np)))
		} else {
			content := ""
			if e.Content != nil {
				content = *e.Content
			}
			attach(np, newFileNode(pathutil.Base(np), content))
		}
	}
	return nodes, nil
}
