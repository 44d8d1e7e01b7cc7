package filesystem

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brettbedarf/previewfs/internal/pathutil"
	"github.com/brettbedarf/previewfs/internal/util"
)

// ReplaceInFile replaces every occurrence of old with new in the file at path
// and returns the number of replacements.
// An empty old string or one that does not occur is ErrInvalidOperation.
func (t *FileTree) ReplaceInFile(path, old, new string) (int, error) {
	logger := util.GetLogger("FileTree.ReplaceInFile")

	np, err := pathutil.Normalize(path)
	if err != nil {
		return 0, newError("replace", path, err)
	}
	if old == "" {
		return 0, newError("replace", path, detail(ErrInvalidOperation, "search string is empty"))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.fileLocked(np)
	if err != nil {
		return 0, newError("replace", path, err)
	}
	count := strings.Count(n.content, old)
	if count == 0 {
		return 0, newError("replace", path, detail(ErrInvalidOperation, "search string not found"))
	}
	n.content = strings.ReplaceAll(n.content, old, new)

	rev := t.commitLocked()
	logger.Debug().Str("path", np).Int("count", count).Uint64("revision", rev).Msg("Replaced text")
	return count, nil
}

// InsertInFile inserts text as new line(s) after 1-based line `line`; 0 inserts
// at the top. A line past the end of the file is ErrInvalidOperation.
func (t *FileTree) InsertInFile(path string, line int, text string) error {
	logger := util.GetLogger("FileTree.InsertInFile")

	np, err := pathutil.Normalize(path)
	if err != nil {
		return newError("insert", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.fileLocked(np)
	if err != nil {
		return newError("insert", path, err)
	}
	lines := strings.Split(n.content, "\n")
	if line < 0 || line > len(lines) {
		return newError("insert", path, detail(ErrInvalidOperation, "line %d out of range 0..%d", line, len(lines)))
	}
	lines = slices.Insert(lines, line, text)
	n.content = strings.Join(lines, "\n")

	rev := t.commitLocked()
	logger.Debug().Str("path", np).Int("line", line).Uint64("revision", rev).Msg("Inserted text")
	return nil
}

// ViewFile renders a file with 1-based line numbers, or a directory as one
// child per line with directories suffixed by "/".
func (t *FileTree) ViewFile(path string) (string, error) {
	np, err := pathutil.Normalize(path)
	if err != nil {
		return "", newError("view", path, err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[np]
	if !ok {
		return "", newError("view", path, ErrNotFound)
	}

	var b strings.Builder
	if n.isDir() {
		if len(n.children) == 0 {
			return "(empty directory)", nil
		}
		for i, name := range n.children {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(name)
			if t.nodes[childPath(np, name)].isDir() {
				b.WriteByte('/')
			}
		}
		return b.String(), nil
	}

	if n.content == "" {
		return "(empty file)", nil
	}
	for i, l := range strings.Split(n.content, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\t%s", i+1, l)
	}
	return b.String(), nil
}
