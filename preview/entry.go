package preview

import (
	"slices"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/pathutil"
)

// EntryCandidates are the conventional entry paths, highest priority first
var EntryCandidates = []string{
	"/App.jsx", "/App.tsx", "/index.jsx", "/index.tsx",
	"/src/App.jsx", "/src/App.tsx", "/src/index.jsx", "/src/index.tsx",
}

// SelectEntry picks the module the preview renders: the first existing
// conventional entry, otherwise the first .jsx or .tsx file in traversal order.
func SelectEntry(files []filesystem.File) (string, bool) {
	for _, candidate := range EntryCandidates {
		if slices.ContainsFunc(files, func(f filesystem.File) bool { return f.Path == candidate }) {
			return candidate, true
		}
	}
	for _, f := range files {
		if ext := pathutil.Ext(f.Path); ext == ".jsx" || ext == ".tsx" {
			return f.Path, true
		}
	}
	return "", false
}
