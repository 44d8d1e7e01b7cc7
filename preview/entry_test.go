package preview

import (
	"testing"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/stretchr/testify/assert"
)

func files(paths ...string) []filesystem.File {
	out := make([]filesystem.File, 0, len(paths))
	for _, p := range paths {
		out = append(out, filesystem.File{Path: p})
	}
	return out
}

func TestSelectEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paths []string
		want  string
		ok    bool
	}{
		{"AppTsxBeatsIndexJsx", []string{"/index.jsx", "/App.tsx"}, "/App.tsx", true},
		{"AppJsxFirst", []string{"/App.tsx", "/App.jsx"}, "/App.jsx", true},
		{"IndexTsx", []string{"/components/A.jsx", "/index.tsx"}, "/index.tsx", true},
		{"RootBeatsSrc", []string{"/src/App.jsx", "/index.tsx"}, "/index.tsx", true},
		{"SrcApp", []string{"/components/A.jsx", "/src/App.tsx"}, "/src/App.tsx", true},
		{"FirstComponentInOrder", []string{"/lib/util.js", "/components/B.tsx", "/components/A.jsx"}, "/components/B.tsx", true},
		{"NoComponent", []string{"/styles.css", "/util.js", "/types.ts"}, "", false},
		{"Empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := SelectEntry(files(tt.paths...))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
