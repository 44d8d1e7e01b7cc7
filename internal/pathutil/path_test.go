package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
		desc    string
	}{
		{"/", "/", false, "root"},
		{"/a/b", "/a/b", false, "already normalized"},
		{"a/b", "/a/b", false, "relative to root"},
		{"//a//b/", "/a/b", false, "redundant separators"},
		{"/a/./b/.", "/a/b", false, "dot segments"},
		{"/a/../b", "/b", false, "dot dot pops inside path"},
		{"/a/b/../../c", "/c", false, "dot dot back to root"},
		{"   ", "/   ", false, "whitespace name"},
		{".", "/", false, "lone dot"},

		{"", "", true, "empty"},
		{"/..", "", true, "escapes root"},
		{"/a/../../b", "", true, "escapes root after pop"},
		{"a\x00b", "", true, "NUL byte"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a", MustNormalize("a/"))
	assert.Panics(t, func() { MustNormalize("/..") })
}

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base    string
		segment string
		want    string
		wantErr bool
	}{
		{"/src", "App.jsx", "/src/App.jsx", false},
		{"/src", "./lib/a.js", "/src/lib/a.js", false},
		{"/src/components", "../lib/a.js", "/src/lib/a.js", false},
		{"/src", "/abs/b.js", "/abs/b.js", false},
		{"", "/abs/b.js", "/abs/b.js", false},
		{"/", "a.js", "/a.js", false},

		{"/src", "", "", true},
		{"/src", "../../x", "", true},
		{"", "a.js", "", true},
	}

	for _, tt := range tests {
		got, err := Join(tt.base, tt.segment)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPath, "%s + %s", tt.base, tt.segment)
			continue
		}
		require.NoError(t, err, "%s + %s", tt.base, tt.segment)
		assert.Equal(t, tt.want, got, "%s + %s", tt.base, tt.segment)
	}
}

func TestDirBase(t *testing.T) {
	t.Parallel()

	tests := map[string][2]string{
		"/":           {"/", ""},
		"":            {"/", ""},
		"/a":          {"/", "a"},
		"/a/b.jsx":    {"/a", "b.jsx"},
		"/a/b/c.d.ts": {"/a/b", "c.d.ts"},
	}
	for p, want := range tests {
		assert.Equal(t, want[0], Dir(p), "Dir(%q)", p)
		assert.Equal(t, want[1], Base(p), "Base(%q)", p)
	}
}

func TestExt(t *testing.T) {
	t.Parallel()

	for p, want := range map[string]string{
		"/App.JSX":    ".jsx",
		"/a/b.d.ts":   ".ts",
		"/Makefile":   "",
		"/":           "",
		"/dir.d/file": "",
	} {
		assert.Equal(t, want, Ext(p), p)
	}
}

func TestIsWithin(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWithin("/a", "/"))
	assert.True(t, IsWithin("/", "/"))
	assert.True(t, IsWithin("/a", "/a"))
	assert.True(t, IsWithin("/a/b/c", "/a"))
	assert.False(t, IsWithin("/ab", "/a"))
	assert.False(t, IsWithin("/", "/a"))
}

func TestSegments(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Segments("/"))
	assert.Equal(t, []string{"a"}, Segments("/a"))
	assert.Equal(t, []string{"a", "b", "c.js"}, Segments("/a/b/c.js"))
}
