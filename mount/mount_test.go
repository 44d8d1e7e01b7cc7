package mount

import (
	"testing"

	"github.com/brettbedarf/previewfs/config"
	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries(t *testing.T) {
	t.Parallel()

	tree := filesystem.New()
	require.NoError(t, tree.CreateFile("/src/components/Button.jsx", "button"))
	require.NoError(t, tree.CreateFile("/App.jsx", "app"))
	require.NoError(t, tree.CreateDirectory("/assets"))

	got := entries(tree)

	assert.Equal(t, []entry{
		{Parent: "/", Name: "src", Dir: true},
		{Parent: "/src", Name: "components", Dir: true},
		{Parent: "/src/components", Name: "Button.jsx", Data: []byte("button")},
		{Parent: "/", Name: "App.jsx", Data: []byte("app")},
		{Parent: "/", Name: "assets", Dir: true},
	}, got)
}

func TestEntries_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, entries(filesystem.New()))
}

func TestNew_CapturesRevision(t *testing.T) {
	t.Parallel()

	tree := filesystem.New()
	require.NoError(t, tree.CreateFile("/a.js", "a"))

	m := New(tree, config.NewDefaultConfig().MountOptions)
	require.NoError(t, tree.UpdateFile("/a.js", "b"))

	assert.Equal(t, uint64(1), m.Revision())
	assert.Equal(t, []byte("a"), m.root.entries[0].Data, "later edits are not mounted")
	assert.NoError(t, m.Unmount(), "unmounting before serving is a no-op")
}
