package requests

import (
	"testing"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd, err := GetCommand([]byte(`{"command":"view","path":"/"}`))
	require.NoError(t, err)
	assert.Equal(t, CommandView, cmd)

	_, err = GetCommand([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("Defaults", func(t *testing.T) {
		t.Parallel()

		req, err := Unmarshal([]byte(`{"command":"create","path":"/App.jsx"}`))
		require.NoError(t, err)
		assert.Equal(t, &Request{Command: CommandCreate, Path: "/App.jsx"}, req)
	})

	t.Run("AllFields", func(t *testing.T) {
		t.Parallel()

		req, err := Unmarshal([]byte(`{"command":"insert","path":"/a.js","insert_line":3,"new_str":"x"}`))
		require.NoError(t, err)
		assert.Equal(t, 3, req.InsertLine)
		assert.Equal(t, "x", req.NewStr)
	})

	invalid := map[string]string{
		"UnknownCommand":    `{"command":"undo_edit","path":"/a"}`,
		"MissingPath":       `{"command":"view"}`,
		"ReplaceWithoutOld": `{"command":"str_replace","path":"/a","new_str":"b"}`,
		"InsertWithoutLine": `{"command":"insert","path":"/a","new_str":"b"}`,
		"RenameWithoutPath": `{"command":"rename","path":"/a"}`,
		"Malformed":         `{"command":`,
		"WrongFieldType":    `{"command":"insert","path":"/a","insert_line":"3","new_str":"b"}`,
	}
	for name, raw := range invalid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Unmarshal([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestHandle(t *testing.T) {
	t.Parallel()

	tree := filesystem.New()

	steps := []struct {
		raw  string
		want string
	}{
		{`{"command":"create","path":"/App.jsx","file_text":"const a = 1;\nexport default a;"}`, "File created: /App.jsx"},
		{`{"command":"str_replace","path":"/App.jsx","old_str":"1","new_str":"2"}`, "Replaced 1 occurrence(s) in /App.jsx"},
		{`{"command":"insert","path":"/App.jsx","insert_line":0,"new_str":"// top"}`, "Text inserted at line 0 in /App.jsx"},
		{`{"command":"create","path":"/App.jsx","file_text":"export default 3;"}`, "File updated: /App.jsx"},
		{`{"command":"mkdir","path":"/components"}`, "Directory created: /components"},
		{`{"command":"rename","path":"/App.jsx","new_path":"/components/App.jsx"}`, "Renamed /App.jsx to /components/App.jsx"},
		{`{"command":"view","path":"/components/App.jsx"}`, "1\texport default 3;"},
		{`{"command":"view","path":"/"}`, "components/"},
		{`{"command":"delete","path":"/components"}`, "Deleted /components"},
	}

	for _, step := range steps {
		msg, err := Handle(tree, []byte(step.raw))
		require.NoError(t, err, step.raw)
		assert.Equal(t, step.want, msg, step.raw)
	}
	assert.False(t, tree.Exists("/components"))
}

func TestHandle_InsertAndReplaceContent(t *testing.T) {
	t.Parallel()

	tree := filesystem.New()
	require.NoError(t, tree.CreateFile("/a.js", "one\ntwo"))

	_, err := Handle(tree, []byte(`{"command":"insert","path":"/a.js","insert_line":1,"new_str":"mid"}`))
	require.NoError(t, err)
	_, err = Handle(tree, []byte(`{"command":"str_replace","path":"/a.js","old_str":"two","new_str":"three"}`))
	require.NoError(t, err)

	content, err := tree.ReadFile("/a.js")
	require.NoError(t, err)
	assert.Equal(t, "one\nmid\nthree", content)
}

func TestHandle_TreeErrors(t *testing.T) {
	t.Parallel()

	tree := filesystem.New()
	require.NoError(t, tree.CreateDirectory("/dir"))

	_, err := Handle(tree, []byte(`{"command":"view","path":"/missing"}`))
	assert.ErrorIs(t, err, filesystem.ErrNotFound)

	_, err = Handle(tree, []byte(`{"command":"str_replace","path":"/dir","old_str":"a"}`))
	assert.ErrorIs(t, err, filesystem.ErrNotAFile)

	_, err = Handle(tree, []byte(`{"command":"create","path":"/dir","file_text":"x"}`))
	assert.ErrorIs(t, err, filesystem.ErrNotAFile)

	_, err = Handle(tree, []byte(`{"command":"delete","path":"/"}`))
	assert.ErrorIs(t, err, filesystem.ErrInvalidOperation)
}
