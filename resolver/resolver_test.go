package resolver

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileSet(paths ...string) func(string) bool {
	return func(p string) bool { return slices.Contains(paths, p) }
}

func TestBindings_Lookup(t *testing.T) {
	t.Parallel()

	b := DefaultBindings()

	url, ok := b.Lookup("react")
	require.True(t, ok)
	assert.Equal(t, ReactURL, url)

	url, ok = b.Lookup("react/jsx-runtime")
	require.True(t, ok)
	assert.Equal(t, ReactURL+"/jsx-runtime", url)

	url, ok = b.Lookup("react-dom/client")
	require.True(t, ok)
	assert.Equal(t, ReactDOMURL+"/client", url)

	_, ok = b.Lookup("lodash")
	assert.False(t, ok)

	b.Register("react-dom/client", "https://example.test/client.js")
	url, _ = b.Lookup("react-dom/client")
	assert.Equal(t, "https://example.test/client.js", url, "exact binding wins over prefix")

	b.Remove("react")
	_, ok = b.Lookup("react")
	assert.False(t, ok)
}

func TestBindings_LongestPrefix(t *testing.T) {
	t.Parallel()

	b := NewBindings()
	b.RegisterAll(map[string]string{
		"lib/":      "https://a.test/lib/",
		"lib/deep/": "https://b.test/",
	})

	url, ok := b.Lookup("lib/deep/x.js")
	require.True(t, ok)
	assert.Equal(t, "https://b.test/x.js", url)

	_, ok = b.Lookup("lib/")
	assert.True(t, ok)
	assert.Len(t, b.Entries(), 2)
}

func TestResolver_ResolveSpecifier(t *testing.T) {
	t.Parallel()

	r := New(nil)
	isFile := fileSet(
		"/App.jsx",
		"/components/Button.tsx",
		"/components/Button.js",
		"/lib/index.ts",
		"/styles.css",
		"/data.json",
		"/src/util.js",
	)

	tests := []struct {
		name     string
		importer string
		spec     string
		kind     Kind
		target   string
	}{
		{"Literal", "/App.jsx", "./styles.css", KindStyle, "/styles.css"},
		{"ExtensionOrder", "/App.jsx", "./components/Button", KindLocal, "/components/Button.tsx"},
		{"Index", "/App.jsx", "./lib", KindLocal, "/lib/index.ts"},
		{"Parent", "/components/Button.tsx", "../App", KindLocal, "/App.jsx"},
		{"Absolute", "/components/Button.tsx", "/src/util.js", KindLocal, "/src/util.js"},
		{"RootAlias", "/components/Button.tsx", "@/src/util", KindLocal, "/src/util.js"},
		{"Library", "/App.jsx", "react", KindLibrary, ReactURL},
		{"LibraryPrefix", "/App.jsx", "react/jsx-runtime", KindLibrary, ReactURL + "/jsx-runtime"},
		{"URL", "/App.jsx", "https://cdn.test/x.js", KindLibrary, "https://cdn.test/x.js"},
		{"Missing", "/App.jsx", "./Nope", KindUnresolved, ""},
		{"Unbound", "/App.jsx", "lodash", KindUnresolved, ""},
		{"Escapes", "/App.jsx", "../../x", KindUnresolved, ""},
		{"Unsupported", "/App.jsx", "./data.json", KindUnresolved, "/data.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := r.ResolveSpecifier(tt.importer, tt.spec, isFile)
			assert.Equal(t, tt.kind, res.Kind, res.Reason)
			assert.Equal(t, tt.target, res.Target)
			if tt.kind == KindUnresolved {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestResolver_Build(t *testing.T) {
	t.Parallel()

	files := []filesystem.File{
		{Path: "/App.jsx", Content: `import React from "react";
import Button from "./components/Button";
import "./styles.css";
import Missing from "./Missing";
import Again from "./Missing";
export default function App() { return <Button />; }`},
		{Path: "/components/Button.jsx", Content: `import { cn } from "../lib/cn";
export default function Button() { return null; }`},
		{Path: "/lib/cn.js", Content: `export const cn = (...c) => c.join(" ");`},
		{Path: "/styles.css", Content: "body { margin: 0; }"},
		{Path: "/theme.css", Content: ".dark { color: white; }"},
		{Path: "/README.md", Content: "# readme"},
	}

	m := New(nil).Build(files, nil)

	t.Run("SingleErrorPerMissingSpecifier", func(t *testing.T) {
		require.Len(t, m.Errors, 1)
		assert.Equal(t, "/App.jsx", m.Errors[0].Importer)
		assert.Equal(t, "./Missing", m.Errors[0].Specifier)
		assert.NotContains(t, m.Imports, "./Missing")
		assert.NotContains(t, m.Scopes["/App.jsx"], "./Missing")
		assert.True(t, m.HasErrors())
	})

	t.Run("Scopes", func(t *testing.T) {
		assert.Equal(t, "@/components/Button.jsx", m.Scopes["/App.jsx"]["./components/Button"])
		assert.Equal(t, "react", m.Scopes["/App.jsx"]["react"])
		assert.Equal(t, ReactURL, m.Imports["react"])
		assert.Equal(t, "@/lib/cn.js", m.Scopes["/components/Button.jsx"]["../lib/cn"])

		res, ok := m.Lookup("/App.jsx", "./styles.css")
		require.True(t, ok)
		assert.Equal(t, KindStyle, res.Kind)
	})

	t.Run("Styles", func(t *testing.T) {
		assert.Equal(t, "body { margin: 0; }\n.dark { color: white; }", m.Styles)
	})

	t.Run("DependencyOrder", func(t *testing.T) {
		require.ElementsMatch(t, []string{"/App.jsx", "/components/Button.jsx", "/lib/cn.js"}, m.Order)
		idx := func(p string) int { return slices.Index(m.Order, p) }
		assert.Less(t, idx("/lib/cn.js"), idx("/components/Button.jsx"))
		assert.Less(t, idx("/components/Button.jsx"), idx("/App.jsx"))
		assert.Equal(t, []string{"/components/Button.jsx"}, m.Deps["/App.jsx"])
	})
}

func TestResolver_BuildDeterministic(t *testing.T) {
	t.Parallel()

	files := []filesystem.File{
		{Path: "/App.tsx", Content: `import A from "./A"; import B from "./B"; import "react";`},
		{Path: "/A.tsx", Content: `import B from "./B"; export default 1;`},
		{Path: "/B.tsx", Content: `export default 2;`},
	}
	r := New(nil)

	first, err := json.Marshal(r.Build(files, nil))
	require.NoError(t, err)
	for range 5 {
		again, err := json.Marshal(r.Build(files, nil))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(again))
	}
	assert.Equal(t, r.Build(files, nil).Order, r.Build(files, nil).Order)
}

func TestResolver_BuildCycleFallsBack(t *testing.T) {
	t.Parallel()

	files := []filesystem.File{
		{Path: "/a.js", Content: `import "./b";`},
		{Path: "/b.js", Content: `import "./a";`},
		{Path: "/c.js", Content: ``},
	}

	m := New(nil).Build(files, nil)
	assert.Equal(t, []string{"/a.js", "/b.js", "/c.js"}, m.Order)
	assert.Empty(t, m.Errors)
}

func TestResolver_BuildUsesCompiledCode(t *testing.T) {
	t.Parallel()

	files := []filesystem.File{
		{Path: "/App.tsx", Content: `import type { P } from "./types"; import x from "./gone";`},
	}
	compiled := map[string]string{
		"/App.tsx": `import { jsx } from "react/jsx-runtime";`,
	}

	m := New(nil).Build(files, compiled)
	assert.Empty(t, m.Errors)
	assert.Equal(t, ReactURL+"/jsx-runtime", m.Imports["react/jsx-runtime"])
}

func TestImportMap_AddModule(t *testing.T) {
	t.Parallel()

	m := NewImportMap()
	m.AddModule("/src/App.jsx", "data:app")
	m.AddModule("/src/App.tsx", "data:other")

	assert.Equal(t, "data:app", m.Imports["@/src/App.jsx"])
	assert.Equal(t, "data:other", m.Imports["@/src/App.tsx"])
	assert.Equal(t, "data:app", m.Imports["/src/App.jsx"])
	assert.Equal(t, "data:app", m.Imports["/src/App"], "first module keeps a shared alias")
	assert.Equal(t, "data:app", m.Imports["@/src/App"])

	raw, err := m.BrowserJSON()
	require.NoError(t, err)

	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "data:app", decoded["imports"]["@/src/App.jsx"])
}
