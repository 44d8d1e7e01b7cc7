package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/brettbedarf/previewfs/resolver"
)

// Document is one assembled preview: everything a sandboxed page needs to
// render the project at a revision
type Document struct {
	ID          string              `json:"id"`
	Revision    uint64              `json:"revision"`
	State       State               `json:"state"`
	Entry       string              `json:"entry,omitempty"`
	EntryKey    string              `json:"entryKey,omitempty"`
	ImportMap   *resolver.ImportMap `json:"importMap"`
	Styles      string              `json:"styles,omitempty"`
	Errors      []PreviewError      `json:"errors"`
	HeadScripts []string            `json:"-"`
}

// Ready reports whether the document can be rendered
func (d *Document) Ready() bool {
	return d.State == StateReady
}

var styleCloseRe = regexp.MustCompile(`(?i)</style`)

var documentTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="preview-document" content="{{.ID}}">
<title>Preview</title>
{{range .HeadScripts}}<script src="{{.}}"></script>
{{end}}{{.ImportMap}}
{{range .Preloads}}<link rel="modulepreload" href="{{.}}">
{{end}}{{.Styles}}
<style>
.preview-errors { font-family: ui-monospace, monospace; padding: 1.5rem; color: #991b1b; background: #fef2f2; }
.preview-errors h2 { margin-top: 0; font-size: 1rem; }
.preview-errors li { margin: .5rem 0; white-space: pre-wrap; }
.preview-errors .loc { color: #7f1d1d; font-weight: bold; }
</style>
</head>
<body>
{{if .Errors}}<div class="preview-errors" role="alert">
<h2>Preview unavailable</h2>
<ul>
{{range .Errors}}<li><span class="loc">{{.Kind}}{{with .Location}} {{.}}{{end}}</span>: {{.Message}}</li>
{{end}}</ul>
</div>
{{else if .EntryKey}}<div id="root"></div>
<script type="module">
import React from "react";
import { createRoot } from "react-dom/client";
const documentId = {{.ID}};
const report = (err) => {
  const message = err && err.message ? err.message : String(err);
  window.parent.postMessage({ type: "preview-error", documentId, message }, "*");
};
window.addEventListener("error", (e) => report(e.error || e.message));
window.addEventListener("unhandledrejection", (e) => report(e.reason));
try {
  const mod = await import({{.EntryKey}});
  if (typeof mod.default !== "function") {
    throw new Error("entry module has no default component export");
  }
  createRoot(document.getElementById("root")).render(React.createElement(mod.default));
  window.parent.postMessage({ type: "preview-ready", documentId }, "*");
} catch (err) {
  report(err);
}
</script>
{{end}}</body>
</html>
`))

type documentView struct {
	ID          string
	HeadScripts []string
	ImportMap   template.HTML
	Styles      template.HTML
	Preloads    []template.URL
	Errors      []PreviewError
	EntryKey    string
}

// WriteHTML renders the document as a self-contained HTML page
func (d *Document) WriteHTML(w io.Writer) error {
	view := documentView{
		ID:          d.ID,
		HeadScripts: d.HeadScripts,
		Errors:      d.Errors,
		EntryKey:    d.EntryKey,
	}

	im := d.ImportMap
	if im == nil {
		im = resolver.NewImportMap()
	}
	// json.Marshal escapes <, > and &, so the map cannot close its script element
	raw, err := im.BrowserJSON()
	if err != nil {
		return fmt.Errorf("failed to encode import map: %w", err)
	}
	view.ImportMap = template.HTML(`<script type="importmap">` + string(raw) + `</script>`)

	if d.State == StateReady && d.Entry != "" {
		view.Preloads = preloads(im, d.Entry)
	}

	if d.Styles != "" {
		css := styleCloseRe.ReplaceAllString(d.Styles, `<\/style`)
		view.Styles = template.HTML("<style>\n" + css + "\n</style>")
	}

	return documentTmpl.Execute(w, view)
}

// preloads returns the module URLs the entry loads, dependencies first.
// Link hrefs bypass the import map, so the URLs are used rather than keys.
func preloads(im *resolver.ImportMap, entry string) []template.URL {
	reach := map[string]bool{entry: true}
	stack := []string{entry}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range im.Deps[p] {
			if !reach[dep] {
				reach[dep] = true
				stack = append(stack, dep)
			}
		}
	}

	var out []template.URL
	for _, p := range im.Order {
		if !reach[p] {
			continue
		}
		if url, ok := im.Imports[resolver.ModuleKey(p)]; ok {
			// Module URLs are data: URLs built by the assembler
			out = append(out, template.URL(url))
		}
	}
	return out
}

// HTML renders the document as a string
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
