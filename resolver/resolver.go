// Package resolver finds the module references in project scripts, classifies
// each one as a project module, a stylesheet or a bound library, and builds the
// import map, aggregated styles and dependency order a preview is assembled from.
package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/pathutil"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/gammazero/toposort"
)

// ScriptExtensions are tried in this order when a local specifier has no
// matching file as written
var ScriptExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Kind classifies a resolved specifier
type Kind int

const (
	KindLocal      Kind = iota // project script
	KindStyle                  // project stylesheet; aggregated, never executed
	KindLibrary                // bound library or absolute URL
	KindUnresolved             // reported as a ResolutionError
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindStyle:
		return "style"
	case KindLibrary:
		return "library"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of resolving one specifier
type Resolution struct {
	Specifier string
	Kind      Kind
	Target    string // Resolved project path, or URL for libraries
	Reason    string // Set when unresolved
}

// ResolutionError reports a specifier that is neither a project file nor a
// bound library
type ResolutionError struct {
	Importer  string `json:"importer"`
	Specifier string `json:"specifier"`
	Reason    string `json:"reason"`
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("%s: cannot resolve %q: %s", e.Importer, e.Specifier, e.Reason)
}

// IsScript reports whether path holds executable module code
func IsScript(path string) bool {
	switch pathutil.Ext(path) {
	case ".js", ".jsx", ".ts", ".tsx", ".mjs":
		return true
	}
	return false
}

// IsStyle reports whether path is a stylesheet
func IsStyle(path string) bool {
	return pathutil.Ext(path) == ".css"
}

// IsLocalSpecifier reports whether spec refers to a project file: relative,
// absolute, or rooted with the "@/" alias
func IsLocalSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, "@/") ||
		spec == "." || spec == ".."
}

func isURL(spec string) bool {
	return strings.HasPrefix(spec, "https://") || strings.HasPrefix(spec, "http://")
}

// Resolver resolves specifiers against a set of project files and a bindings
// registry. It holds no per-build state and is safe for concurrent use.
type Resolver struct {
	bindings *Bindings
}

// New returns a resolver using bindings, or [DefaultBindings] when nil
func New(bindings *Bindings) *Resolver {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Resolver{bindings: bindings}
}

// Bindings returns the registry the resolver looks libraries up in
func (r *Resolver) Bindings() *Bindings {
	return r.bindings
}

// ResolveSpecifier classifies spec as written in importer. isFile reports
// whether a normalized path names a project file.
func (r *Resolver) ResolveSpecifier(importer, spec string, isFile func(string) bool) Resolution {
	res := Resolution{Specifier: spec, Kind: KindUnresolved}

	switch {
	case spec == "":
		res.Reason = "empty specifier"

	case IsLocalSpecifier(spec):
		var (
			base string
			err  error
		)
		switch {
		case strings.HasPrefix(spec, "@/"):
			base, err = pathutil.Normalize(spec[1:])
		default:
			base, err = pathutil.Join(pathutil.Dir(importer), spec)
		}
		if err != nil {
			res.Reason = "invalid path"
			return res
		}
		target, ok := probe(base, isFile)
		if !ok {
			res.Reason = "module not found"
			return res
		}
		res.Target = target
		switch {
		case IsScript(target):
			res.Kind = KindLocal
		case IsStyle(target):
			res.Kind = KindStyle
		default:
			res.Reason = "unsupported module type"
		}

	case isURL(spec):
		res.Kind = KindLibrary
		res.Target = spec

	default:
		if url, ok := r.bindings.Lookup(spec); ok {
			res.Kind = KindLibrary
			res.Target = url
		} else {
			res.Reason = "no binding for library"
		}
	}
	return res
}

// probe tries base as written, then with each script extension, then as a
// directory index
func probe(base string, isFile func(string) bool) (string, bool) {
	if isFile(base) {
		return base, true
	}
	for _, ext := range ScriptExtensions {
		if isFile(base + ext) {
			return base + ext, true
		}
	}
	for _, ext := range ScriptExtensions {
		p := base + "/index" + ext
		if base == pathutil.Root {
			p = "/index" + ext
		}
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

// Build resolves every module reference in files and returns the resulting
// import map. files must be in traversal order; the result is deterministic
// for a given ordered input. When compiled holds code for a script, references
// are read from it rather than from the source.
//
// Project module URLs are not known yet: the caller adds them with
// [ImportMap.AddModule] once each module is compiled.
func (r *Resolver) Build(files []filesystem.File, compiled map[string]string) *ImportMap {
	logger := util.GetLogger("Resolver.Build")

	m := NewImportMap()
	paths := make(map[string]bool, len(files))
	for _, f := range files {
		paths[f.Path] = true
	}
	isFile := func(p string) bool { return paths[p] }

	var (
		styles  []string
		scripts []string
		edges   []toposort.Edge
	)
	seenEdge := make(map[[2]string]bool)
	seenErr := make(map[[2]string]bool)

	for _, f := range files {
		if IsStyle(f.Path) {
			styles = append(styles, f.Content)
			continue
		}
		if !IsScript(f.Path) {
			continue
		}
		scripts = append(scripts, f.Path)

		src := f.Content
		if code, ok := compiled[f.Path]; ok {
			src = code
		}
		for _, imp := range ScanImports(src) {
			if imp.TypeOnly {
				continue
			}
			res := r.ResolveSpecifier(f.Path, imp.Specifier, isFile)
			m.record(f.Path, res)

			switch res.Kind {
			case KindLocal:
				edge := [2]string{res.Target, f.Path}
				if !seenEdge[edge] && res.Target != f.Path {
					seenEdge[edge] = true
					edges = append(edges, toposort.Edge{res.Target, f.Path})
					m.Deps[f.Path] = append(m.Deps[f.Path], res.Target)
				}
			case KindUnresolved:
				key := [2]string{f.Path, imp.Specifier}
				if !seenErr[key] {
					seenErr[key] = true
					m.Errors = append(m.Errors, ResolutionError{Importer: f.Path, Specifier: imp.Specifier, Reason: res.Reason})
				}
			}
		}
	}

	m.Styles = strings.Join(styles, "\n")
	m.Order = moduleOrder(scripts, edges)

	logger.Debug().
		Int("scripts", len(scripts)).
		Int("styles", len(styles)).
		Int("edges", len(edges)).
		Int("errors", len(m.Errors)).
		Msg("Resolved project imports")
	return m
}

// moduleOrder sorts scripts so every module comes after the modules it
// imports. Modules outside any edge keep traversal order at the end. An import
// cycle has no such order; traversal order is used instead.
func moduleOrder(scripts []string, edges []toposort.Edge) []string {
	if len(edges) == 0 {
		return slices.Clone(scripts)
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		logger := util.GetLogger("Resolver.moduleOrder")
		logger.Debug().Err(err).Msg("Import cycle, using traversal order")
		return slices.Clone(scripts)
	}

	out := make([]string, 0, len(scripts))
	seen := make(map[string]bool, len(scripts))
	for _, v := range sorted {
		p, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, p)
		seen[p] = true
	}
	for _, p := range scripts {
		if !seen[p] {
			out = append(out, p)
		}
	}
	return out
}
