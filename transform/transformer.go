// Package transform compiles project scripts into plain ES modules a browser
// can execute: JSX becomes automatic-runtime calls and TypeScript syntax is
// erased. Module references are left exactly as written.
package transform

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/previewfs/internal/pathutil"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/cespare/xxhash/v2"
	"github.com/evanw/esbuild/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Loader names the source language of a script
type Loader string

const (
	LoaderJS  Loader = "js"
	LoaderJSX Loader = "jsx"
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
)

// LoaderFor picks the loader for path by its extension
func LoaderFor(path string) (Loader, bool) {
	switch pathutil.Ext(path) {
	case ".js", ".mjs":
		return LoaderJS, true
	case ".jsx":
		return LoaderJSX, true
	case ".ts":
		return LoaderTS, true
	case ".tsx":
		return LoaderTSX, true
	}
	return "", false
}

func (l Loader) esbuild() api.Loader {
	switch l {
	case LoaderTS:
		return api.LoaderTS
	case LoaderTSX:
		return api.LoaderTSX
	default:
		// .js and .mjs files may contain JSX
		return api.LoaderJSX
	}
}

// DefaultJSXImportSource is the package JSX calls are imported from
const DefaultJSXImportSource = "react"

// Options control compilation
type Options struct {
	JSXImportSource string // Defaults to DefaultJSXImportSource
	SourceMaps      bool   // Append inline source maps
	CacheEntries    int    // Compiled modules kept in memory; 0 disables caching
}

// Compile transforms one script without caching. The output depends only on
// path, content and opts.
func Compile(path, content string, opts Options) (string, error) {
	loader, ok := LoaderFor(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}

	importSource := opts.JSXImportSource
	if importSource == "" {
		importSource = DefaultJSXImportSource
	}
	sourcemap := api.SourceMapNone
	if opts.SourceMaps {
		sourcemap = api.SourceMapInline
	}

	// No output Format: import and export statements are kept as written
	result := api.Transform(content, api.TransformOptions{
		Loader:          loader.esbuild(),
		Sourcefile:      path,
		JSX:             api.JSXAutomatic,
		JSXImportSource: importSource,
		Target:          api.ES2020,
		Sourcemap:       sourcemap,
		LogLevel:        api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", newCompileError(path, result.Errors)
	}
	return string(result.Code), nil
}

func newCompileError(path string, msgs []api.Message) *CompileError {
	first := msgs[0]
	ce := &CompileError{Path: path, Message: first.Text}
	if loc := first.Location; loc != nil {
		ce.Line = loc.Line
		ce.Column = loc.Column
		ce.LineText = loc.LineText
	}
	for _, note := range first.Notes {
		ce.Notes = append(ce.Notes, note.Text)
	}
	for _, msg := range msgs[1:] {
		if msg.Location != nil {
			ce.Notes = append(ce.Notes, fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text))
		} else {
			ce.Notes = append(ce.Notes, msg.Text)
		}
	}
	return ce
}

type cacheKey struct {
	path string
	sum  uint64
	size int
}

type cacheEntry struct {
	code string
	err  error
}

// Stats reports cache effectiveness
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Transformer compiles scripts with fixed options, remembering the result for
// each (path, content) pair it has seen. Safe for concurrent use.
type Transformer struct {
	opts  Options
	cache *lru.Cache[cacheKey, cacheEntry] // nil when caching is disabled

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Transformer using opts
func New(opts Options) (*Transformer, error) {
	t := &Transformer{opts: opts}
	if opts.CacheEntries > 0 {
		cache, err := lru.New[cacheKey, cacheEntry](opts.CacheEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create transform cache: %w", err)
		}
		t.cache = cache
	}
	return t, nil
}

// Options returns the options the Transformer compiles with
func (t *Transformer) Options() Options {
	return t.opts
}

// Transform compiles content as the script at path. Compile errors are
// returned as *CompileError and cached like successful output.
func (t *Transformer) Transform(path, content string) (string, error) {
	logger := util.GetLogger("Transformer.Transform")

	key := cacheKey{path: path, sum: xxhash.Sum64String(content), size: len(content)}
	if t.cache != nil {
		if entry, ok := t.cache.Get(key); ok {
			t.hits.Add(1)
			logger.Trace().Str("path", path).Msg("Cache hit")
			return entry.code, entry.err
		}
	}
	t.misses.Add(1)

	start := time.Now()
	code, err := Compile(path, content, t.opts)
	logger.Debug().
		Str("path", path).
		Int("bytes", len(content)).
		Dur("took", time.Since(start)).
		Bool("failed", err != nil).
		Msg("Compiled module")

	if t.cache != nil {
		t.cache.Add(key, cacheEntry{code: code, err: err})
	}
	return code, err
}

// Stats returns cache counters
func (t *Transformer) Stats() Stats {
	s := Stats{Hits: t.hits.Load(), Misses: t.misses.Load()}
	if t.cache != nil {
		s.Entries = t.cache.Len()
	}
	return s
}

// Purge drops every cached result
func (t *Transformer) Purge() {
	if t.cache != nil {
		t.cache.Purge()
	}
}
