// Package preview turns the files of a project tree into a renderable preview
// document, tracks the preview state across rebuilds and runtime reports, and
// keeps the preview in step with the tree.
package preview

import (
	"context"
	"slices"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/resolver"
	"github.com/brettbedarf/previewfs/transform"
	"github.com/google/uuid"
)

// bootstrapImports are loaded by every rendered document
var bootstrapImports = []string{"react", "react-dom/client"}

// Assembler builds preview documents from ordered project files
type Assembler struct {
	resolver    *resolver.Resolver
	transformer *transform.Transformer
	headScripts []string
}

// NewAssembler returns an Assembler. headScripts are classic scripts loaded
// before any module in every document (e.g. a CSS framework runtime).
func NewAssembler(r *resolver.Resolver, t *transform.Transformer, headScripts []string) *Assembler {
	return &Assembler{resolver: r, transformer: t, headScripts: slices.Clone(headScripts)}
}

// Build assembles the files of one revision into a document. Files must be in
// tree traversal order.
//
// A document is always produced: build problems are reported in its Errors,
// ordered compile error first, then resolution errors, then a missing entry.
// Compilation stops at the first script that fails. The only error returned is
// the context's.
func (a *Assembler) Build(ctx context.Context, files []filesystem.File, revision uint64) (*Document, error) {
	logger := util.GetLogger("Assembler.Build")

	doc := &Document{
		ID:          uuid.NewString(),
		Revision:    revision,
		State:       StateEmpty,
		ImportMap:   resolver.NewImportMap(),
		Errors:      make([]PreviewError, 0),
		HeadScripts: a.headScripts,
	}
	if len(files) == 0 {
		logger.Debug().Uint64("revision", revision).Msg("No files, preview is empty")
		return doc, nil
	}

	compiled := make(map[string]string)
	var compileErr *PreviewError
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !resolver.IsScript(f.Path) {
			continue
		}
		code, err := a.transformer.Transform(f.Path, f.Content)
		if err != nil {
			pe := compileFailure(f.Path, err)
			compileErr = &pe
			break
		}
		compiled[f.Path] = code
	}

	im := a.resolver.Build(files, compiled)
	doc.ImportMap = im
	doc.Styles = im.Styles

	if compileErr != nil {
		doc.Errors = append(doc.Errors, *compileErr)
	}
	for _, re := range im.Errors {
		doc.Errors = append(doc.Errors, resolutionFailure(re))
	}

	for _, f := range files {
		code, ok := compiled[f.Path]
		if !ok {
			continue
		}
		im.AddModule(f.Path, moduleURL(rewriteModule(f.Path, code, im)))
	}

	entry, ok := SelectEntry(files)
	if ok {
		doc.Entry = entry
		doc.EntryKey = resolver.ModuleKey(entry)
		for _, spec := range bootstrapImports {
			if _, bound := im.Imports[spec]; bound {
				continue
			}
			if url, found := a.resolver.Bindings().Lookup(spec); found {
				im.Imports[spec] = url
			} else {
				doc.Errors = append(doc.Errors, resolutionFailure(resolver.ResolutionError{
					Importer: entry, Specifier: spec, Reason: "no binding for library",
				}))
			}
		}
	} else {
		doc.Errors = append(doc.Errors, PreviewError{Kind: ErrorEntry, Message: MsgNoComponent})
	}

	if len(doc.Errors) > 0 {
		doc.State = StateError
	} else {
		doc.State = StateReady
	}

	logger.Debug().
		Str("id", doc.ID).
		Uint64("revision", revision).
		Str("state", doc.State.String()).
		Str("entry", doc.Entry).
		Int("modules", len(compiled)).
		Int("errors", len(doc.Errors)).
		Msg("Assembled preview")
	return doc, nil
}
