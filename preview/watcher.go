package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
)

// ErrStaleBuild is returned by [Watcher.Rebuild] when the tree changed while
// the build ran, or a newer document was applied first
var ErrStaleBuild = errors.New("stale build discarded")

// Surface displays preview documents, e.g. a browser iframe
type Surface interface {
	Render(ctx context.Context, doc *Document) error
}

// Observer is told about every finished build, applied or not
type Observer interface {
	OnBuild(doc *Document, took time.Duration)
}

// Source is the project tree a Watcher follows
type Source interface {
	Subscribe() (<-chan uint64, func())
	AllFiles() ([]filesystem.File, uint64)
	Revision() uint64
}

var _ Source = (*filesystem.FileTree)(nil)

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithSurface sets where applied documents are rendered
func WithSurface(s Surface) WatcherOption {
	return func(w *Watcher) { w.surface = s }
}

// WithObserver sets a build observer
func WithObserver(o Observer) WatcherOption {
	return func(w *Watcher) { w.observer = o }
}

// Watcher rebuilds the preview whenever its source changes. Notifications
// that arrive during a build collapse into a single follow-up build of the
// newest revision.
type Watcher struct {
	source    Source
	assembler *Assembler
	previewer *Previewer
	surface   Surface
	observer  Observer

	buildMu sync.Mutex    // One build at a time
	applied atomic.Uint64 // Revision of the last applied build
}

// NewWatcher returns a Watcher applying builds of source to previewer
func NewWatcher(source Source, assembler *Assembler, previewer *Previewer, opts ...WatcherOption) *Watcher {
	w := &Watcher{source: source, assembler: assembler, previewer: previewer}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Previewer returns the state holder the Watcher applies builds to
func (w *Watcher) Previewer() *Previewer {
	return w.previewer
}

// Run builds the current revision, then rebuilds on every change until ctx
// is done. It returns the context's error.
func (w *Watcher) Run(ctx context.Context) error {
	logger := util.GetLogger("Watcher.Run")

	changes, unsubscribe := w.source.Subscribe()
	defer unsubscribe()

	logger.Info().Uint64("revision", w.source.Revision()).Msg("Watching project tree")
	w.rebuildLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopped watching project tree")
			return ctx.Err()
		case rev := <-changes:
			if rev <= w.applied.Load() {
				// Already built while handling an earlier notification
				continue
			}
			logger.Trace().Uint64("revision", rev).Msg("Tree changed")
			w.rebuildLogged(ctx)
		}
	}
}

func (w *Watcher) rebuildLogged(ctx context.Context) {
	logger := util.GetLogger("Watcher.Run")

	if _, err := w.Rebuild(ctx); err != nil {
		switch {
		case errors.Is(err, ErrStaleBuild):
			logger.Debug().Msg("Build superseded by a newer revision")
		case ctx.Err() != nil:
		default:
			logger.Warn().Err(err).Msg("Rebuild failed")
		}
	}
}

// Rebuild synchronously builds the source's current files, applies the
// document and renders it. A build whose revision is already behind the
// source is discarded with ErrStaleBuild; the pending change notification
// triggers the build that replaces it.
func (w *Watcher) Rebuild(ctx context.Context) (*Document, error) {
	logger := util.GetLogger("Watcher.Rebuild")

	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	start := time.Now()
	files, rev := w.source.AllFiles()
	doc, err := w.assembler.Build(ctx, files, rev)
	if err != nil {
		return nil, err
	}
	took := time.Since(start)
	if w.observer != nil {
		w.observer.OnBuild(doc, took)
	}

	if current := w.source.Revision(); current > rev {
		logger.Debug().Uint64("revision", rev).Uint64("current", current).Msg("Discarding build of outdated revision")
		return nil, ErrStaleBuild
	}
	if !w.previewer.Apply(doc) {
		return nil, ErrStaleBuild
	}
	w.applied.Store(rev)

	logger.Info().
		Uint64("revision", rev).
		Str("state", doc.State.String()).
		Int("errors", len(doc.Errors)).
		Dur("took", took).
		Msg("Preview rebuilt")

	if w.surface != nil {
		if err := w.surface.Render(ctx, doc); err != nil {
			return doc, fmt.Errorf("failed to render document %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}
