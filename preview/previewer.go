package preview

import (
	"sync"

	"github.com/brettbedarf/previewfs/internal/util"
)

// Status is a point-in-time view of the preview
type Status struct {
	State    State          `json:"state"`
	Revision uint64         `json:"revision"`
	Document *Document      `json:"-"`
	LastGood *Document      `json:"-"`
	Errors   []PreviewError `json:"errors"`
}

// Previewer holds the preview state: the latest applied document, the last
// document that was ready, and any runtime error reported for the latest one.
// Safe for concurrent use.
type Previewer struct {
	mu         sync.RWMutex
	current    *Document
	lastGood   *Document
	runtimeErr *PreviewError
}

// NewPreviewer returns a Previewer in the empty state
func NewPreviewer() *Previewer {
	return &Previewer{}
}

// Apply makes doc the current document unless a newer revision is already
// applied. A ready document also becomes the last good one; an empty one
// clears it. Returns false when doc was discarded as stale.
func (p *Previewer) Apply(doc *Document) bool {
	logger := util.GetLogger("Previewer.Apply")

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && doc.Revision < p.current.Revision {
		logger.Debug().
			Uint64("revision", doc.Revision).
			Uint64("current", p.current.Revision).
			Msg("Discarding stale document")
		return false
	}

	p.current = doc
	p.runtimeErr = nil
	switch doc.State {
	case StateReady:
		p.lastGood = doc
	case StateEmpty:
		p.lastGood = nil
	}

	logger.Debug().Str("id", doc.ID).Uint64("revision", doc.Revision).Str("state", doc.State.String()).Msg("Applied document")
	return true
}

// ReportRuntimeError moves the preview to the error state after the document
// docID failed while running. The last good document is kept. Reports for
// any document other than the current one are ignored and return false.
func (p *Previewer) ReportRuntimeError(docID, message string) bool {
	logger := util.GetLogger("Previewer.ReportRuntimeError")

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.ID != docID {
		logger.Debug().Str("id", docID).Msg("Ignoring runtime error for stale document")
		return false
	}
	p.runtimeErr = &PreviewError{Kind: ErrorRuntime, Path: p.current.Entry, Message: message}
	logger.Info().Str("id", docID).Str("message", message).Msg("Preview runtime error")
	return true
}

// Recover clears a runtime error reported for docID, returning the preview
// to the document's own state
func (p *Previewer) Recover(docID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.ID != docID || p.runtimeErr == nil {
		return false
	}
	p.runtimeErr = nil
	return true
}

// Current returns the preview status
func (p *Previewer) Current() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{State: StateEmpty, LastGood: p.lastGood, Errors: make([]PreviewError, 0)}
	if p.current == nil {
		return st
	}
	st.State = p.current.State
	st.Revision = p.current.Revision
	st.Document = p.current
	st.Errors = append(st.Errors, p.current.Errors...)
	if p.runtimeErr != nil {
		st.State = StateError
		st.Errors = append(st.Errors, *p.runtimeErr)
	}
	return st
}
