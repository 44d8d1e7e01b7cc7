package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyDoc(id string, rev uint64) *Document {
	return &Document{ID: id, Revision: rev, State: StateReady, Entry: "/App.jsx"}
}

func errorDoc(id string, rev uint64) *Document {
	return &Document{
		ID:       id,
		Revision: rev,
		State:    StateError,
		Errors:   []PreviewError{{Kind: ErrorEntry, Message: MsgNoComponent}},
	}
}

func TestPreviewer_Initial(t *testing.T) {
	t.Parallel()

	st := NewPreviewer().Current()
	assert.Equal(t, StateEmpty, st.State)
	assert.Nil(t, st.Document)
	assert.Nil(t, st.LastGood)
	assert.Empty(t, st.Errors)
}

func TestPreviewer_Apply(t *testing.T) {
	t.Parallel()

	p := NewPreviewer()
	good := readyDoc("a", 1)
	require.True(t, p.Apply(good))

	st := p.Current()
	assert.Equal(t, StateReady, st.State)
	assert.Same(t, good, st.LastGood)

	bad := errorDoc("b", 2)
	require.True(t, p.Apply(bad))

	st = p.Current()
	assert.Equal(t, StateError, st.State)
	assert.Same(t, bad, st.Document)
	assert.Same(t, good, st.LastGood, "error document keeps the last good one")
	require.Len(t, st.Errors, 1)

	assert.False(t, p.Apply(readyDoc("old", 1)), "older revision is discarded")
	assert.Same(t, bad, p.Current().Document)

	require.True(t, p.Apply(&Document{ID: "c", Revision: 3, State: StateEmpty}))
	assert.Nil(t, p.Current().LastGood)
}

func TestPreviewer_RuntimeError(t *testing.T) {
	t.Parallel()

	p := NewPreviewer()
	doc := readyDoc("a", 1)
	p.Apply(doc)

	assert.False(t, p.ReportRuntimeError("other", "boom"), "stale document id is ignored")
	assert.Equal(t, StateReady, p.Current().State)

	require.True(t, p.ReportRuntimeError("a", "boom"))
	st := p.Current()
	assert.Equal(t, StateError, st.State)
	assert.Same(t, doc, st.LastGood)
	require.Len(t, st.Errors, 1)
	assert.Equal(t, ErrorRuntime, st.Errors[0].Kind)
	assert.Equal(t, "boom", st.Errors[0].Message)
	assert.Equal(t, "/App.jsx", st.Errors[0].Path)
	assert.Empty(t, doc.Errors, "runtime errors never leak into the document")

	require.True(t, p.Recover("a"))
	assert.Equal(t, StateReady, p.Current().State)
	assert.False(t, p.Recover("a"))
}

func TestPreviewer_ApplyClearsRuntimeError(t *testing.T) {
	t.Parallel()

	p := NewPreviewer()
	p.Apply(readyDoc("a", 1))
	p.ReportRuntimeError("a", "boom")

	p.Apply(readyDoc("b", 2))
	st := p.Current()
	assert.Equal(t, StateReady, st.State)
	assert.Empty(t, st.Errors)
}
