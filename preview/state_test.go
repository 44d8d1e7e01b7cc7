package preview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Text(t *testing.T) {
	t.Parallel()

	for _, st := range []State{StateEmpty, StateReady, StateError} {
		raw, err := json.Marshal(st)
		require.NoError(t, err)
		assert.Equal(t, `"`+st.String()+`"`, string(raw))

		var back State
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, st, back)
	}

	var st State
	assert.Error(t, st.UnmarshalText([]byte("loading")))
}

func TestPreviewError_Location(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", PreviewError{Kind: ErrorEntry, Message: MsgNoComponent}.Location())
	assert.Equal(t, "/a.js", PreviewError{Path: "/a.js"}.Location())
	assert.Equal(t, "/a.js:3:7", PreviewError{Path: "/a.js", Line: 3, Column: 7}.Location())
	assert.Equal(t, "entry error: no component found", PreviewError{Kind: ErrorEntry, Message: MsgNoComponent}.Error())
}
