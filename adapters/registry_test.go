package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_MultipleProviders(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider1 := &mocks.MockSourceProvider{}
	mockProvider2 := &mocks.MockSourceProvider{}

	r.Register("test1", mockProvider1)
	r.Register("test2", mockProvider2)

	provider1, err := r.GetProvider("test1")
	require.NoError(t, err)
	assert.Same(t, mockProvider1, provider1)

	provider2, err := r.GetProvider("test2")
	require.NoError(t, err)
	assert.Same(t, mockProvider2, provider2)
}

func TestRegister_DuplicateProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider1 := &mocks.MockSourceProvider{}
	mockProvider2 := &mocks.MockSourceProvider{}

	r.Register("test", mockProvider1)
	r.Register("test", mockProvider2)

	provider, err := r.GetProvider("test")
	require.NoError(t, err)
	assert.Same(t, mockProvider1, provider)
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	r := NewRegistry()

	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kind := fmt.Sprintf("test%d", i)
			mockProvider := &mocks.MockSourceProvider{}
			r.Register(kind, mockProvider)
			provider, err := r.GetProvider(kind)
			assert.NoError(t, err)
			assert.Same(t, mockProvider, provider)
		}()
	}
	wg.Wait()
}

func TestGetProvider_NonExistentProvider(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().GetProvider("nonexistent")
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider := &mocks.MockSourceProvider{}
	mockSource := &mocks.MockProjectSource{}
	r.Register(HTTPAdapterType, mockProvider)

	mockProvider.On("NewSource", "https://example.com/p.json").Return(mockSource, nil)
	mockSource.On("Load", mock.Anything).Return(previewfs.Snapshot{}, nil)

	src, err := r.NewSource("  https://example.com/p.json ")
	require.NoError(t, err)
	assert.Same(t, mockSource, src)

	_, err = src.Load(context.Background())
	require.NoError(t, err)
	mockProvider.AssertExpectations(t)
	mockSource.AssertExpectations(t)
}

func TestNewSource_Errors(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider := &mocks.MockSourceProvider{}
	r.Register(FileAdapterType, mockProvider)

	expErr := fmt.Errorf("test error")
	mockProvider.On("NewSource", mock.Anything).Return(nil, expErr)

	_, err := r.NewSource("project.json")
	assert.Equal(t, expErr, err)

	_, err = r.NewSource("   ")
	assert.Error(t, err)

	_, err = r.NewSource("s3://bucket/project.json")
	assert.ErrorContains(t, err, `no source provider for "s3"`)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"project.json":             FileAdapterType,
		"/abs/dir":                 FileAdapterType,
		"file:///tmp/project.yaml": FileAdapterType,
		"http://host/p.json":       HTTPAdapterType,
		"HTTPS://host/p.json":      HTTPAdapterType,
		"s3://bucket/key":          "s3",
		"://odd":                   FileAdapterType,
	}
	for location, want := range tests {
		assert.Equal(t, want, KindOf(location), location)
	}
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	provider, err := r.GetProvider(FileAdapterType)
	require.NoError(t, err)
	assert.IsType(t, &FileProvider{}, provider)

	provider, err = r.GetProvider(HTTPAdapterType)
	require.NoError(t, err)
	assert.IsType(t, &HTTPProvider{}, provider)

	only := NewRegistry()
	RegisterBuiltins(only, HTTPAdapterType)
	_, err = only.GetProvider(FileAdapterType)
	assert.Error(t, err)
}
