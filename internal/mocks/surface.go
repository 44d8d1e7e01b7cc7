package mocks

import (
	"context"
	"time"

	"github.com/brettbedarf/previewfs/preview"
	"github.com/stretchr/testify/mock"
)

// MockSurface implements preview.Surface for testing across packages
type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) Render(ctx context.Context, doc *preview.Document) error {
	args := m.Called(ctx, doc)

	// Handle function return types (for tests inspecting the document)
	if fn, ok := args.Get(0).(func(context.Context, *preview.Document) error); ok {
		return fn(ctx, doc)
	}
	return args.Error(0)
}

// MockObserver implements preview.Observer
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) OnBuild(doc *preview.Document, took time.Duration) {
	m.Called(doc, took)
}
