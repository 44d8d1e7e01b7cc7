package mocks

import (
	"context"

	"github.com/brettbedarf/previewfs"
	"github.com/stretchr/testify/mock"
)

// MockSourceProvider implements previewfs.SourceProvider
type MockSourceProvider struct {
	mock.Mock
}

func (m *MockSourceProvider) NewSource(location string) (previewfs.ProjectSource, error) {
	args := m.Called(location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(previewfs.ProjectSource), args.Error(1)
}

// MockProjectSource implements previewfs.ProjectSource
type MockProjectSource struct {
	mock.Mock
}

func (m *MockProjectSource) Load(ctx context.Context) (previewfs.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(previewfs.Snapshot), args.Error(1)
}

func (m *MockProjectSource) Location() string {
	args := m.Called()
	return args.String(0)
}
