package manifest

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockManifest is a mock implementation of the Manifest interface for testing
type MockManifest struct {
	mock.Mock
}

func (m *MockManifest) Claim(ctx context.Context, name, source string) (string, error) {
	args := m.Called(ctx, name, source)
	return args.String(0), args.Error(1)
}

func (m *MockManifest) Close() error {
	args := m.Called()
	return args.Error(0)
}
