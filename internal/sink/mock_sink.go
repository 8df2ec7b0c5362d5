package sink

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSink is a mock implementation of Sink using testify/mock.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSink) Write(ctx context.Context, c Chunk) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}
