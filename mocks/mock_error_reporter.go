package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockErrorReporter is a mock implementation of port.ErrorReporter.
type MockErrorReporter struct {
	mock.Mock
}

func (m *MockErrorReporter) Report(ctx context.Context, err error, tags map[string]string) {
	m.Called(ctx, err, tags)
}

func (m *MockErrorReporter) Flush() {
	m.Called()
}
