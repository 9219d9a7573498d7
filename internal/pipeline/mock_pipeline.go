package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docchat/internal/files"
	"docchat/internal/llm"
)

// MockFileSource is a mock implementation of FileSource using testify/mock.
type MockFileSource struct {
	mock.Mock
}

func (m *MockFileSource) Sanitize(input string) (string, error) {
	args := m.Called(input)
	return args.String(0), args.Error(1)
}

func (m *MockFileSource) Aggregate(ctx context.Context, path string) ([]files.Record, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]files.Record), args.Error(1)
}

// MockDispatcher is a mock implementation of Dispatcher using testify/mock.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Query(ctx context.Context, provider, prompt, rawContext string) llm.ModelResponse {
	args := m.Called(ctx, provider, prompt, rawContext)
	return args.Get(0).(llm.ModelResponse)
}
