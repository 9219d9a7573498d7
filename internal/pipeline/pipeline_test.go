package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"docchat/internal/files"
	"docchat/internal/llm"
)

func newTestPipeline(source FileSource, dispatcher Dispatcher) *Pipeline {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, source, dispatcher, 4000)
}

func TestHandleQueryValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty path", Request{Path: "", Query: "summarize"}},
		{"whitespace path", Request{Path: "   ", Query: "summarize"}},
		{"empty query", Request{Path: "notes.txt", Query: ""}},
		{"whitespace query", Request{Path: "notes.txt", Query: " \t "}},
		{"unknown model", Request{Path: "notes.txt", Query: "summarize", Model: "gpt-9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockFileSource)
			dispatcher := new(MockDispatcher)
			p := newTestPipeline(source, dispatcher)

			_, err := p.HandleQuery(context.Background(), tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			// Invalid requests never reach the filesystem or a provider.
			source.AssertNotCalled(t, "Sanitize", mock.Anything)
			source.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
			dispatcher.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleQuerySanitizeFailurePropagates(t *testing.T) {
	source := new(MockFileSource)
	source.On("Sanitize", "bad").Return("", files.ErrInvalidPath).Once()
	dispatcher := new(MockDispatcher)
	p := newTestPipeline(source, dispatcher)

	_, err := p.HandleQuery(context.Background(), Request{Path: "bad", Query: "q", Model: llm.ProviderOllama})
	if !errors.Is(err, files.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	source.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	source.AssertExpectations(t)
}

func TestHandleQueryAggregateFailurePropagates(t *testing.T) {
	source := new(MockFileSource)
	source.On("Sanitize", "missing").Return("/root/missing", nil).Once()
	source.On("Aggregate", mock.Anything, "/root/missing").
		Return(nil, errors.New("path not found: /root/missing")).Once()
	dispatcher := new(MockDispatcher)
	p := newTestPipeline(source, dispatcher)

	_, err := p.HandleQuery(context.Background(), Request{Path: "missing", Query: "q", Model: llm.ProviderOllama})
	if err == nil {
		t.Fatal("expected aggregation error")
	}
	// A missing path short-circuits before any provider call.
	dispatcher.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	source.AssertExpectations(t)
}

func TestHandleQueryDefaultsModel(t *testing.T) {
	source := new(MockFileSource)
	source.On("Sanitize", "notes.txt").Return("/root/notes.txt", nil).Once()
	source.On("Aggregate", mock.Anything, "/root/notes.txt").
		Return([]files.Record{{Name: "notes.txt", Kind: files.KindFile, Content: "text"}}, nil).Once()

	dispatcher := new(MockDispatcher)
	dispatcher.On("Query", mock.Anything, llm.ProviderOllama, mock.Anything, mock.Anything).
		Return(llm.ModelResponse{Model: llm.ProviderOllama, Text: "ok"}).Once()

	p := newTestPipeline(source, dispatcher)
	resp, err := p.HandleQuery(context.Background(), Request{Path: "notes.txt", Query: "q"})
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if resp.Model != llm.ProviderOllama {
		t.Errorf("expected default model %q, got %q", llm.ProviderOllama, resp.Model)
	}
	dispatcher.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestHandleQuerySuccess(t *testing.T) {
	source := new(MockFileSource)
	source.On("Sanitize", "note.md").Return("/root/note.md", nil).Once()
	source.On("Aggregate", mock.Anything, "/root/note.md").
		Return([]files.Record{{Name: "note.md", Kind: files.KindFile, Content: "hello world"}}, nil).Once()

	dispatcher := new(MockDispatcher)
	dispatcher.On("Query",
		mock.Anything,
		llm.ProviderOllama,
		mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "hello world") && strings.Contains(prompt, "summarize")
		}),
		"File: note.md\nhello world",
	).Return(llm.ModelResponse{Model: llm.ProviderOllama, Text: "A greeting."}).Once()

	p := newTestPipeline(source, dispatcher)
	resp, err := p.HandleQuery(context.Background(), Request{Path: "note.md", Query: "summarize", Model: llm.ProviderOllama})
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if resp.Text != "A greeting." || resp.Model != llm.ProviderOllama || resp.Error != "" {
		t.Errorf("unexpected response: %+v", resp)
	}
	dispatcher.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestHandleQueryReturnsProviderFailureAsData(t *testing.T) {
	source := new(MockFileSource)
	source.On("Sanitize", "notes.txt").Return("/root/notes.txt", nil).Once()
	source.On("Aggregate", mock.Anything, "/root/notes.txt").
		Return([]files.Record{{Name: "notes.txt", Kind: files.KindFile, Content: "text"}}, nil).Once()

	dispatcher := new(MockDispatcher)
	dispatcher.On("Query", mock.Anything, llm.ProviderTogether, mock.Anything, mock.Anything).
		Return(llm.ModelResponse{Model: llm.ProviderTogether, Error: "api key not configured"}).Once()

	p := newTestPipeline(source, dispatcher)
	resp, err := p.HandleQuery(context.Background(), Request{Path: "notes.txt", Query: "q", Model: llm.ProviderTogether})
	if err != nil {
		t.Fatalf("provider failure must not fail the pipeline, got %v", err)
	}
	if resp.Error == "" || resp.Text != "" {
		t.Errorf("expected failure carried in the response, got %+v", resp)
	}
	dispatcher.AssertExpectations(t)
	source.AssertExpectations(t)
}
