package mocks

import (
	"context"

	"github.com/phrazzld/studycast/internal/audio"
	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/extract"
	"github.com/phrazzld/studycast/internal/generation"
	"github.com/stretchr/testify/mock"
)

// TestifyMockExtractor is a mock of pipeline.Extractor for use with testify/mock
type TestifyMockExtractor struct {
	mock.Mock
}

// Extract is a mock implementation of pipeline.Extractor.Extract
func (m *TestifyMockExtractor) Extract(ctx context.Context, in extract.Input) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// TestifyMockSummarizer is a mock of pipeline.Summarizer for use with testify/mock
type TestifyMockSummarizer struct {
	mock.Mock
}

// Summarize is a mock implementation of pipeline.Summarizer.Summarize
func (m *TestifyMockSummarizer) Summarize(
	ctx context.Context,
	gate generation.Gate,
	text string,
	opts generation.ChatOptions,
) (string, error) {
	args := m.Called(ctx, gate, text, opts)
	return args.String(0), args.Error(1)
}

// TestifyMockFlashcardBuilder is a mock of pipeline.FlashcardBuilder for use with testify/mock
type TestifyMockFlashcardBuilder struct {
	mock.Mock
}

// Build is a mock implementation of pipeline.FlashcardBuilder.Build
func (m *TestifyMockFlashcardBuilder) Build(
	ctx context.Context,
	gate generation.Gate,
	text string,
	opts generation.ChatOptions,
) ([]domain.Flashcard, error) {
	args := m.Called(ctx, gate, text, opts)
	if cards, ok := args.Get(0).([]domain.Flashcard); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

// TestifyMockScriptWriter is a mock of pipeline.ScriptWriter for use with testify/mock
type TestifyMockScriptWriter struct {
	mock.Mock
}

// Write is a mock implementation of pipeline.ScriptWriter.Write
func (m *TestifyMockScriptWriter) Write(
	ctx context.Context,
	gate generation.Gate,
	text string,
	req generation.ScriptRequest,
	opts generation.ChatOptions,
) (string, error) {
	args := m.Called(ctx, gate, text, req, opts)
	return args.String(0), args.Error(1)
}

// TestifyMockAudioRenderer is a mock of pipeline.AudioRenderer for use with testify/mock
type TestifyMockAudioRenderer struct {
	mock.Mock
}

// Render is a mock implementation of pipeline.AudioRenderer.Render
func (m *TestifyMockAudioRenderer) Render(ctx context.Context, gate audio.Checker, script string) (string, error) {
	args := m.Called(ctx, gate, script)
	return args.String(0), args.Error(1)
}
