// Package mocks holds the test doubles shared across packages.
//
// MockChatClient stands in for an LLM provider: it returns a fixed Reply or
// Err (see NewMockChatClientWithReply and NewMockChatClientWithError), or
// defers to ChatFn, and records every call. MockGate cancels after a set
// number of checks. MockJWTService takes function fields for token issue and
// validation. The TestifyMock* types cover the pipeline stages (extractor,
// summarizer, flashcard builder, script writer and audio renderer) for tests
// that script expectations with testify/mock.
package mocks
