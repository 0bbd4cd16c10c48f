package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/studycast/internal/generation"
)

// MockChatClient implements generation.ChatClient for testing
type MockChatClient struct {
	// ChatFn allows test cases to mock the Chat behavior
	ChatFn func(ctx context.Context, messages []generation.Message, opts generation.ChatOptions) (string, error)

	// Default response values
	Reply string
	Err   error

	// Call tracking for verification
	ChatCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Chat was called
		Count int

		// Messages contains the conversation passed to each Chat call
		Messages [][]generation.Message

		// Options contains the options passed to each Chat call
		Options []generation.ChatOptions
	}
}

// Chat implements the generation.ChatClient interface
func (m *MockChatClient) Chat(
	ctx context.Context,
	messages []generation.Message,
	opts generation.ChatOptions,
) (string, error) {
	m.ChatCalls.mu.Lock()
	m.ChatCalls.Count++
	m.ChatCalls.Messages = append(m.ChatCalls.Messages, messages)
	m.ChatCalls.Options = append(m.ChatCalls.Options, opts)
	m.ChatCalls.mu.Unlock()

	if m.ChatFn != nil {
		return m.ChatFn(ctx, messages, opts)
	}
	return m.Reply, m.Err
}

// CallCount returns how many times Chat was called
func (m *MockChatClient) CallCount() int {
	m.ChatCalls.mu.Lock()
	defer m.ChatCalls.mu.Unlock()
	return m.ChatCalls.Count
}

// LastUserPrompt returns the user message of the most recent call, or "".
func (m *MockChatClient) LastUserPrompt() string {
	m.ChatCalls.mu.Lock()
	defer m.ChatCalls.mu.Unlock()
	if len(m.ChatCalls.Messages) == 0 {
		return ""
	}
	last := m.ChatCalls.Messages[len(m.ChatCalls.Messages)-1]
	for i := len(last) - 1; i >= 0; i-- {
		if last[i].Role == generation.RoleUser {
			return last[i].Content
		}
	}
	return ""
}

// NewMockChatClientWithReply creates a MockChatClient that always returns reply
func NewMockChatClientWithReply(reply string) *MockChatClient {
	return &MockChatClient{Reply: reply}
}

// NewMockChatClientWithError creates a MockChatClient that always returns err
func NewMockChatClientWithError(err error) *MockChatClient {
	return &MockChatClient{Err: err}
}

// Reset resets the call tracking state
func (m *MockChatClient) Reset() {
	m.ChatCalls.mu.Lock()
	defer m.ChatCalls.mu.Unlock()

	m.ChatCalls.Count = 0
	m.ChatCalls.Messages = nil
	m.ChatCalls.Options = nil
}

var _ generation.ChatClient = (*MockChatClient)(nil)
