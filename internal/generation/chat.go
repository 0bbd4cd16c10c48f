package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Role is the author of a chat message.
type Role string

// Chat roles understood by every provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions selects the provider and model for one call.
type ChatOptions struct {
	// Provider names the backend ("openai", "ollama", "gemini"). Empty means
	// the configured default.
	Provider string
	// Model overrides the provider's default model when set.
	Model string
	// JSON asks the provider to constrain output to JSON where supported.
	JSON bool
}

// ChatClient sends a conversation to a language model and returns its reply.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

// Gate is polled before every model call; a non-nil error stops generation.
// task.Gate satisfies it.
type Gate interface {
	Check(ctx context.Context) error
}

// Router dispatches chat calls to the provider named in ChatOptions.
type Router struct {
	clients         map[string]ChatClient
	defaultProvider string
	logger          *slog.Logger
}

// NewRouter creates a Router. defaultProvider is used when a call leaves
// ChatOptions.Provider empty.
func NewRouter(defaultProvider string, clients map[string]ChatClient, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	normalized := make(map[string]ChatClient, len(clients))
	for name, c := range clients {
		if c == nil {
			continue
		}
		normalized[strings.ToLower(name)] = c
	}
	return &Router{
		clients:         normalized,
		defaultProvider: strings.ToLower(defaultProvider),
		logger:          logger.With("component", "llm_router"),
	}, nil
}

// DefaultProvider returns the provider used when none is requested.
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// Providers returns the configured provider names, sorted.
func (r *Router) Providers() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chat implements ChatClient.
func (r *Router) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = r.defaultProvider
	}

	client, ok := r.clients[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	r.logger.DebugContext(ctx, "dispatching chat",
		"provider", provider,
		"model", opts.Model,
		"messages", len(messages))

	opts.Provider = provider
	return client.Chat(ctx, messages, opts)
}

var _ ChatClient = (*Router)(nil)
