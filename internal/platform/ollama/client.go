package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/generation"
)

// tagsTimeout bounds the model listing so /api/config stays responsive
// when Ollama is down.
const tagsTimeout = 2 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the server root, e.g. http://127.0.0.1:11434. A trailing
	// /api/chat is tolerated.
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   generation.RetryConfig
}

// Client talks to an Ollama server.
type Client struct {
	cfg    Config
	http   *http.Client
	tags   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, generation.ErrNilLogger
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: ollama URL cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: ollama model cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	cfg.BaseURL = baseURL(cfg.BaseURL)

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		tags:   &http.Client{Timeout: tagsTimeout},
		logger: logger.With("component", "ollama_client"),
	}, nil
}

// baseURL strips any path below /api so both the server root and the full
// chat endpoint are accepted.
func baseURL(raw string) string {
	raw = strings.TrimSuffix(raw, "/")
	if i := strings.Index(raw, "/api"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSuffix(raw, "/")
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []generation.Message `json:"messages"`
	Stream   bool                 `json:"stream"`
	Format   string               `json:"format,omitempty"`
}

type chatResponse struct {
	Message generation.Message `json:"message"`
	Error   string             `json:"error"`
}

// Chat implements generation.ChatClient.
func (c *Client) Chat(ctx context.Context, messages []generation.Message, opts generation.ChatOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}
	req := chatRequest{Model: model, Messages: messages}
	if opts.JSON {
		req.Format = "json"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	c.logger.DebugContext(ctx, "calling ollama", "model", model, "messages", len(messages))

	var text string
	err = generation.WithRetry(ctx, c.cfg.Retry, c.logger, func(int) error {
		var callErr error
		text, callErr = c.send(ctx, body)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", generation.Transient(fmt.Errorf(
			"%w: could not reach local Ollama server at %s: %w", domain.ErrProviderUnavailable, c.cfg.BaseURL, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", generation.Transient(fmt.Errorf("read ollama response: %w", err))
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(data, &parsed)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Ollama answers 404 for models that have not been pulled.
		return "", fmt.Errorf("%w: ollama: %s", domain.ErrProviderUnavailable, errorText(parsed.Error, data))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", generation.Transient(fmt.Errorf("%w: ollama status %d: %s",
			domain.ErrProviderUnavailable, resp.StatusCode, errorText(parsed.Error, data)))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: ollama status %d: %s",
			generation.ErrGenerationFailed, resp.StatusCode, errorText(parsed.Error, data))
	case decodeErr != nil:
		return "", fmt.Errorf("%w: decode ollama response: %v", generation.ErrInvalidResponse, decodeErr)
	}
	return parsed.Message.Content, nil
}

func errorText(msg string, body []byte) string {
	if msg != "" {
		return msg
	}
	return strings.TrimSpace(string(body))
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the names of the models pulled on the server.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build ollama tags request: %w", err)
	}
	resp, err := c.tags.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list ollama models: %w", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama tags status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode ollama tags: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

var _ generation.ChatClient = (*Client)(nil)
