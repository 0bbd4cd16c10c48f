package openai

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

// ErrMissingAPIKey is returned by Chat when no API key is configured.
var ErrMissingAPIKey = fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrProviderUnavailable)

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   generation.RetryConfig
}

// Client talks to the /responses endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client. A missing API key is not an error here so the
// server can start with OpenAI configured but unused; calls fail instead.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, generation.ErrNilLogger
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: openai base URL cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: openai model cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "openai_client"),
	}, nil
}

type textFormat struct {
	Type string `json:"type"`
}

type textOptions struct {
	Format textFormat `json:"format"`
}

type responsesRequest struct {
	Model string               `json:"model"`
	Input []generation.Message `json:"input"`
	Text  *textOptions         `json:"text,omitempty"`
}

type responsesResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Chat implements generation.ChatClient.
func (c *Client) Chat(ctx context.Context, messages []generation.Message, opts generation.ChatOptions) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}
	req := responsesRequest{Model: model, Input: messages}
	if opts.JSON {
		req.Text = &textOptions{Format: textFormat{Type: "json_object"}}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	var text string
	start := time.Now()
	err = generation.WithRetry(ctx, c.cfg.Retry, c.logger, func(int) error {
		var callErr error
		text, callErr = c.send(ctx, body)
		return callErr
	})
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "openai response received",
		"model", model,
		"latency_ms", time.Since(start).Milliseconds(),
		"length", len(text))
	return strings.TrimSpace(text), nil
}

// send performs one request and classifies failures for the retry loop.
func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", generation.Transient(fmt.Errorf("%w: openai request failed: %w", domain.ErrProviderUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", generation.Transient(fmt.Errorf("read openai response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, data)
	}

	var parsed responsesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode openai response: %v", generation.ErrInvalidResponse, err)
	}
	text, ok := outputText(parsed)
	if !ok {
		return "", fmt.Errorf("%w: openai response has no output text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// outputText prefers the aggregated output_text field and falls back to
// concatenating the output_text parts of message items.
func outputText(r responsesResponse) (string, bool) {
	if r.OutputText != "" {
		return r.OutputText, true
	}
	var sb strings.Builder
	found := false
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
				found = true
			}
		}
	}
	return sb.String(), found
}

func classifyStatus(status int, body []byte) error {
	var apiErr errorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: openai rejected credentials (status %d): %s", domain.ErrProviderUnavailable, status, msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return generation.Transient(fmt.Errorf("%w: openai status %d: %s", domain.ErrProviderUnavailable, status, msg))
	default:
		return fmt.Errorf("%w: openai status %d: %s", generation.ErrGenerationFailed, status, msg)
	}
}

var _ generation.ChatClient = (*Client)(nil)
