package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by Client.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Retry   generation.RetryConfig
}

// Client implements generation.ChatClient using the Gemini API.
type Client struct {
	models contentGenerator
	model  string
	retry  generation.RetryConfig
	logger *slog.Logger
}

// NewClient creates a new Client.
//
// Parameters:
//   - ctx: Context for client construction
//   - cfg: API key, default model and retry settings
//   - logger: A structured logger for operation logging
//
// Returns:
//   - A Client. Without an API key the client is still returned but every
//     Chat call fails with ErrMissingAPIKey.
//   - An error if the configuration is invalid or the SDK client cannot be built
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, generation.ErrNilLogger
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: gemini model cannot be empty", generation.ErrInvalidConfig)
	}

	c := &Client{
		model:  cfg.Model,
		retry:  cfg.Retry,
		logger: logger.With("component", "gemini_client"),
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	c.models = client.Models
	return c, nil
}

// newClientWithGenerator wires a prepared content generator, used by tests.
func newClientWithGenerator(models contentGenerator, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		models: models,
		model:  cfg.Model,
		retry:  cfg.Retry,
		logger: logger.With("component", "gemini_client"),
	}
}

// Chat implements generation.ChatClient.
func (c *Client) Chat(ctx context.Context, messages []generation.Message, opts generation.ChatOptions) (string, error) {
	if c.models == nil {
		return "", ErrMissingAPIKey
	}

	model := opts.Model
	if model == "" {
		model = c.model
	}
	contents, config := buildRequest(messages, opts.JSON)

	var text string
	err := generation.WithRetry(ctx, c.retry, c.logger, func(attempt int) error {
		c.logger.DebugContext(ctx, "making Gemini API call", "attempt", attempt+1, "model", model)

		resp, err := c.models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			return classifyError(ctx, err)
		}
		text, err = responseText(resp)
		return err
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini API call failed", "model", model, "error", err)
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// buildRequest splits system messages into the system instruction and maps
// the remaining turns to genai roles.
func buildRequest(messages []generation.Message, jsonOutput bool) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if jsonOutput {
		config.ResponseMIMEType = "application/json"
	}

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case generation.RoleSystem:
			system = append(system, m.Content)
		case generation.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}
	}
	return contents, config
}

// responseText validates the response and concatenates the text parts of
// the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// classifyError maps SDK errors onto retryable and permanent failures.
func classifyError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return generation.Transient(fmt.Errorf("%w: gemini request failed: %w", domain.ErrProviderUnavailable, err))
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: gemini rejected credentials: %w", domain.ErrProviderUnavailable, err)
	case code == http.StatusTooManyRequests || code >= 500:
		return generation.Transient(fmt.Errorf("%w: gemini status %d: %w", domain.ErrProviderUnavailable, code, err))
	default:
		return fmt.Errorf("%w: gemini status %d: %w", generation.ErrGenerationFailed, code, err)
	}
}

var _ generation.ChatClient = (*Client)(nil)
