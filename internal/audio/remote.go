package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultSpeechBaseURL = "https://api.openai.com/v1"
	defaultRemoteChars   = 4000
)

// RemoteConfig configures the hosted speech backend.
type RemoteConfig struct {
	APIKey string
	// BaseURL is the API root; "/audio/speech" is appended.
	BaseURL string
	Model   string
	// MaxChars is the per-segment character budget before truncation.
	MaxChars   int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// RemoteBackend calls an OpenAI-compatible /audio/speech endpoint per segment.
type RemoteBackend struct {
	config RemoteConfig
	client *http.Client
	logger *slog.Logger
}

// NewRemoteBackend creates a RemoteBackend. A missing API key is not an error
// here; it surfaces as ErrInvalidCredentials on the first synthesis.
func NewRemoteBackend(cfg RemoteConfig, logger *slog.Logger) (*RemoteBackend, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSpeechBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = defaultRemoteChars
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &RemoteBackend{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "tts.remote"),
	}, nil
}

// Name implements Backend.
func (r *RemoteBackend) Name() string { return "openai" }

// Extension implements Backend.
func (r *RemoteBackend) Extension() string { return "mp3" }

// Preflight fails fast when no API key is configured.
func (r *RemoteBackend) Preflight(_ context.Context) error {
	if strings.TrimSpace(r.config.APIKey) == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// Synthesize implements Backend.
func (r *RemoteBackend) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if err := r.Preflight(ctx); err != nil {
		return nil, err
	}

	input := strings.TrimSpace(Truncate(text, r.config.MaxChars))
	if input == "" {
		input = "."
	}

	body, err := json.Marshal(map[string]string{
		"model": r.config.Model,
		"voice": voice,
		"input": input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", ErrSynthesis, err)
	}

	start := time.Now()
	audio, err := r.doWithRetry(ctx, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, apiErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	r.logger.Debug("synthesized segment",
		"chars", len(input),
		"bytes", len(audio),
		"voice", voice,
		"latency_ms", time.Since(start).Milliseconds())
	return audio, nil
}

// doWithRetry posts the payload, retrying network failures, 429 and 5xx.
func (r *RemoteBackend) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	url := strings.TrimRight(r.config.BaseURL, "/") + "/audio/speech"
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+r.config.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := parseAPIError(resp)
			resp.Body.Close()
			if !apiErr.IsRetryable() {
				return nil, apiErr
			}
			lastErr = apiErr
			r.logger.Warn("retrying speech request",
				"attempt", attempt+1,
				"status", apiErr.StatusCode)
			continue
		}

		audio, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if len(audio) == 0 {
			return nil, errors.New("empty audio response")
		}
		return audio, nil
	}

	return nil, lastErr
}

// parseAPIError reads an error response, preferring the JSON error envelope.
func parseAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Code = envelope.Error.Code
	}
	return apiErr
}

var (
	_ Backend     = (*RemoteBackend)(nil)
	_ Preflighter = (*RemoteBackend)(nil)
)
