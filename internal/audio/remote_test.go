package audio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/studycast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T, url string, mutate func(*RemoteConfig)) *RemoteBackend {
	t.Helper()
	cfg := RemoteConfig{
		APIKey:     "sk-test",
		BaseURL:    url + "/v1",
		Model:      "tts-1",
		MaxChars:   20,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := NewRemoteBackend(cfg, testLogger())
	require.NoError(t, err)
	return b
}

func TestRemoteBackend_Synthesize(t *testing.T) {
	t.Parallel()

	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("MP3DATA"))
	}))
	defer server.Close()

	b := newRemote(t, server.URL, nil)
	audio, err := b.Synthesize(context.Background(), "A fairly long segment of text", "echo")

	require.NoError(t, err)
	assert.Equal(t, []byte("MP3DATA"), audio)
	assert.Equal(t, "tts-1", got["model"])
	assert.Equal(t, "echo", got["voice"])
	assert.Equal(t, "A fairly long segmen\n\n[... audio truncated for length ...]", got["input"])
	assert.Equal(t, "mp3", b.Extension())
	assert.Equal(t, "openai", b.Name())
}

func TestRemoteBackend_BlankTextSendsPlaceholder(t *testing.T) {
	t.Parallel()

	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	_, err := newRemote(t, server.URL, nil).Synthesize(context.Background(), "   ", "alloy")
	require.NoError(t, err)
	assert.Equal(t, ".", got["input"])
}

func TestRemoteBackend_Credentials(t *testing.T) {
	t.Parallel()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		b := newRemote(t, "http://127.0.0.1:1", func(c *RemoteConfig) { c.APIKey = "" })

		_, err := b.Synthesize(context.Background(), "hello", "alloy")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
		assert.ErrorIs(t, b.Preflight(context.Background()), ErrInvalidCredentials)
	})

	t.Run("401 response", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","code":"invalid_api_key"}}`))
		}))
		defer server.Close()

		_, err := newRemote(t, server.URL, nil).Synthesize(context.Background(), "hello", "alloy")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.False(t, errors.Is(err, ErrSynthesis))
	})

	t.Run("invalid_api_key code on another status", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","code":"invalid_api_key"}}`))
		}))
		defer server.Close()

		_, err := newRemote(t, server.URL, nil).Synthesize(context.Background(), "hello", "alloy")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRemoteBackend_Errors(t *testing.T) {
	t.Parallel()

	t.Run("client error is not retried", func(t *testing.T) {
		t.Parallel()
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"voice not supported"}}`))
		}))
		defer server.Close()

		_, err := newRemote(t, server.URL, nil).Synthesize(context.Background(), "hello", "nobody")
		assert.ErrorIs(t, err, ErrSynthesis)
		assert.Contains(t, err.Error(), "voice not supported")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("server errors are retried then succeed", func(t *testing.T) {
		t.Parallel()
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		audio, err := newRemote(t, server.URL, nil).Synthesize(context.Background(), "hello", "alloy")
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), audio)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("retries exhausted", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newRemote(t, server.URL, nil).Synthesize(context.Background(), "hello", "alloy")
		assert.ErrorIs(t, err, ErrSynthesis)
	})
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	assert.True(t, (&APIError{StatusCode: 401}).IsUnauthorized())
	assert.True(t, (&APIError{StatusCode: 400, Code: "invalid_api_key"}).IsUnauthorized())
	assert.False(t, (&APIError{StatusCode: 403}).IsUnauthorized())
	assert.True(t, (&APIError{StatusCode: 429}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: 502}).IsRetryable())
	assert.False(t, (&APIError{StatusCode: 400}).IsRetryable())
	assert.Equal(t, "speech API error 400 (bad): nope", (&APIError{StatusCode: 400, Code: "bad", Message: "nope"}).Error())
}
