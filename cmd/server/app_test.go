package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/studycast/internal/config"
	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "router-test-secret-that-is-long-enough"

// testConfig mirrors the loader defaults with every path under t.TempDir and
// Ollama pointed at ollamaURL.
func testConfig(t *testing.T, ollamaURL string) *config.Config {
	t.Helper()
	static := t.TempDir()

	return &config.Config{
		Server: config.ServerConfig{
			Port:                   8000,
			LogLevel:               "debug",
			StaticDir:              static,
			ShutdownTimeoutSeconds: 1,
		},
		LLM: config.LLMConfig{
			Provider:              "openai",
			OpenAIModel:           "gpt-4o-mini",
			OpenAIBaseURL:         "http://127.0.0.1:1/v1",
			OllamaURL:             ollamaURL,
			OllamaModel:           "llama3",
			GeminiModel:           "gemini-2.0-flash",
			RequestTimeoutSeconds: 5,
		},
		Generation: config.GenerationConfig{
			SummaryBullets:         5,
			FlashcardLimit:         10,
			DefaultDurationMinutes: 5,
			DefaultStyle:           "dynamic_duo",
		},
		TTS: config.TTSConfig{
			Provider:    "none",
			Model:       "tts-1",
			Voice:       "alloy",
			VoiceAlt:    "echo",
			MaxChars:    4000,
			Concurrency: 1,
		},
		Piper: config.PiperConfig{Command: "piper", MaxChars: 1200},
		Audio: config.AudioConfig{
			Dir:           filepath.Join(static, "audio"),
			URLPrefix:     "/static/audio",
			FFmpegCommand: "ffmpeg",
		},
		Tasks: config.TasksConfig{RetentionMinutes: 60, SweepIntervalSeconds: 300},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*application, http.Handler) {
	t.Helper()
	log, _ := logger.NewTestLogger()

	app, err := newApplication(context.Background(), cfg, log)
	require.NoError(t, err)

	router, err := app.setupRouter()
	require.NoError(t, err)
	return app, router
}

func fakeOllama(t *testing.T, models ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Models []map[string]string `json:"models"`
		}
		for _, m := range models {
			body.Models = append(body.Models, map[string]string{"name": m})
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication_CreatesAudioDir(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	app, _ := newTestApp(t, cfg)

	info, err := os.Stat(cfg.Audio.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Nil(t, app.jwtService)
	assert.Equal(t, []string{"gemini", "ollama", "openai"}, app.chat.Providers())
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	_, router := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))
	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Config(t *testing.T) {
	t.Parallel()

	ollama := fakeOllama(t, "llama3:latest", "mistral:7b")
	_, router := newTestApp(t, testConfig(t, ollama.URL))

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		LLM struct {
			DefaultProvider    string   `json:"default_provider"`
			Providers          []string `json:"providers"`
			DefaultOllamaModel string   `json:"default_ollama_model"`
			OllamaModels       []string `json:"ollama_models"`
		} `json:"llm"`
		TTS struct {
			DefaultProvider string   `json:"default_provider"`
			Providers       []string `json:"providers"`
			OpenAIVoice     string   `json:"openai_voice"`
		} `json:"tts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "openai", body.LLM.DefaultProvider)
	assert.Equal(t, []string{"gemini", "ollama", "openai"}, body.LLM.Providers)
	assert.Equal(t, "llama3", body.LLM.DefaultOllamaModel)
	assert.Equal(t, []string{"llama3:latest", "mistral:7b"}, body.LLM.OllamaModels)
	assert.Equal(t, "none", body.TTS.DefaultProvider)
	assert.Equal(t, []string{"openai", "local", "none"}, body.TTS.Providers)
	assert.Equal(t, "alloy", body.TTS.OpenAIVoice)
}

func TestRouter_Tasks(t *testing.T) {
	t.Parallel()

	app, router := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/task_status/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	app.registry.Create("t-1")
	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/task_status/t-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stage":"queued"`)

	rec = do(t, router, httptest.NewRequest(http.MethodPost, "/api/tasks/t-1/cancel", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.True(t, app.registry.IsCancelled("t-1"))
}

func TestRouter_ProcessRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	app, router := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))

	form := url.Values{"text": {"   "}, "task_id": {"empty-1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(t, router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	state, ok := app.registry.Get("empty-1")
	require.True(t, ok)
	assert.Equal(t, domain.StageError, state.Stage)
}

func TestRouter_Auth(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Auth = config.AuthConfig{JWTSecret: testJWTSecret, TokenLifetimeMinutes: 5}
	app, router := newTestApp(t, cfg)
	require.NotNil(t, app.jwtService)

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := app.jwtService.GenerateToken(context.Background(), "tester")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = do(t, router, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_StaticFiles(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	frontend := filepath.Join(cfg.Server.StaticDir, "frontend")
	require.NoError(t, os.MkdirAll(frontend, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<h1>StudyCast</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(cfg.Audio.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Audio.Dir, "clip.mp3"), []byte("ID3"), 0o644))

	_, router := newTestApp(t, cfg)

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "StudyCast")

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/static/audio/clip.mp3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ID3", rec.Body.String())
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	app, router := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, router) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
