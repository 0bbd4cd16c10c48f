package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studycast/internal/api"
	"github.com/phrazzld/studycast/internal/audio"
	"github.com/phrazzld/studycast/internal/config"
	"github.com/phrazzld/studycast/internal/events"
	"github.com/phrazzld/studycast/internal/extract"
	"github.com/phrazzld/studycast/internal/generation"
	"github.com/phrazzld/studycast/internal/pipeline"
	"github.com/phrazzld/studycast/internal/platform/gemini"
	"github.com/phrazzld/studycast/internal/platform/ollama"
	"github.com/phrazzld/studycast/internal/platform/openai"
	"github.com/phrazzld/studycast/internal/service/auth"
	"github.com/phrazzld/studycast/internal/task"
)

// Voice identifiers the local backend maps onto its two piper models.
const (
	localVoiceA = "speaker_a"
	localVoiceB = "speaker_b"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Task state
	registry *task.Registry
	sweeper  *task.Sweeper

	// LLM access
	chat   *generation.Router
	ollama *ollama.Client

	orchestrator *pipeline.Orchestrator

	// jwtService is nil when API authentication is disabled.
	jwtService auth.JWTService
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	if cfg.Auth.Enabled() {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	} else {
		logger.Warn("JWT authentication disabled; the API is open to any caller")
	}

	// Stage transitions are published to the structured log.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.registry, err = task.NewRegistry(logger, task.WithEmitter(emitter))
	if err != nil {
		return nil, fmt.Errorf("failed to create task registry: %w", err)
	}

	app.sweeper, err = task.NewSweeper(app.registry, task.SweeperConfig{
		Retention: time.Duration(cfg.Tasks.RetentionMinutes) * time.Minute,
		Interval:  time.Duration(cfg.Tasks.SweepIntervalSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task sweeper: %w", err)
	}

	if err := app.setupLLM(ctx); err != nil {
		return nil, err
	}

	extractor, err := extract.NewExtractor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	summarizer, err := generation.NewSummarizer(app.chat, cfg.Generation.SummaryBullets, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}
	flashcards, err := generation.NewFlashcardBuilder(app.chat, cfg.Generation.FlashcardLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard builder: %w", err)
	}
	scripts, err := generation.NewScriptWriter(
		app.chat,
		cfg.Generation.DefaultDurationMinutes,
		cfg.Generation.DefaultStyle,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create script writer: %w", err)
	}

	renderers, err := app.setupRenderers()
	if err != nil {
		return nil, err
	}

	app.orchestrator, err = pipeline.New(pipeline.Dependencies{
		Registry:   app.registry,
		Extractor:  extractor,
		Summarizer: summarizer,
		Flashcards: flashcards,
		Scripts:    scripts,
		Renderers:  renderers,
		DefaultTTS: cfg.TTS.Provider,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	logger.Info("Application initialized successfully",
		"llm_providers", app.chat.Providers(),
		"tts_renderers", len(renderers))
	return app, nil
}

// setupLLM creates one client per chat provider and the router that picks
// between them per request.
func (app *application) setupLLM(ctx context.Context) error {
	cfg := app.config.LLM
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	retry := generation.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}

	openaiClient, err := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: timeout,
		Retry:   retry,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	app.ollama, err = ollama.NewClient(ollama.Config{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
		Timeout: timeout,
		Retry:   retry,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create Ollama client: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: timeout,
		Retry:   retry,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	app.chat, err = generation.NewRouter(cfg.Provider, map[string]generation.ChatClient{
		"openai": openaiClient,
		"ollama": app.ollama,
		"gemini": geminiClient,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM router: %w", err)
	}
	return nil
}

// setupRenderers builds the hosted and local audio renderers. Both share the
// output directory, the ffmpeg assembler and the publisher.
func (app *application) setupRenderers() (map[string]pipeline.AudioRenderer, error) {
	cfg := app.config

	assembler, err := audio.NewAssembler(cfg.Audio.FFmpegCommand, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio assembler: %w", err)
	}

	publisher, err := app.newPublisher()
	if err != nil {
		return nil, err
	}

	policy, err := audio.ParseFailurePolicy(cfg.TTS.FailurePolicy, "")
	if err != nil {
		return nil, fmt.Errorf("invalid tts.failure_policy: %w", err)
	}

	remote, err := audio.NewRemoteBackend(audio.RemoteConfig{
		APIKey:     cfg.LLM.OpenAIAPIKey,
		BaseURL:    cfg.LLM.OpenAIBaseURL,
		Model:      cfg.TTS.Model,
		MaxChars:   cfg.TTS.MaxChars,
		Timeout:    time.Duration(cfg.LLM.RequestTimeoutSeconds) * time.Second,
		MaxRetries: cfg.LLM.MaxRetries,
		RetryDelay: time.Duration(cfg.LLM.RetryDelaySeconds) * time.Second,
	}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote TTS backend: %w", err)
	}

	local, err := audio.NewLocalBackend(audio.LocalConfig{
		Command:      cfg.Piper.Command,
		ModelA:       cfg.Piper.ModelA,
		ModelB:       cfg.Piper.ModelB,
		PrimaryVoice: localVoiceA,
		MaxChars:     cfg.Piper.MaxChars,
		LengthScale:  cfg.Piper.LengthScale,
		NoiseScale:   cfg.Piper.NoiseScale,
		NoiseW:       cfg.Piper.NoiseW,
	}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create local TTS backend: %w", err)
	}

	remoteSynth, err := audio.NewSynthesizer(remote, assembler, publisher, audio.SynthesizerConfig{
		Voices:      audio.VoiceMap{Primary: cfg.TTS.Voice, Secondary: cfg.TTS.VoiceAlt},
		Policy:      policy,
		Dir:         cfg.Audio.Dir,
		Concurrency: cfg.TTS.Concurrency,
	}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote synthesizer: %w", err)
	}

	localSynth, err := audio.NewSynthesizer(local, assembler, publisher, audio.SynthesizerConfig{
		Voices:      audio.VoiceMap{Primary: localVoiceA, Secondary: localVoiceB},
		Policy:      policy,
		Dir:         cfg.Audio.Dir,
		Concurrency: cfg.TTS.Concurrency,
	}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create local synthesizer: %w", err)
	}

	return map[string]pipeline.AudioRenderer{
		"openai": remoteSynth,
		"local":  localSynth,
	}, nil
}

// newPublisher returns the S3 publisher when a bucket is configured and the
// local static-file publisher otherwise.
func (app *application) newPublisher() (audio.Publisher, error) {
	cfg := app.config.Audio
	if cfg.S3Bucket == "" {
		return audio.NewLocalPublisher(cfg.URLPrefix), nil
	}

	publisher, err := audio.NewS3Publisher(audio.S3Config{
		Bucket: cfg.S3Bucket,
		Region: cfg.S3Region,
		Prefix: cfg.S3Prefix,
	}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 publisher: %w", err)
	}
	app.logger.Info("Publishing audio to S3", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	return publisher, nil
}

// configResponse is the static part of GET /api/config.
func (app *application) configResponse() api.ConfigResponse {
	cfg := app.config
	return api.ConfigResponse{
		LLM: api.LLMInfo{
			DefaultProvider:    app.chat.DefaultProvider(),
			Providers:          app.chat.Providers(),
			OpenAIModel:        cfg.LLM.OpenAIModel,
			GeminiModel:        cfg.LLM.GeminiModel,
			DefaultOllamaModel: cfg.LLM.OllamaModel,
		},
		TTS: api.TTSInfo{
			DefaultProvider: cfg.TTS.Provider,
			Providers:       []string{"openai", "local", pipeline.TTSNone},
			OpenAIModel:     cfg.TTS.Model,
			OpenAIVoice:     cfg.TTS.Voice,
		},
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router, err := app.setupRouter()
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	app.sweeper.Start()
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	app.logger.Info("Application shutdown completed")
}
