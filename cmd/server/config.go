package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/studycast/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logConfigSummary records the effective settings without any secret values.
func logConfigSummary(logger *slog.Logger, cfg *config.Config) {
	logger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider,
		"tts_provider", cfg.TTS.Provider,
		"static_dir", cfg.Server.StaticDir)

	logger.Debug("Provider credentials",
		"openai_key_present", cfg.LLM.OpenAIAPIKey != "",
		"gemini_key_present", cfg.LLM.GeminiAPIKey != "",
		"auth_enabled", cfg.Auth.Enabled(),
		"s3_publishing", cfg.Audio.S3Bucket != "")
}
