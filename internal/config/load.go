package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable read by Load.
const EnvPrefix = "STUDYCAST"

// configFileEnv names an explicit config file path, bypassing the search path.
const configFileEnv = EnvPrefix + "_CONFIG_FILE"

// setDefaults registers every key so environment overrides are picked up by
// Unmarshal even when no config file mentions the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60*24)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.ollama_url", "http://127.0.0.1:11434")
	v.SetDefault("llm.ollama_model", "llama3")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.request_timeout_seconds", 120)

	v.SetDefault("generation.summary_bullets", 5)
	v.SetDefault("generation.flashcard_limit", 10)
	v.SetDefault("generation.default_duration_minutes", 5)
	v.SetDefault("generation.default_style", "dynamic_duo")

	v.SetDefault("tts.provider", "local")
	v.SetDefault("tts.model", "tts-1")
	v.SetDefault("tts.voice", "alloy")
	v.SetDefault("tts.voice_alt", "echo")
	v.SetDefault("tts.max_chars", 4000)
	v.SetDefault("tts.failure_policy", "")
	v.SetDefault("tts.concurrency", 1)

	v.SetDefault("piper.command", "piper")
	v.SetDefault("piper.model_a", "")
	v.SetDefault("piper.model_b", "")
	v.SetDefault("piper.max_chars", 1200)
	v.SetDefault("piper.length_scale", 0.9)
	v.SetDefault("piper.noise_scale", 0.5)
	v.SetDefault("piper.noise_w", 0.7)

	v.SetDefault("audio.dir", "static/audio")
	v.SetDefault("audio.url_prefix", "/static/audio")
	v.SetDefault("audio.ffmpeg_command", "ffmpeg")
	v.SetDefault("audio.s3_bucket", "")
	v.SetDefault("audio.s3_region", "")
	v.SetDefault("audio.s3_prefix", "audio")

	v.SetDefault("tasks.retention_minutes", 60)
	v.SetDefault("tasks.sweep_interval_seconds", 300)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.TTS.VoiceAlt == "" {
		cfg.TTS.VoiceAlt = cfg.TTS.Voice
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
