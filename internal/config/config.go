package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	TTS        TTSConfig        `mapstructure:"tts"        validate:"required"`
	Piper      PiperConfig      `mapstructure:"piper"`
	Audio      AudioConfig      `mapstructure:"audio"      validate:"required"`
	Tasks      TasksConfig      `mapstructure:"tasks"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// StaticDir is served under /static and holds the frontend and the audio directory.
	StaticDir              string `mapstructure:"static_dir"               validate:"required"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// AuthConfig contains the optional bearer-token protection for /api routes.
// When JWTSecret is empty the API is open, matching a single-user local setup.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
}

// Enabled reports whether API authentication is switched on.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=openai ollama gemini"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"    validate:"required"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"required,url"`

	OllamaURL   string `mapstructure:"ollama_url"   validate:"required,url"`
	OllamaModel string `mapstructure:"ollama_model" validate:"required"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model" validate:"required"`

	MaxRetries            int `mapstructure:"max_retries"             validate:"gte=0,lte=10"`
	RetryDelaySeconds     int `mapstructure:"retry_delay_seconds"     validate:"gte=0,lte=60"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// GenerationConfig tunes the summary, flashcard and script prompts.
type GenerationConfig struct {
	SummaryBullets         int    `mapstructure:"summary_bullets"          validate:"gt=0,lte=50"`
	FlashcardLimit         int    `mapstructure:"flashcard_limit"          validate:"gt=0,lte=100"`
	DefaultDurationMinutes int    `mapstructure:"default_duration_minutes" validate:"gt=0,lte=120"`
	DefaultStyle           string `mapstructure:"default_style"            validate:"required"`
}

// TTSConfig selects and configures the synthesis backend.
type TTSConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=openai local none"`
	Model    string `mapstructure:"model"    validate:"required"`
	// Voice is the primary voice, used for speaker A and narration.
	Voice string `mapstructure:"voice" validate:"required"`
	// VoiceAlt is used for speaker B; falls back to Voice when empty.
	VoiceAlt string `mapstructure:"voice_alt"`
	MaxChars int    `mapstructure:"max_chars" validate:"gt=0"`
	// FailurePolicy overrides the backend default ("abort" for openai, "skip" for local).
	FailurePolicy string `mapstructure:"failure_policy" validate:"omitempty,oneof=abort skip"`
	// Concurrency is the number of segments synthesized at the same time.
	Concurrency int `mapstructure:"concurrency" validate:"gt=0,lte=16"`
}

// PiperConfig configures the local piper executable and its two voice models.
type PiperConfig struct {
	Command     string  `mapstructure:"command"`
	ModelA      string  `mapstructure:"model_a"`
	ModelB      string  `mapstructure:"model_b"`
	MaxChars    int     `mapstructure:"max_chars"    validate:"gte=0"`
	LengthScale float64 `mapstructure:"length_scale" validate:"gte=0"`
	NoiseScale  float64 `mapstructure:"noise_scale"  validate:"gte=0"`
	NoiseW      float64 `mapstructure:"noise_w"      validate:"gte=0"`
}

// AudioConfig controls where assembled audio lands and how it is referenced.
type AudioConfig struct {
	Dir           string `mapstructure:"dir"            validate:"required"`
	URLPrefix     string `mapstructure:"url_prefix"     validate:"required"`
	FFmpegCommand string `mapstructure:"ffmpeg_command" validate:"required"`
	// S3Bucket, when set, publishes final artifacts to S3 instead of serving them locally.
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Region string `mapstructure:"s3_region" validate:"required_with=S3Bucket"`
	S3Prefix string `mapstructure:"s3_prefix"`
}

// TasksConfig controls how long finished task states are kept in memory.
type TasksConfig struct {
	RetentionMinutes     int `mapstructure:"retention_minutes"      validate:"gt=0"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"gt=0"`
}
