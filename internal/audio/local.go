package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const defaultLocalChars = 1200

// LocalConfig configures the piper backend.
type LocalConfig struct {
	// Command is the piper executable name or path.
	Command string
	// ModelA voices the primary speaker; ModelB every other voice.
	ModelA string
	ModelB string
	// PrimaryVoice is the voice identifier that selects ModelA.
	PrimaryVoice string
	MaxChars     int
	LengthScale  float64
	NoiseScale   float64
	NoiseW       float64
	// WorkDir holds piper's scratch output files. Defaults to os.TempDir().
	WorkDir string
}

// LocalBackend runs the piper executable once per segment.
type LocalBackend struct {
	config LocalConfig
	logger *slog.Logger
}

// NewLocalBackend creates a LocalBackend. Model files are checked by
// Preflight, not here, so a missing model only fails renders that need it.
func NewLocalBackend(cfg LocalConfig, logger *slog.Logger) (*LocalBackend, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.Command == "" {
		cfg.Command = "piper"
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = defaultLocalChars
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}

	return &LocalBackend{
		config: cfg,
		logger: logger.With("component", "tts.local"),
	}, nil
}

// Name implements Backend.
func (l *LocalBackend) Name() string { return "local" }

// Extension implements Backend.
func (l *LocalBackend) Extension() string { return "wav" }

// Preflight returns ErrModelNotFound unless both model files exist.
func (l *LocalBackend) Preflight(_ context.Context) error {
	for _, model := range []string{l.config.ModelA, l.config.ModelB} {
		if model == "" {
			return fmt.Errorf("%w: model path not configured", ErrModelNotFound)
		}
		if _, err := os.Stat(model); err != nil {
			return fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
	}
	return nil
}

// ModelFor returns the model file used for voice.
func (l *LocalBackend) ModelFor(voice string) string {
	if voice == l.config.PrimaryVoice {
		return l.config.ModelA
	}
	return l.config.ModelB
}

// Synthesize implements Backend.
func (l *LocalBackend) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	model := l.ModelFor(voice)

	out, err := os.CreateTemp(l.config.WorkDir, "piper-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: create output file: %v", ErrSynthesis, err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	args := []string{
		"--model", model,
		"--output_file", outPath,
		"--length_scale", formatFloat(l.config.LengthScale),
		"--noise_scale", formatFloat(l.config.NoiseScale),
		"--noise_w", formatFloat(l.config.NoiseW),
	}

	cmd := exec.CommandContext(ctx, l.config.Command, args...)
	cmd.Stdin = strings.NewReader(Truncate(text, l.config.MaxChars))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Error("piper failed",
			"error", err,
			"model", model,
			"stderr", strings.TrimSpace(stderr.String()))
		return nil, fmt.Errorf("%w: piper: %v", ErrSynthesis, err)
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrSynthesis, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: no audio output", ErrSynthesis)
	}

	l.logger.Debug("piper synthesis complete",
		"model", model,
		"output_bytes", len(audio))
	return audio, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	_ Backend     = (*LocalBackend)(nil)
	_ Preflighter = (*LocalBackend)(nil)
)
