package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/studycast/internal/audio"
	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/extract"
	"github.com/phrazzld/studycast/internal/generation"
	"github.com/phrazzld/studycast/internal/platform/logger"
	"github.com/phrazzld/studycast/internal/task"
)

// TTSNone disables audio synthesis for a request.
const TTSNone = "none"

// Extractor turns the submitted input into clean text.
type Extractor interface {
	Extract(ctx context.Context, in extract.Input) (string, error)
}

// Summarizer produces the bullet-point summary.
type Summarizer interface {
	Summarize(ctx context.Context, gate generation.Gate, text string, opts generation.ChatOptions) (string, error)
}

// FlashcardBuilder produces question and answer cards.
type FlashcardBuilder interface {
	Build(ctx context.Context, gate generation.Gate, text string, opts generation.ChatOptions) ([]domain.Flashcard, error)
}

// ScriptWriter produces the two-speaker podcast script.
type ScriptWriter interface {
	Write(
		ctx context.Context,
		gate generation.Gate,
		text string,
		req generation.ScriptRequest,
		opts generation.ChatOptions,
	) (string, error)
}

// AudioRenderer turns a script into a reference to the finished audio file.
// audio.Synthesizer satisfies it.
type AudioRenderer interface {
	Render(ctx context.Context, gate audio.Checker, script string) (string, error)
}

// Request is one pipeline run as submitted by a client.
type Request struct {
	// TaskID identifies the run in the registry. The caller keeps it unique.
	TaskID string
	Input  extract.Input

	DurationMinutes int
	Style           string

	// LLMProvider and LLMModel override the configured defaults when set.
	LLMProvider string
	LLMModel    string
	// TTSProvider selects the audio renderer; "none" skips audio.
	TTSProvider string
}

// Dependencies are the collaborators an Orchestrator needs.
type Dependencies struct {
	Registry   *task.Registry
	Extractor  Extractor
	Summarizer Summarizer
	Flashcards FlashcardBuilder
	Scripts    ScriptWriter
	// Renderers maps a TTS provider name ("openai", "local") to its renderer.
	Renderers map[string]AudioRenderer
	// DefaultTTS is used when a request does not name a TTS provider.
	DefaultTTS string
	Logger     *slog.Logger
}

// Orchestrator runs pipelines. It is safe for concurrent use; every run is
// independent apart from the shared registry.
type Orchestrator struct {
	registry   *task.Registry
	extractor  Extractor
	summarizer Summarizer
	flashcards FlashcardBuilder
	scripts    ScriptWriter
	renderers  map[string]AudioRenderer
	defaultTTS string
	logger     *slog.Logger
}

// New validates deps and creates an Orchestrator.
func New(deps Dependencies) (*Orchestrator, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("logger cannot be nil")
	case deps.Registry == nil:
		return nil, errors.New("task registry cannot be nil")
	case deps.Extractor == nil:
		return nil, errors.New("extractor cannot be nil")
	case deps.Summarizer == nil:
		return nil, errors.New("summarizer cannot be nil")
	case deps.Flashcards == nil:
		return nil, errors.New("flashcard builder cannot be nil")
	case deps.Scripts == nil:
		return nil, errors.New("script writer cannot be nil")
	}

	renderers := make(map[string]AudioRenderer, len(deps.Renderers))
	for name, r := range deps.Renderers {
		if r != nil {
			renderers[strings.ToLower(name)] = r
		}
	}

	return &Orchestrator{
		registry:   deps.Registry,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		flashcards: deps.Flashcards,
		scripts:    deps.Scripts,
		renderers:  renderers,
		defaultTTS: strings.ToLower(deps.DefaultTTS),
		logger:     deps.Logger.With("component", "pipeline"),
	}, nil
}

// Run registers req.TaskID and executes every stage in order. On success the
// task ends in StageDone. On failure the task ends in StageCancelled or
// StageError and the returned error matches exactly one of
// domain.ErrCancelled, domain.ErrValidation, domain.ErrProviderUnavailable or
// domain.ErrInternal.
func (o *Orchestrator) Run(ctx context.Context, req Request) (domain.PipelineResult, error) {
	ctx = logger.WithTaskID(ctx, req.TaskID)
	start := time.Now()

	o.registry.Create(req.TaskID)
	gate := task.NewGate(o.registry, req.TaskID)

	o.logger.InfoContext(ctx, "pipeline started",
		"llm_provider", req.LLMProvider,
		"llm_model", req.LLMModel,
		"tts_provider", req.TTSProvider)

	result, err := o.run(ctx, gate, req)
	if err != nil {
		return domain.PipelineResult{TaskID: req.TaskID}, o.fail(ctx, req.TaskID, err)
	}

	o.setStage(ctx, req.TaskID, domain.StageDone)
	o.logger.InfoContext(ctx, "pipeline finished",
		"duration_ms", time.Since(start).Milliseconds(),
		"flashcards", len(result.Flashcards),
		"has_audio", result.AudioURL != "")
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, gate *task.Gate, req Request) (domain.PipelineResult, error) {
	result := domain.PipelineResult{TaskID: req.TaskID}
	chat := generation.ChatOptions{Provider: req.LLMProvider, Model: req.LLMModel}

	if err := o.enter(ctx, gate, req.TaskID, domain.StageExtracting); err != nil {
		return result, err
	}
	text, err := o.extractor.Extract(ctx, req.Input)
	if err != nil {
		return result, fmt.Errorf("extract: %w", err)
	}

	if err := o.enter(ctx, gate, req.TaskID, domain.StageSummary); err != nil {
		return result, err
	}
	if result.Summary, err = o.summarizer.Summarize(ctx, gate, text, chat); err != nil {
		return result, fmt.Errorf("summary: %w", err)
	}

	if err := o.enter(ctx, gate, req.TaskID, domain.StageFlashcards); err != nil {
		return result, err
	}
	if result.Flashcards, err = o.flashcards.Build(ctx, gate, text, chat); err != nil {
		return result, fmt.Errorf("flashcards: %w", err)
	}

	if err := o.enter(ctx, gate, req.TaskID, domain.StageScript); err != nil {
		return result, err
	}
	scriptReq := generation.ScriptRequest{DurationMinutes: req.DurationMinutes, Style: req.Style}
	if result.Script, err = o.scripts.Write(ctx, gate, text, scriptReq, chat); err != nil {
		return result, fmt.Errorf("script: %w", err)
	}

	if err := o.enter(ctx, gate, req.TaskID, domain.StageAudio); err != nil {
		return result, err
	}
	if result.AudioURL, err = o.renderAudio(ctx, gate, req.TTSProvider, result.Script); err != nil {
		return result, fmt.Errorf("audio: %w", err)
	}

	return result, nil
}

// enter polls the gate and then records stage.
func (o *Orchestrator) enter(ctx context.Context, gate *task.Gate, taskID string, stage domain.Stage) error {
	if err := gate.Check(ctx); err != nil {
		return err
	}
	o.setStage(ctx, taskID, stage)
	o.logger.DebugContext(ctx, "stage started", "stage", string(stage))
	return nil
}

// setStage records stage. A rejected transition usually means the id was
// reused by a newer submission. The two runs then share one entry, so a
// terminal stage written here lands on the newer task.
func (o *Orchestrator) setStage(ctx context.Context, taskID string, stage domain.Stage) {
	if err := o.registry.SetStage(ctx, taskID, stage); err != nil {
		o.logger.WarnContext(ctx, "stage not recorded", "stage", string(stage), "error", err)
	}
}

// renderAudio picks the renderer for provider. "none" and unknown providers
// produce no audio rather than failing the run.
func (o *Orchestrator) renderAudio(ctx context.Context, gate *task.Gate, provider, script string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = o.defaultTTS
	}
	if provider == TTSNone {
		return "", nil
	}

	renderer, ok := o.renderers[provider]
	if !ok {
		o.logger.WarnContext(ctx, "unsupported TTS provider, skipping audio", "tts_provider", provider)
		return "", nil
	}
	return renderer.Render(ctx, gate, script)
}

// fail moves the task to its terminal stage and returns err classified
// against the domain taxonomy.
func (o *Orchestrator) fail(ctx context.Context, taskID string, err error) error {
	classified := Classify(err)
	// The caller's context may already be done; the terminal stage is still recorded.
	bg := context.WithoutCancel(ctx)

	switch {
	case errors.Is(classified, domain.ErrCancelled):
		o.setStage(bg, taskID, domain.StageCancelled)
		o.logger.InfoContext(ctx, "pipeline cancelled", "reason", err.Error())
	case errors.Is(classified, domain.ErrValidation):
		o.setStage(bg, taskID, domain.StageError)
		o.logger.InfoContext(ctx, "pipeline rejected input", "error", err)
	case errors.Is(classified, domain.ErrProviderUnavailable):
		o.setStage(bg, taskID, domain.StageError)
		o.logger.WarnContext(ctx, "pipeline provider unavailable", "error", err)
	default:
		o.setStage(bg, taskID, domain.StageError)
		o.logger.ErrorContext(ctx, "pipeline failed", "error", err)
	}
	return classified
}

// Classify wraps err so it matches exactly one of the domain outcome errors.
// Context cancellation and deadline errors count as cancellation; anything
// unrecognised becomes domain.ErrInternal.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrCancelled):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrProviderUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
}
