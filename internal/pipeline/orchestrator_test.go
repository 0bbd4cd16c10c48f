package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/events"
	"github.com/phrazzld/studycast/internal/extract"
	"github.com/phrazzld/studycast/internal/generation"
	"github.com/phrazzld/studycast/internal/mocks"
	"github.com/phrazzld/studycast/internal/pipeline"
	"github.com/phrazzld/studycast/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const script = "[00:00] A: Welcome\n[00:04] B: Thanks"

// stageRecorder captures the stages a task enters, in order.
type stageRecorder struct {
	mu     sync.Mutex
	stages []domain.Stage
}

func (r *stageRecorder) HandleEvent(_ context.Context, e *events.StageChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, e.To)
	return nil
}

func (r *stageRecorder) Stages() []domain.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Stage(nil), r.stages...)
}

type fixture struct {
	registry   *task.Registry
	recorder   *stageRecorder
	extractor  *mocks.TestifyMockExtractor
	summarizer *mocks.TestifyMockSummarizer
	flashcards *mocks.TestifyMockFlashcardBuilder
	scripts    *mocks.TestifyMockScriptWriter
	local      *mocks.TestifyMockAudioRenderer
	remote     *mocks.TestifyMockAudioRenderer
	orch       *pipeline.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	emitter := events.NewInMemoryEventEmitter(logger)
	recorder := &stageRecorder{}
	emitter.RegisterHandler(recorder)

	registry, err := task.NewRegistry(logger, task.WithEmitter(emitter))
	require.NoError(t, err)

	f := &fixture{
		registry:   registry,
		recorder:   recorder,
		extractor:  &mocks.TestifyMockExtractor{},
		summarizer: &mocks.TestifyMockSummarizer{},
		flashcards: &mocks.TestifyMockFlashcardBuilder{},
		scripts:    &mocks.TestifyMockScriptWriter{},
		local:      &mocks.TestifyMockAudioRenderer{},
		remote:     &mocks.TestifyMockAudioRenderer{},
	}
	f.orch, err = pipeline.New(pipeline.Dependencies{
		Registry:   registry,
		Extractor:  f.extractor,
		Summarizer: f.summarizer,
		Flashcards: f.flashcards,
		Scripts:    f.scripts,
		Renderers:  map[string]pipeline.AudioRenderer{"local": f.local, "OpenAI": f.remote},
		DefaultTTS: "local",
		Logger:     logger,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.extractor.AssertExpectations(t)
	f.summarizer.AssertExpectations(t)
	f.flashcards.AssertExpectations(t)
	f.scripts.AssertExpectations(t)
	f.local.AssertExpectations(t)
	f.remote.AssertExpectations(t)
}

func (f *fixture) finalStage(t *testing.T, id string) domain.Stage {
	t.Helper()
	state, ok := f.registry.Get(id)
	require.True(t, ok)
	return state.Stage
}

var (
	anyCtx  = mock.Anything
	anyGate = mock.AnythingOfType("*task.Gate")
	cards   = []domain.Flashcard{{Question: "What is ATP?", Answer: "Energy currency"}}
)

func TestRun_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	in := extract.Input{Text: "raw notes"}
	chat := generation.ChatOptions{Provider: "ollama", Model: "llama3"}
	f.extractor.On("Extract", anyCtx, in).Return("clean notes", nil).Once()
	f.summarizer.On("Summarize", anyCtx, anyGate, "clean notes", chat).Return("- bullet", nil).Once()
	f.flashcards.On("Build", anyCtx, anyGate, "clean notes", chat).Return(cards, nil).Once()
	f.scripts.On("Write", anyCtx, anyGate, "clean notes",
		generation.ScriptRequest{DurationMinutes: 7, Style: "serious_prof"}, chat).Return(script, nil).Once()
	f.remote.On("Render", anyCtx, anyGate, script).Return("/static/audio/abc.mp3", nil).Once()

	result, err := f.orch.Run(context.Background(), pipeline.Request{
		TaskID:          "task-1",
		Input:           in,
		DurationMinutes: 7,
		Style:           "serious_prof",
		LLMProvider:     "ollama",
		LLMModel:        "llama3",
		TTSProvider:     "openai",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PipelineResult{
		TaskID:     "task-1",
		Summary:    "- bullet",
		Flashcards: cards,
		Script:     script,
		AudioURL:   "/static/audio/abc.mp3",
	}, result)
	assert.Equal(t, []domain.Stage{
		domain.StageExtracting, domain.StageSummary, domain.StageFlashcards,
		domain.StageScript, domain.StageAudio, domain.StageDone,
	}, f.recorder.Stages())
	assert.Equal(t, domain.StageDone, f.finalStage(t, "task-1"))
	_, pending := f.registry.QueuePosition("task-1")
	assert.False(t, pending, "finished tasks have no queue position")
	f.assertExpectations(t)
}

// happyUntilAudio wires every generation stage to succeed.
func (f *fixture) happyUntilAudio() {
	f.extractor.On("Extract", anyCtx, mock.Anything).Return("text", nil)
	f.summarizer.On("Summarize", anyCtx, anyGate, "text", mock.Anything).Return("summary", nil)
	f.flashcards.On("Build", anyCtx, anyGate, "text", mock.Anything).Return(cards, nil)
	f.scripts.On("Write", anyCtx, anyGate, "text", mock.Anything, mock.Anything).Return(script, nil)
}

func TestRun_TTSSelection(t *testing.T) {
	t.Parallel()

	t.Run("default provider", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.happyUntilAudio()
		f.local.On("Render", anyCtx, anyGate, script).Return("/static/audio/x.wav", nil).Once()

		result, err := f.orch.Run(context.Background(), pipeline.Request{TaskID: "t"})
		require.NoError(t, err)
		assert.Equal(t, "/static/audio/x.wav", result.AudioURL)
		f.assertExpectations(t)
	})

	t.Run("none skips audio", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.happyUntilAudio()

		result, err := f.orch.Run(context.Background(), pipeline.Request{TaskID: "t", TTSProvider: "NONE"})
		require.NoError(t, err)
		assert.Empty(t, result.AudioURL)
		assert.Equal(t, domain.StageDone, f.finalStage(t, "t"))
		f.local.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown provider yields no audio", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.happyUntilAudio()

		result, err := f.orch.Run(context.Background(), pipeline.Request{TaskID: "t", TTSProvider: "elevenlabs"})
		require.NoError(t, err)
		assert.Empty(t, result.AudioURL)
		assert.Equal(t, domain.StageDone, f.finalStage(t, "t"))
	})

	t.Run("empty reference from abort policy still finishes", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.happyUntilAudio()
		f.remote.On("Render", anyCtx, anyGate, script).Return("", nil).Once()

		result, err := f.orch.Run(context.Background(), pipeline.Request{TaskID: "t", TTSProvider: "openai"})
		require.NoError(t, err)
		assert.Empty(t, result.AudioURL)
		assert.Equal(t, domain.StageDone, f.finalStage(t, "t"))
	})
}

func TestRun_CancelledThroughRegistry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.extractor.On("Extract", anyCtx, mock.Anything).Return("text", nil)
	f.summarizer.On("Summarize", anyCtx, anyGate, "text", mock.Anything).
		Run(func(mock.Arguments) { f.registry.Cancel("t-cancel") }).
		Return("summary", nil).Once()

	_, err := f.orch.Run(context.Background(), pipeline.Request{TaskID: "t-cancel"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.NotErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, []domain.Stage{domain.StageExtracting, domain.StageSummary, domain.StageCancelled}, f.recorder.Stages())
	state, _ := f.registry.Get("t-cancel")
	assert.True(t, state.Cancelled)
	f.flashcards.AssertNotCalled(t, "Build", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_CallerDisconnects(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.extractor.On("Extract", anyCtx, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return("text", nil).Once()

	_, err := f.orch.Run(ctx, pipeline.Request{TaskID: "t-gone"})

	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, domain.StageCancelled, f.finalStage(t, "t-gone"))
	f.summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(f *fixture)
		wantIs     error
		wantNotIs  error
		wantStages []domain.Stage
	}{
		{
			name: "no usable content",
			setup: func(f *fixture) {
				f.extractor.On("Extract", anyCtx, mock.Anything).
					Return("", domain.NewValidationError(extract.NoContentMessage))
			},
			wantIs:     domain.ErrValidation,
			wantNotIs:  domain.ErrInternal,
			wantStages: []domain.Stage{domain.StageExtracting, domain.StageError},
		},
		{
			name: "unknown llm provider",
			setup: func(f *fixture) {
				f.extractor.On("Extract", anyCtx, mock.Anything).Return("text", nil)
				f.summarizer.On("Summarize", anyCtx, anyGate, "text", mock.Anything).
					Return("", fmt.Errorf("summarize chunk 0: %w", generation.ErrUnknownProvider))
			},
			wantIs:     domain.ErrProviderUnavailable,
			wantNotIs:  domain.ErrInternal,
			wantStages: []domain.Stage{domain.StageExtracting, domain.StageSummary, domain.StageError},
		},
		{
			name: "unexpected script failure",
			setup: func(f *fixture) {
				f.extractor.On("Extract", anyCtx, mock.Anything).Return("text", nil)
				f.summarizer.On("Summarize", anyCtx, anyGate, "text", mock.Anything).Return("s", nil)
				f.flashcards.On("Build", anyCtx, anyGate, "text", mock.Anything).Return(cards, nil)
				f.scripts.On("Write", anyCtx, anyGate, "text", mock.Anything, mock.Anything).
					Return("", errors.New("template exploded"))
			},
			wantIs: domain.ErrInternal,
			wantStages: []domain.Stage{
				domain.StageExtracting, domain.StageSummary, domain.StageFlashcards,
				domain.StageScript, domain.StageError,
			},
		},
		{
			name: "invalid speech credentials",
			setup: func(f *fixture) {
				f.happyUntilAudio()
				f.local.On("Render", anyCtx, anyGate, script).
					Return("", fmt.Errorf("%w: missing key", domain.ErrProviderUnavailable))
			},
			wantIs:    domain.ErrProviderUnavailable,
			wantNotIs: domain.ErrInternal,
			wantStages: []domain.Stage{
				domain.StageExtracting, domain.StageSummary, domain.StageFlashcards,
				domain.StageScript, domain.StageAudio, domain.StageError,
			},
		},
		{
			name: "collaborator sees context cancellation",
			setup: func(f *fixture) {
				f.extractor.On("Extract", anyCtx, mock.Anything).Return("", context.Canceled)
			},
			wantIs:     domain.ErrCancelled,
			wantNotIs:  domain.ErrInternal,
			wantStages: []domain.Stage{domain.StageExtracting, domain.StageCancelled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.setup(f)

			result, err := f.orch.Run(context.Background(), pipeline.Request{TaskID: "t-fail"})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			if tt.wantNotIs != nil {
				assert.NotErrorIs(t, err, tt.wantNotIs)
			}
			assert.Equal(t, "t-fail", result.TaskID)
			assert.Equal(t, tt.wantStages, f.recorder.Stages())
		})
	}
}

func TestRun_ConcurrentTasksAreIndependent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.happyUntilAudio()
	f.local.On("Render", anyCtx, anyGate, script).Return("/static/audio/a.wav", nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.Run(context.Background(), pipeline.Request{TaskID: fmt.Sprintf("task-%d", i)})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err)
		assert.Equal(t, domain.StageDone, f.finalStage(t, fmt.Sprintf("task-%d", i)))
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.NoError(t, pipeline.Classify(nil))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"cancelled", task.ErrCancelled, domain.ErrCancelled},
		{"deadline", context.DeadlineExceeded, domain.ErrCancelled},
		{"validation", domain.NewValidationError("bad"), domain.ErrValidation},
		{"provider", generation.ErrUnknownProvider, domain.ErrProviderUnavailable},
		{"other", io.ErrUnexpectedEOF, domain.ErrInternal},
	}
	for _, tt := range tests {
		got := pipeline.Classify(tt.err)
		assert.ErrorIs(t, got, tt.want, tt.name)
		assert.ErrorIs(t, got, tt.err, tt.name)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := pipeline.New(pipeline.Dependencies{})
	assert.Error(t, err)
}
