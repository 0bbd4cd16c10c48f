package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/phrazzld/studycast/internal/domain"
)

// Checker is polled before each segment; a non-nil error stops the render.
// task.Gate satisfies it.
type Checker interface {
	Check(ctx context.Context) error
}

// SynthesizerConfig holds the render settings shared by every task.
type SynthesizerConfig struct {
	Voices VoiceMap
	Policy FailurePolicy
	// Dir receives the clips and the final file.
	Dir string
	// Concurrency is the number of segments synthesized at once. Defaults to 1.
	Concurrency int
}

// Synthesizer renders a script to one published audio file.
type Synthesizer struct {
	backend   Backend
	assembler *Assembler
	publisher Publisher
	config    SynthesizerConfig
	logger    *slog.Logger
}

// NewSynthesizer creates a Synthesizer. An empty policy means the backend's default.
func NewSynthesizer(
	backend Backend,
	assembler *Assembler,
	publisher Publisher,
	cfg SynthesizerConfig,
	logger *slog.Logger,
) (*Synthesizer, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if assembler == nil || publisher == nil {
		return nil, errors.New("assembler and publisher are required")
	}
	if cfg.Policy == "" {
		cfg.Policy = DefaultPolicy(backend)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}

	return &Synthesizer{
		backend:   backend,
		assembler: assembler,
		publisher: publisher,
		config:    cfg,
		logger:    logger.With("component", "synthesizer", "backend", backend.Name()),
	}, nil
}

// Backend returns the backend in use.
func (s *Synthesizer) Backend() Backend { return s.backend }

// Policy returns the failure policy in use.
func (s *Synthesizer) Policy() FailurePolicy { return s.config.Policy }

// segmentResult is the outcome of one segment job.
type segmentResult struct {
	clip Clip
	err  error
}

// Render turns script into a published audio reference.
//
// It returns "" with a nil error when there is nothing to say, when the abort
// policy discarded the render, or when no clip survived the skip policy.
// Cancellation and credential faults are returned as errors; no temporary
// clip outlives the call on any path.
func (s *Synthesizer) Render(ctx context.Context, gate Checker, script string) (string, error) {
	segments := ParseSegments(script, s.config.Voices)
	if len(segments) == 0 {
		return "", nil
	}

	if p, ok := s.backend.(Preflighter); ok {
		if err := p.Preflight(ctx); err != nil {
			return "", err
		}
	}

	fileID := uuid.New().String()
	ext := s.backend.Extension()
	logger := s.logger.With("file_id", fileID, "segments", len(segments))

	results := s.synthesizeAll(ctx, gate, segments, fileID, ext)

	var (
		clips    []Clip
		failures int
		fatal    error
	)
	for i, r := range results {
		if r.err == nil {
			clips = append(clips, r.clip)
			continue
		}
		failures++
		switch {
		case errors.Is(r.err, domain.ErrCancelled), errors.Is(r.err, ErrInvalidCredentials):
			if fatal == nil {
				fatal = r.err
			}
		case errors.Is(r.err, errSkipped):
		default:
			logger.Warn("segment synthesis failed", "segment", i, "error", r.err)
		}
	}

	if fatal != nil {
		RemoveClips(s.logger, clips)
		return "", fatal
	}

	if failures > 0 && s.config.Policy == PolicyAbortOnFailure {
		RemoveClips(s.logger, clips)
		logger.Warn("audio discarded after segment failure", "failed", failures)
		return "", nil
	}

	if len(clips) == 0 {
		logger.Warn("no segment produced audio")
		return "", nil
	}

	finalPath := filepath.Join(s.config.Dir, fileID+"."+ext)
	if err := s.assembler.Assemble(ctx, clips, finalPath); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
		}
		logger.Error("audio assembly failed", "error", err)
		return "", nil
	}

	ref, err := s.publisher.Publish(ctx, finalPath)
	if err != nil {
		return "", fmt.Errorf("publish audio: %w", err)
	}

	logger.Info("audio rendered", "clips", len(clips), "skipped", failures)
	return ref, nil
}

// errSkipped marks segments never attempted because the render was already
// stopping.
var errSkipped = errors.New("segment skipped")

// synthesizeAll runs one pool job per segment and returns results in segment
// order. Under the abort policy the first failure stops jobs not yet started.
func (s *Synthesizer) synthesizeAll(
	ctx context.Context,
	gate Checker,
	segments []domain.Segment,
	fileID, ext string,
) []segmentResult {
	results := make([]segmentResult, len(segments))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	pool, err := ants.NewPool(s.config.Concurrency, ants.WithPanicHandler(func(p interface{}) {
		s.logger.Error("segment job panicked", "panic", p)
	}))
	if err != nil {
		for i := range results {
			results[i].err = fmt.Errorf("%w: worker pool: %v", ErrSynthesis, err)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, seg := range segments {
		results[i].err = fmt.Errorf("%w: segment %d did not complete", ErrSynthesis, i)

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = s.synthesizeOne(runCtx, ctx, gate, seg, i, fileID, ext)
			if results[i].err != nil && s.stopsRender(results[i].err) {
				stop()
			}
		})
		if submitErr != nil {
			wg.Done()
			results[i].err = fmt.Errorf("%w: submit segment: %v", ErrSynthesis, submitErr)
		}
	}
	wg.Wait()

	return results
}

// stopsRender reports whether err should prevent further segments from starting.
func (s *Synthesizer) stopsRender(err error) bool {
	if errors.Is(err, domain.ErrCancelled) || errors.Is(err, ErrInvalidCredentials) {
		return true
	}
	return s.config.Policy == PolicyAbortOnFailure && !errors.Is(err, errSkipped)
}

// synthesizeOne polls the gate, synthesizes one segment and writes its clip.
// runCtx is cancelled when the render is stopping; parent is the caller's
// context and distinguishes a disconnect from an internal stop.
func (s *Synthesizer) synthesizeOne(
	runCtx, parent context.Context,
	gate Checker,
	seg domain.Segment,
	index int,
	fileID, ext string,
) segmentResult {
	if err := gate.Check(parent); err != nil {
		return segmentResult{err: err}
	}
	if runCtx.Err() != nil {
		return segmentResult{err: errSkipped}
	}

	audio, err := s.backend.Synthesize(runCtx, seg.Text, seg.Voice)
	if err != nil {
		if parent.Err() != nil {
			return segmentResult{err: fmt.Errorf("%w: %v", domain.ErrCancelled, parent.Err())}
		}
		if runCtx.Err() != nil {
			return segmentResult{err: errSkipped}
		}
		return segmentResult{err: err}
	}

	path := filepath.Join(s.config.Dir, fmt.Sprintf("%s_seg_%d.%s", fileID, index, ext))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		os.Remove(path)
		return segmentResult{err: fmt.Errorf("%w: write clip: %v", ErrSynthesis, err)}
	}
	return segmentResult{clip: Clip{Index: index, Path: path}}
}
