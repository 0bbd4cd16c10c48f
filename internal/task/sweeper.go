package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweeperConfig holds configuration for the registry sweeper.
type SweeperConfig struct {
	// Retention defines how long a terminal task stays queryable after its
	// last stage change before it is removed.
	Retention time.Duration

	// Interval defines how often to look for expired tasks.
	// If zero, defaults to 5 minutes.
	Interval time.Duration
}

// DefaultSweeperConfig returns a SweeperConfig with reasonable defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Retention: time.Hour,
		Interval:  5 * time.Minute,
	}
}

// Sweeper periodically removes finished tasks from a Registry. Without it
// the registry keeps one entry per task ever submitted.
type Sweeper struct {
	registry   *Registry
	config     SweeperConfig
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

// NewSweeper creates a new Sweeper.
func NewSweeper(registry *Registry, config SweeperConfig, logger *slog.Logger) (*Sweeper, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		registry:   registry,
		config:     config,
		logger:     logger.With("component", "task_sweeper"),
		ctx:        ctx,
		cancelFunc: cancel,
	}, nil
}

// Start launches the background sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop ends the sweep loop and waits for it to exit. It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		s.cancelFunc()
		s.wg.Wait()
	})
}

// Sweep removes every terminal task whose last update is older than the
// retention window and returns how many were removed.
func (s *Sweeper) Sweep(now time.Time) int {
	removed := s.registry.removeTerminalBefore(now.Add(-s.config.Retention))
	if len(removed) > 0 {
		s.logger.Info("removed finished tasks",
			"count", len(removed),
			"remaining", s.registry.Len())
	}
	return len(removed)
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(time.Now().UTC())
		}
	}
}
