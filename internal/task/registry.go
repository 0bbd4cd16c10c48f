package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/events"
)

// entry pairs a task state with its insertion sequence so tasks created in
// the same clock tick still have a stable FIFO order.
type entry struct {
	state domain.TaskState
	seq   uint64
}

// Registry is the process-wide store of task lifecycle state, keyed by task id.
//
// All map access happens under one mutex that is never held across an
// external call; stage change events are emitted after the lock is released.
// Callers only ever see copies of the stored TaskState.
type Registry struct {
	mu      sync.Mutex
	tasks   map[string]entry
	nextSeq uint64

	now     func() time.Time
	emitter events.EventEmitter
	logger  *slog.Logger
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithEmitter publishes a StageChangedEvent for every accepted transition.
func WithEmitter(emitter events.EventEmitter) RegistryOption {
	return func(r *Registry) {
		r.emitter = emitter
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger, opts ...RegistryOption) (*Registry, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}

	r := &Registry{
		tasks:  make(map[string]entry),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With("component", "task_registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Create inserts a fresh queued state for id and returns a copy of it.
// An existing entry with the same id is overwritten, cancel flag included.
// Any run still holding the id then writes into the new entry, so keeping ids
// unique per concurrent task is the caller's obligation.
func (r *Registry) Create(id string) domain.TaskState {
	r.mu.Lock()
	prev, existed := r.tasks[id]
	state := domain.NewTaskState(id, r.now())
	r.nextSeq++
	r.tasks[id] = entry{state: state, seq: r.nextSeq}
	r.mu.Unlock()

	if existed && prev.state.Pending() {
		r.logger.Warn("task id reused while previous task still pending",
			"task_id", id,
			"previous_stage", string(prev.state.Stage))
	}
	return state
}

// SetStage moves a task to stage. Unknown ids are ignored. A transition the
// stage machine does not allow leaves the state untouched and returns
// ErrInvalidTransition.
func (r *Registry) SetStage(ctx context.Context, id string, stage domain.Stage) error {
	r.mu.Lock()
	e, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	from := e.state.Stage
	if !from.CanTransition(stage) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, stage)
	}
	e.state.Stage = stage
	e.state.UpdatedAt = r.now()
	r.tasks[id] = e
	r.mu.Unlock()

	if from != stage && r.emitter != nil {
		if err := r.emitter.EmitEvent(ctx, events.NewStageChangedEvent(id, from, stage)); err != nil {
			r.logger.Warn("failed to emit stage change", "task_id", id, "error", err)
		}
	}
	return nil
}

// Cancel sets the cancelled flag. It is idempotent and a no-op for unknown ids.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok || e.state.Cancelled {
		return
	}
	e.state.Cancelled = true
	e.state.UpdatedAt = r.now()
	r.tasks[id] = e
}

// IsCancelled reports whether the cancelled flag is set for id.
func (r *Registry) IsCancelled(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id].state.Cancelled
}

// Get returns a copy of the state for id.
func (r *Registry) Get(id string) (domain.TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	return e.state, ok
}

// Remove deletes the entry for id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}

// QueuePosition returns the 0-based rank of id among non-terminal tasks,
// oldest first. The second result is false when id is unknown or already
// terminal. The rank is advisory: it never gates execution.
func (r *Registry) QueuePosition(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	me, ok := r.tasks[id]
	if !ok || !me.state.Pending() {
		return 0, false
	}

	pos := 0
	for otherID, other := range r.tasks {
		if otherID == id || !other.state.Pending() {
			continue
		}
		if before(other, me) {
			pos++
		}
	}
	return pos, true
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Snapshot returns copies of every tracked state, oldest first.
func (r *Registry) Snapshot() []domain.TaskState {
	r.mu.Lock()
	entries := make([]entry, 0, len(r.tasks))
	for _, e := range r.tasks {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return before(entries[i], entries[j]) })
	states := make([]domain.TaskState, len(entries))
	for i, e := range entries {
		states[i] = e.state
	}
	return states
}

// removeTerminalBefore deletes terminal tasks last updated before cutoff and
// returns their ids.
func (r *Registry) removeTerminalBefore(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, e := range r.tasks {
		if e.state.Pending() || !e.state.UpdatedAt.Before(cutoff) {
			continue
		}
		delete(r.tasks, id)
		removed = append(removed, id)
	}
	return removed
}

func before(a, b entry) bool {
	if !a.state.CreatedAt.Equal(b.state.CreatedAt) {
		return a.state.CreatedAt.Before(b.state.CreatedAt)
	}
	return a.seq < b.seq
}
