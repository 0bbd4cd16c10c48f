package domain

// Stage is one step of the task pipeline or one of its terminal states.
type Stage string

// Pipeline stages in their fixed order, followed by the terminal states.
const (
	StageQueued     Stage = "queued"
	StageExtracting Stage = "extracting"
	StageSummary    Stage = "summary"
	StageFlashcards Stage = "flashcards"
	StageScript     Stage = "script"
	StageAudio      Stage = "audio"
	StageDone       Stage = "done"
	StageError      Stage = "error"
	StageCancelled  Stage = "cancelled"
)

// stageTransitions is the forward edge of the stage machine. StageError and
// StageCancelled are reachable from every non-terminal stage and are handled
// separately in CanTransition.
var stageTransitions = map[Stage]Stage{
	StageQueued:     StageExtracting,
	StageExtracting: StageSummary,
	StageSummary:    StageFlashcards,
	StageFlashcards: StageScript,
	StageScript:     StageAudio,
	StageAudio:      StageDone,
}

// PipelineStages returns the working stages in execution order.
func PipelineStages() []Stage {
	return []Stage{StageExtracting, StageSummary, StageFlashcards, StageScript, StageAudio}
}

// IsValid reports whether s is a known stage.
func (s Stage) IsValid() bool {
	switch s {
	case StageQueued, StageExtracting, StageSummary, StageFlashcards,
		StageScript, StageAudio, StageDone, StageError, StageCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is done, error or cancelled. Terminal tasks
// are excluded from queue position ranking and cannot change stage again.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageError || s == StageCancelled
}

// CanTransition reports whether moving from s to next is allowed.
// Re-setting the current non-terminal stage is accepted as a no-op.
func (s Stage) CanTransition(next Stage) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	if next == s {
		return true
	}
	if next == StageError || next == StageCancelled {
		return true
	}
	return stageTransitions[s] == next
}
