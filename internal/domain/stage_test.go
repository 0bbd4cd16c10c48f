package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_CanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from Stage
		to   Stage
		want bool
	}{
		{"queued to extracting", StageQueued, StageExtracting, true},
		{"extracting to summary", StageExtracting, StageSummary, true},
		{"summary to flashcards", StageSummary, StageFlashcards, true},
		{"flashcards to script", StageFlashcards, StageScript, true},
		{"script to audio", StageScript, StageAudio, true},
		{"audio to done", StageAudio, StageDone, true},
		{"same stage is accepted", StageSummary, StageSummary, true},
		{"queued to error", StageQueued, StageError, true},
		{"script to cancelled", StageScript, StageCancelled, true},
		{"audio to error", StageAudio, StageError, true},
		{"skip ahead is rejected", StageQueued, StageSummary, false},
		{"backwards is rejected", StageScript, StageSummary, false},
		{"queued to done is rejected", StageQueued, StageDone, false},
		{"done is absorbing", StageDone, StageError, false},
		{"error is absorbing", StageError, StageCancelled, false},
		{"cancelled is absorbing", StageCancelled, StageCancelled, false},
		{"unknown target", StageQueued, Stage("bogus"), false},
		{"unknown source", Stage("bogus"), StageExtracting, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}
}

func TestStage_IsTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range []Stage{StageDone, StageError, StageCancelled} {
		assert.True(t, s.IsTerminal(), "stage %s should be terminal", s)
	}
	for _, s := range append([]Stage{StageQueued}, PipelineStages()...) {
		assert.False(t, s.IsTerminal(), "stage %s should not be terminal", s)
	}
}

func TestPipelineStages_FollowTransitionTable(t *testing.T) {
	t.Parallel()

	current := StageQueued
	for _, next := range PipelineStages() {
		assert.True(t, current.CanTransition(next), "%s -> %s", current, next)
		current = next
	}
	assert.True(t, current.CanTransition(StageDone))
}
