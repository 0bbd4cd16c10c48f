// Package pipeline drives one StudyCast task through its stages:
// extracting, summary, flashcards, script and audio.
//
// The Orchestrator registers the task, polls the task's cancellation gate
// before every stage, records each stage in the task registry and hands the
// finished script to the audio renderer for the requested synthesis backend.
// Whatever happens, the task ends in exactly one terminal stage: done, error
// or cancelled. Errors returned by Run are classified against the domain
// error taxonomy so the API layer can map them without inspecting causes.
package pipeline
