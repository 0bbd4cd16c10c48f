// Package domain contains the core entities of the study-to-podcast pipeline:
// task lifecycle state and its stage machine, dialogue segments, flashcards
// and the pipeline result, plus the error taxonomy shared by every layer.
// It has no dependencies on infrastructure or delivery mechanisms.
package domain
