package domain

// PipelineResult is the end-to-end output of one task run.
type PipelineResult struct {
	TaskID     string      `json:"taskId"`
	Summary    string      `json:"summary"`
	Flashcards []Flashcard `json:"flashcards"`
	Script     string      `json:"script"`
	AudioURL   string      `json:"audioUrl"`
}
