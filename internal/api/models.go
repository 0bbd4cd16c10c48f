package api

import (
	"time"

	"github.com/phrazzld/studycast/internal/domain"
)

// ProcessForm is the multipart form accepted by POST /api/process. Either
// the file or the text field must carry content.
type ProcessForm struct {
	Text        string `form:"text"`
	Duration    int    `form:"duration"     validate:"gte=0,lte=120"`
	Style       string `form:"style"        validate:"omitempty,max=64,printascii"`
	LLMProvider string `form:"llm_provider" validate:"omitempty,max=32"`
	LLMModel    string `form:"llm_model"    validate:"omitempty,max=128"`
	TTSProvider string `form:"tts_provider" validate:"omitempty,max=32"`
	TaskID      string `form:"task_id"      validate:"omitempty,max=128,printascii"`
}

// ProcessResponse is the successful result of a pipeline run.
type ProcessResponse struct {
	Summary    string             `json:"summary"`
	Flashcards []domain.Flashcard `json:"flashcards"`
	Script     string             `json:"script"`
	AudioURL   string             `json:"audioUrl"`
	TaskID     string             `json:"taskId"`
}

func newProcessResponse(res domain.PipelineResult) ProcessResponse {
	cards := res.Flashcards
	if cards == nil {
		cards = []domain.Flashcard{}
	}
	return ProcessResponse{
		Summary:    res.Summary,
		Flashcards: cards,
		Script:     res.Script,
		AudioURL:   res.AudioURL,
		TaskID:     res.TaskID,
	}
}

// TaskStatusResponse reports a task's progress. QueuePosition is null once
// the task has finished.
type TaskStatusResponse struct {
	TaskID        string `json:"taskId"`
	Stage         string `json:"stage"`
	Cancelled     bool   `json:"cancelled"`
	CreatedAt     string `json:"createdAt"`
	QueuePosition *int   `json:"queuePosition"`
}

func newTaskStatusResponse(state domain.TaskState, position int, queued bool) TaskStatusResponse {
	resp := TaskStatusResponse{
		TaskID:    state.ID,
		Stage:     string(state.Stage),
		Cancelled: state.Cancelled,
		CreatedAt: state.CreatedAt.UTC().Format(time.RFC3339),
	}
	if queued {
		resp.QueuePosition = &position
	}
	return resp
}

// StatusResponse is the body of simple acknowledgement endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// LLMInfo describes the language model options offered to clients.
type LLMInfo struct {
	DefaultProvider    string   `json:"default_provider"`
	Providers          []string `json:"providers"`
	OpenAIModel        string   `json:"openai_model"`
	GeminiModel        string   `json:"gemini_model"`
	DefaultOllamaModel string   `json:"default_ollama_model"`
	OllamaModels       []string `json:"ollama_models"`
}

// TTSInfo describes the speech synthesis options offered to clients.
type TTSInfo struct {
	DefaultProvider string   `json:"default_provider"`
	Providers       []string `json:"providers"`
	OpenAIModel     string   `json:"openai_model"`
	OpenAIVoice     string   `json:"openai_voice"`
}

// ConfigResponse is the body of GET /api/config.
type ConfigResponse struct {
	LLM LLMInfo `json:"llm"`
	TTS TTSInfo `json:"tts"`
}
