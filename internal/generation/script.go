package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	scriptChunkChars   = 3000
	scriptChunkOverlap = 300
)

// Script styles offered to clients.
const (
	StyleDynamicDuo   = "dynamic_duo"
	StyleSeriousProf  = "serious_prof"
	StyleCasualFriend = "casual_friend"
	StyleAnimeSenpai  = "anime_senpai"
)

var styleDescriptions = map[string]string{
	StyleDynamicDuo:   "Two friendly podcast hosts with light banter",
	StyleSeriousProf:  "A serious professor and a student",
	StyleCasualFriend: "Two casual friends explaining things simply",
	StyleAnimeSenpai:  "Senpai explaining concepts to kouhai in anime style (still technically correct, no cringe)",
}

// StyleDescription returns the tone description for style, or a neutral one
// for unknown styles.
func StyleDescription(style string) string {
	if d, ok := styleDescriptions[style]; ok {
		return d
	}
	return "Two people discussing the topic"
}

// ScriptRequest describes the podcast to write.
type ScriptRequest struct {
	DurationMinutes int
	Style           string
}

// ScriptWriter turns study material into a timestamped A/B dialogue.
type ScriptWriter struct {
	chat            ChatClient
	defaultDuration int
	defaultStyle    string
	logger          *slog.Logger
}

// NewScriptWriter creates a ScriptWriter. The defaults apply to requests that
// leave duration or style empty.
func NewScriptWriter(chat ChatClient, defaultDuration int, defaultStyle string, logger *slog.Logger) (*ScriptWriter, error) {
	if chat == nil {
		return nil, ErrNilChatClient
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if defaultDuration <= 0 {
		defaultDuration = 5
	}
	if defaultStyle == "" {
		defaultStyle = StyleDynamicDuo
	}
	return &ScriptWriter{
		chat:            chat,
		defaultDuration: defaultDuration,
		defaultStyle:    defaultStyle,
		logger:          logger.With("component", "script_writer"),
	}, nil
}

// Write produces the podcast script in a single model call.
func (w *ScriptWriter) Write(ctx context.Context, gate Gate, text string, req ScriptRequest, opts ChatOptions) (string, error) {
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = w.defaultDuration
	}
	if req.Style == "" {
		req.Style = w.defaultStyle
	}

	material := strings.Join(ChunkText(text, scriptChunkChars, scriptChunkOverlap), "\n\n")
	prompt, err := render(scriptTemplate, promptData{
		Text:    material,
		Style:   StyleDescription(req.Style),
		Minutes: req.DurationMinutes,
	})
	if err != nil {
		return "", err
	}

	if err := gate.Check(ctx); err != nil {
		return "", err
	}

	script, err := w.chat.Chat(ctx, conversation(scriptSystemPrompt, prompt), opts)
	if err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}

	w.logger.DebugContext(ctx, "script written",
		"style", req.Style,
		"minutes", req.DurationMinutes,
		"length", len(script))
	return strings.TrimSpace(script), nil
}
