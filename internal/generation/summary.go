package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	summaryChunkChars   = 2500
	summaryChunkOverlap = 300
)

// Summarizer condenses study material into exam-oriented bullet points.
type Summarizer struct {
	chat    ChatClient
	bullets int
	logger  *slog.Logger
}

// NewSummarizer creates a Summarizer producing at most bullets bullet points.
func NewSummarizer(chat ChatClient, bullets int, logger *slog.Logger) (*Summarizer, error) {
	if chat == nil {
		return nil, ErrNilChatClient
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if bullets <= 0 {
		bullets = 5
	}
	return &Summarizer{chat: chat, bullets: bullets, logger: logger.With("component", "summarizer")}, nil
}

// Summarize runs one model call per chunk of text and, when there was more
// than one chunk, a final call that merges the partial summaries. The gate is
// checked before every call.
//
// Parameters:
//   - ctx: Context for the operation, cancelled when the caller goes away
//   - gate: Cancellation check polled before each model call
//   - text: The extracted study material
//   - opts: Provider and model selection
//
// Returns:
//   - The bullet-point summary
//   - An error if a model call fails or the gate reports cancellation
func (s *Summarizer) Summarize(ctx context.Context, gate Gate, text string, opts ChatOptions) (string, error) {
	chunks := ChunkText(text, summaryChunkChars, summaryChunkOverlap)
	partials := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		if err := gate.Check(ctx); err != nil {
			return "", err
		}

		prompt, err := render(summaryTemplate, promptData{Text: chunk, Bullets: s.bullets})
		if err != nil {
			return "", err
		}

		summary, err := s.chat.Chat(ctx, conversation(summarySystemPrompt, prompt), opts)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d: %w", i, err)
		}
		partials = append(partials, strings.TrimSpace(summary))
	}

	s.logger.DebugContext(ctx, "summarized chunks", "chunks", len(chunks))
	if len(partials) == 1 {
		return partials[0], nil
	}

	if err := gate.Check(ctx); err != nil {
		return "", err
	}

	prompt, err := render(combineTemplate, promptData{Text: strings.Join(partials, "\n"), Bullets: s.bullets})
	if err != nil {
		return "", err
	}
	combined, err := s.chat.Chat(ctx, conversation(combineSystemPrompt, prompt), opts)
	if err != nil {
		return "", fmt.Errorf("combine summaries: %w", err)
	}
	return strings.TrimSpace(combined), nil
}
