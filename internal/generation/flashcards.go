package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studycast/internal/domain"
)

const flashcardChunkChars = 3000

// Placeholder cards returned when the model output cannot be used.
var (
	unparsableFlashcard = domain.Flashcard{
		Question: "Unable to parse flashcards",
		Answer:   "Model returned invalid JSON or unsupported structure.",
	}
	emptyFlashcard = domain.Flashcard{
		Question: "No valid flashcards",
		Answer:   "Model produced empty or invalid data.",
	}
)

// FlashcardBuilder turns the beginning of the study material into question
// and answer cards.
type FlashcardBuilder struct {
	chat   ChatClient
	limit  int
	logger *slog.Logger
}

// NewFlashcardBuilder creates a FlashcardBuilder keeping at most limit cards.
func NewFlashcardBuilder(chat ChatClient, limit int, logger *slog.Logger) (*FlashcardBuilder, error) {
	if chat == nil {
		return nil, ErrNilChatClient
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if limit <= 0 {
		limit = 10
	}
	return &FlashcardBuilder{chat: chat, limit: limit, logger: logger.With("component", "flashcard_builder")}, nil
}

// Build asks the model for JSON flashcards covering the first chunk of text.
// Unusable output never fails the call: it yields a single placeholder card
// explaining what went wrong. Only model call errors and cancellation are
// returned as errors.
func (b *FlashcardBuilder) Build(ctx context.Context, gate Gate, text string, opts ChatOptions) ([]domain.Flashcard, error) {
	base := ChunkText(text, flashcardChunkChars, 0)[0]

	prompt, err := render(flashcardTemplate, promptData{Text: base, Limit: b.limit})
	if err != nil {
		return nil, err
	}

	if err := gate.Check(ctx); err != nil {
		return nil, err
	}

	opts.JSON = true
	raw, err := b.chat.Chat(ctx, conversation(flashcardSystemPrompt, prompt), opts)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}

	cards, err := parseFlashcards(raw, b.limit)
	if err != nil {
		b.logger.WarnContext(ctx, "could not parse flashcards", "error", err, "raw_length", len(raw))
		return []domain.Flashcard{unparsableFlashcard}, nil
	}
	if len(cards) == 0 {
		return []domain.Flashcard{emptyFlashcard}, nil
	}
	return cards, nil
}

// rawFlashcard accepts any JSON type for its fields so stray numbers or
// booleans do not fail the whole batch.
type rawFlashcard struct {
	Question any `json:"question"`
	Answer   any `json:"answer"`
}

// parseFlashcards accepts a single object or an array of objects and keeps
// the first limit entries that have both a question and an answer.
func parseFlashcards(raw string, limit int) ([]domain.Flashcard, error) {
	data, ok := ParseLooseJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON found", ErrInvalidResponse)
	}

	var items []json.RawMessage
	switch firstNonSpace(data) {
	case '{':
		items = []json.RawMessage{data}
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported JSON structure", ErrInvalidResponse)
	}

	if len(items) > limit {
		items = items[:limit]
	}

	cards := make([]domain.Flashcard, 0, len(items))
	for _, item := range items {
		var rc rawFlashcard
		if err := json.Unmarshal(item, &rc); err != nil {
			continue
		}
		if card, ok := domain.NewFlashcard(stringify(rc.Question), stringify(rc.Answer)); ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func firstNonSpace(data []byte) byte {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c
		}
	}
	return 0
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
