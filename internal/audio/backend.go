package audio

import (
	"context"
	"unicode/utf8"
)

// truncationMarker is appended to text that was cut to fit a backend's budget.
const truncationMarker = "\n\n[... audio truncated for length ...]"

// Backend synthesizes one segment of text with a named voice.
type Backend interface {
	// Name identifies the backend in logs and configuration ("openai", "local").
	Name() string

	// Extension is the container format of produced audio ("mp3", "wav").
	// Clips and the final file share it so they can be joined without re-encoding.
	Extension() string

	// Synthesize returns the encoded audio for text. Failures wrap ErrSynthesis,
	// except credential faults which return ErrInvalidCredentials.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Preflighter is implemented by backends that can detect a broken setup
// before any segment is processed.
type Preflighter interface {
	Preflight(ctx context.Context) error
}

// Truncate shortens text to at most maxChars characters and appends a visible
// marker when it had to cut. A non-positive maxChars disables truncation.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars]) + truncationMarker
}
