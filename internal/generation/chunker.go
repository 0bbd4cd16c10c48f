package generation

import "strings"

// ChunkText splits text into pieces of at most maxChars characters, each
// starting overlap characters before the previous one ended. Text that fits
// is returned as a single chunk, even when empty.
func ChunkText(text string, maxChars, overlap int) []string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{text}
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = 0
	}

	var chunks []string
	for start := 0; start < len(runes); start += maxChars - overlap {
		end := start + maxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
