package domain

import "strings"

// Flashcard is a single question/answer study card.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewFlashcard trims both sides and reports whether the card is usable.
func NewFlashcard(question, answer string) (Flashcard, bool) {
	card := Flashcard{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	}
	return card, card.Question != "" && card.Answer != ""
}
