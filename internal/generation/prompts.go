package generation

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	summarySystemPrompt   = "You are a study assistant."
	combineSystemPrompt   = "You are a concise study assistant."
	flashcardSystemPrompt = "You output ONLY JSON (object or array)."
	scriptSystemPrompt    = "You are a podcast script writer. You turn study material into " +
		"engaging, clear dialogues between exactly two speakers: A and B."
)

var (
	summaryTemplate = template.Must(template.New("summary").Parse(
		`Summarize the following study material in bullet points.

Rules:
- Maximum {{.Bullets}} bullets.
- Very clear, exam-friendly.
- No fluff.

Text:
{{.Text}}
`))

	combineTemplate = template.Must(template.New("combine").Parse(
		`You will get several bullet-point summaries, one per chunk of a larger text.

Condense them into at most {{.Bullets}} extremely clear, exam-oriented bullet points.

Input summaries:
{{.Text}}
`))

	flashcardTemplate = template.Must(template.New("flashcards").Parse(
		`You are a study assistant.

From the following text, generate up to {{.Limit}} flashcards.

Rules:
- Only return JSON.
- Preferred format: [{"question": "...", "answer": "..."}, ...]
- If there is only ONE flashcard, you may also return a single JSON object: {"question": "...", "answer": "..."}.
- No markdown, no commentary, no code fences.

Text:
{{.Text}}
`))

	scriptTemplate = template.Must(template.New("script").Parse(
		`Create a podcast script from the following study material.

Study material:
{{.Text}}

Requirements:
- Two speakers only: 'A:' and 'B:'.
- Tone style: {{.Style}}.
- Target duration: about {{.Minutes}} minutes (approximate).
- Use timestamp tags in format [mm:ss] at reasonable intervals (every few lines).
- Start at [00:00].
- No meta commentary about 'summarizing' or 'this is a script'.
- Directly output the final script.
`))
)

// promptData is the union of the fields referenced by the prompt templates.
type promptData struct {
	Text    string
	Bullets int
	Limit   int
	Style   string
	Minutes int
}

// render executes tmpl with data.
func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// conversation builds the usual system + user message pair.
func conversation(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
