package generation

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?")
	fenceClose = regexp.MustCompile("```$")
	jsonBlock  = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
)

// ParseLooseJSON extracts a JSON value from model output. It strips code
// fences, then tries the whole text, then the first {...} or [...] block.
// It returns false when nothing parses.
func ParseLooseJSON(text string) (json.RawMessage, bool) {
	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimSpace(fenceOpen.ReplaceAllString(clean, ""))
		clean = strings.TrimSpace(fenceClose.ReplaceAllString(clean, ""))
	}

	if json.Valid([]byte(clean)) && clean != "" {
		return json.RawMessage(clean), true
	}

	if match := jsonBlock.FindString(clean); match != "" && json.Valid([]byte(match)) {
		return json.RawMessage(match), true
	}
	return nil, false
}
