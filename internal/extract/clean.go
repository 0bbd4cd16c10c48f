package extract

import (
	"regexp"
	"strings"
)

var (
	hyphenBreak  = regexp.MustCompile(`-\s*\n\s*`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
	spaceBeforeP = regexp.MustCompile(`\s+([.,!?;:])`)
	lineEndings  = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// CleanText normalises extracted text: unified line endings, words split by
// a hyphenated line break rejoined, whitespace collapsed within each line, at
// most one blank line in a row and no whitespace before punctuation.
func CleanText(raw string) string {
	text := lineEndings.Replace(raw)
	text = hyphenBreak.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")

	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = spaceBeforeP.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
