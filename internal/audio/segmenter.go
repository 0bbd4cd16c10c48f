package audio

import (
	"strings"

	"github.com/phrazzld/studycast/internal/domain"
)

// VoiceMap assigns synthesis voices to the two script speakers.
type VoiceMap struct {
	// Primary voices speaker A and any untagged narration.
	Primary string
	// Secondary voices speaker B. Empty means Primary.
	Secondary string
}

// voiceFor maps a speaker tag ("A", "B" or "") to a voice.
func (v VoiceMap) voiceFor(tag string) string {
	if tag == "B" && v.Secondary != "" {
		return v.Secondary
	}
	return v.Primary
}

// ParseSegments splits a dialogue script into ordered segments.
//
// Lines look like "[mm:ss] A: text" or "B: text". A leading bracketed marker
// is dropped, and a single-letter A or B tag (any case) followed by a colon
// selects the speaker. Any other line is narration in the primary voice.
// Consecutive lines with the same voice are merged with a newline. A
// non-empty script that yields nothing becomes one primary-voice segment.
func ParseSegments(script string, voices VoiceMap) []domain.Segment {
	var (
		segments []domain.Segment
		current  *domain.Segment
		parts    []string
	)

	flush := func() {
		if current != nil {
			current.Text = strings.Join(parts, "\n")
			segments = append(segments, *current)
		}
	}

	for _, raw := range strings.Split(script, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		tag, content := splitSpeaker(stripTimestamp(line))
		voice := voices.voiceFor(tag)

		if current != nil && current.Voice == voice {
			parts = append(parts, content)
			continue
		}
		flush()
		current = &domain.Segment{Voice: voice}
		parts = []string{content}
	}
	flush()

	if len(segments) == 0 {
		if trimmed := strings.TrimSpace(script); trimmed != "" {
			segments = append(segments, domain.Segment{Voice: voices.Primary, Text: trimmed})
		}
	}
	return segments
}

// stripTimestamp removes a leading "[...]" marker.
func stripTimestamp(line string) string {
	if !strings.HasPrefix(line, "[") {
		return line
	}
	closing := strings.Index(line, "]")
	if closing < 0 {
		return line
	}
	return strings.TrimLeft(line[closing+1:], " \t")
}

// splitSpeaker detects a one-letter A/B tag followed by ':'. It returns the
// upper-cased tag, or "" when the line is narration.
func splitSpeaker(line string) (string, string) {
	if len(line) < 2 || line[1] != ':' {
		return "", line
	}
	tag := strings.ToUpper(line[:1])
	if tag != "A" && tag != "B" {
		return "", line
	}
	return tag, strings.TrimLeft(line[2:], " \t")
}
