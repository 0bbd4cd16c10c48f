package audio

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what happens to an audio render when one segment
// fails to synthesize.
type FailurePolicy string

const (
	// PolicyAbortOnFailure discards every clip produced so far and yields no
	// audio as soon as one segment fails.
	PolicyAbortOnFailure FailurePolicy = "abort"

	// PolicySkipOnFailure drops the failed segment and assembles the rest.
	PolicySkipOnFailure FailurePolicy = "skip"
)

// ParseFailurePolicy converts a configuration value. An empty value yields fallback.
func ParseFailurePolicy(value string, fallback FailurePolicy) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return fallback, nil
	case PolicyAbortOnFailure:
		return PolicyAbortOnFailure, nil
	case PolicySkipOnFailure:
		return PolicySkipOnFailure, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", value)
	}
}

// DefaultPolicy returns the policy a backend uses when none is configured:
// the hosted API aborts, local piper skips.
func DefaultPolicy(b Backend) FailurePolicy {
	if _, ok := b.(*LocalBackend); ok {
		return PolicySkipOnFailure
	}
	return PolicyAbortOnFailure
}
