package gemini

import (
	"fmt"

	"github.com/phrazzld/studycast/internal/domain"
)

// Error definitions for the gemini package.
var (
	// ErrMissingAPIKey is returned by Chat when no API key is configured.
	ErrMissingAPIKey = fmt.Errorf("%w: GEMINI_API_KEY is not set", domain.ErrProviderUnavailable)
)
