package generation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studycast/internal/domain"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate content from text")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when a client configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrUnknownProvider is returned when a request names a provider that is not
	// configured. It matches domain.ErrProviderUnavailable.
	ErrUnknownProvider = fmt.Errorf("%w: unsupported LLM provider", domain.ErrProviderUnavailable)

	// ErrNilChatClient is returned when a generator is built without a chat client.
	ErrNilChatClient = errors.New("chat client cannot be nil")

	// ErrNilLogger is returned when a constructor receives a nil logger.
	ErrNilLogger = errors.New("logger cannot be nil")
)
