// Package openai implements generation.ChatClient on top of the OpenAI
// Responses API. Requests are plain JSON over HTTP; transient failures
// (network errors, rate limiting, server errors) are retried with
// exponential backoff by generation.WithRetry.
package openai
