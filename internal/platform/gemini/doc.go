// Package gemini provides an implementation of the generation.ChatClient
// interface backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it translates the provider
// neutral chat conversation used by the generation package into genai
// contents and maps Gemini's responses and failures back into the
// application's error vocabulary.
//
// Key behaviours:
//
// 1. Conversation mapping:
//   - System messages become the request's system instruction
//   - Assistant turns are sent with the "model" role
//   - JSON requests set the response MIME type to application/json
//
// 2. Error handling:
//   - Rate limiting, server errors and network failures are retried with
//     exponential backoff through generation.WithRetry
//   - Responses blocked by safety filters surface as ErrContentBlocked
//   - Rejected or missing credentials surface as provider unavailability
//
// The package depends on the google.golang.org/genai client library.
package gemini
