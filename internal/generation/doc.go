// Package generation produces the text artifacts of a study pipeline: a
// bullet summary, flashcards and a two-speaker podcast script. It talks to
// language models only through the ChatClient interface, so the concrete
// providers (OpenAI, Ollama, Gemini) live in internal/platform and can be
// swapped per request through a Router.
package generation
