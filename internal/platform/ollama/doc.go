// Package ollama implements generation.ChatClient against a local Ollama
// server using its non-streaming /api/chat endpoint, and lists the models
// the server has pulled via /api/tags.
package ollama
