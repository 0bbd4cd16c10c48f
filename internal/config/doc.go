// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, an optional config.yaml, STUDYCAST_*
// environment variables). It provides type-safe access to the settings
// needed by the server, the LLM providers and the synthesis backends.
package config
