package llm

import (
	"os"
	"strings"
)

const (
	DefaultBaseURL = "http://localhost:11434/v1" // Ollama
	DefaultModel   = "nomic-embed-text"
)

// NewEmbedClient returns the embedding client for the configured server.
// Empty arguments fall back to LEXCHUNK_EMBED_URL / LEXCHUNK_EMBED_MODEL,
// then OLLAMA_HOST, then the defaults.
func NewEmbedClient(baseURL, model string) Embedder {
	if baseURL == "" {
		baseURL = firstEnv("LEXCHUNK_EMBED_URL", "OLLAMA_HOST")
	}
	if model == "" {
		model = firstEnv("LEXCHUNK_EMBED_MODEL")
	}
	if model == "" {
		model = DefaultModel
	}
	return NewOpenAIClient(baseURL, model)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
