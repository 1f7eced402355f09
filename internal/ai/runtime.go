package ai

import "context"

// Runtime is implemented by model backends such as OpenRouter and a local
// Ollama.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// KeyedRuntime is implemented by runtimes that may need a credential.
// HasKey reports whether the runtime can authenticate as configured.
type KeyedRuntime interface {
	Runtime
	RequiresKey() bool
	HasKey() bool
}

// Provider identifiers used across the CLI and config.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)
