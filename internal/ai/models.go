package ai

import (
	"encoding/json"
	"fmt"
	"os"
)

// Model metadata and simple pricing helpers for prompt-size warnings and
// dry-run cost estimates. Prices are illustrative; verify against the
// provider before relying on them.

type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
	ProviderOllama:     "llama3.1:8b-instruct",
}

// DefaultModel returns the default model for provider, falling back to the
// OpenRouter default.
func DefaultModel(provider string) string {
	if m, ok := DefaultModels[provider]; ok {
		return m
	}
	return DefaultModels[ProviderOpenRouter]
}

var models = map[string]ModelInfo{
	"google/gemini-2.0-flash-001": {
		Name:          "google/gemini-2.0-flash-001",
		ContextTokens: 1048576,
		InputPerK:     0.0001,
		OutputPerK:    0.0004,
	},
	"google/gemini-1.5-flash": {
		Name:          "google/gemini-1.5-flash",
		ContextTokens: 1000000,
		InputPerK:     0.0002,
		OutputPerK:    0.0008,
	},
	"google/gemini-1.5-pro": {
		Name:          "google/gemini-1.5-pro",
		ContextTokens: 1000000,
		InputPerK:     0.00125,
		OutputPerK:    0.005,
	},
	"openai/gpt-4o-mini": {
		Name:          "openai/gpt-4o-mini",
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"openai/gpt-4o": {
		Name:          "openai/gpt-4o",
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
	"anthropic/claude-3.5-sonnet": {
		Name:          "anthropic/claude-3.5-sonnet",
		ContextTokens: 200000,
		InputPerK:     0.003,
		OutputPerK:    0.015,
	},
	"deepseek/deepseek-chat": {
		Name:          "deepseek/deepseek-chat",
		ContextTokens: 64000,
		InputPerK:     0.00014,
		OutputPerK:    0.00028,
	},
	// Common local (Ollama) tags
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		ContextTokens: 8192,
	},
	"llama3:latest": {
		Name:          "llama3:latest",
		ContextTokens: 8192,
	},
	"mistral:7b-instruct": {
		Name:          "mistral:7b-instruct",
		ContextTokens: 8192,
	},
	"qwen2.5:7b-instruct": {
		Name:          "qwen2.5:7b-instruct",
		ContextTokens: 32768,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example entry:
// { "openai/gpt-4o-mini": {"Name":"openai/gpt-4o-mini","ContextTokens":128000,"InputPerK":0.00015,"OutputPerK":0.0006} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model catalog: %w", err)
	}
	defer f.Close()
	var m map[string]ModelInfo
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model catalog: %w", err)
	}
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
			m[k] = v
		}
	}
	return m, nil
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}

// OverrideCatalog replaces the in-memory catalog.
func OverrideCatalog(m map[string]ModelInfo) {
	models = make(map[string]ModelInfo, len(m))
	for k, v := range m {
		models[k] = v
	}
}
