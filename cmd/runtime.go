package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/filesense/internal/ai"
	cfgpkg "github.com/KaramelBytes/filesense/internal/config"
	"github.com/KaramelBytes/filesense/internal/service"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

// buildRuntime resolves the provider and its HTTP/retry settings. Flags win
// over environment, which wins over config.
func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	retryMax := 1
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
	}

	providerName := normalizeProvider(opts.ProviderFlag)
	if providerName == "" && cfg != nil {
		providerName = normalizeProvider(cfg.Provider)
	}
	if providerName == "" {
		providerName = ai.ProviderOpenRouter
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" && cfg != nil && cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		APIKey:      apiKey,
		BaseURL:     os.Getenv("FILESENSE_OPENROUTER_BASE_URL"),
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			host = os.Getenv("FILESENSE_OLLAMA_HOST")
		}
		if host == "" && cfg != nil && cfg.OllamaHost != "" {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = ai.DefaultOllamaHost
		}
		rc.Host = host
		if v := os.Getenv("FILESENSE_OLLAMA_TIMEOUT_SEC"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rc.HTTPTimeout = time.Duration(n) * time.Second
			}
		}
		if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use %s)", providerName, strings.Join(ai.Providers(), "|"))
	}
	return client, providerName, nil
}

func normalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "local", "ollama":
		return ai.ProviderOllama
	case "openai", "anthropic", "google", "gemini", "meta", "llama":
		return ai.ProviderOpenRouter
	default:
		return p
	}
}

// selectModel picks the model: explicit flag, then config (when it targets the
// same provider), then the provider default.
func selectModel(cfg *cfgpkg.Global, explicit, provider string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.Model != "" {
		cfgProvider := normalizeProvider(cfg.Provider)
		if cfgProvider == "" {
			cfgProvider = ai.ProviderOpenRouter
		}
		if cfgProvider == provider {
			return cfg.Model
		}
	}
	return ai.DefaultModel(provider)
}

// selectLanguage returns the flag value, else the configured language.
func selectLanguage(cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil {
		return cfg.Language
	}
	return ""
}

func enforceBudget(estCost, limit float64) error {
	if limit > 0 && estCost > 0 && estCost > limit {
		return fmt.Errorf("estimated cost ~$%.4f exceeds budget limit ~$%.4f", estCost, limit)
	}
	return nil
}

type serviceOptions struct {
	runtimeOptions
	Model  string
	Strict bool
}

// newService wires the configured runtime into an analysis service.
func newService(cfg *cfgpkg.Global, opts serviceOptions, log *slog.Logger) (*service.Service, string, error) {
	rt, provider, err := buildRuntime(cfg, opts.runtimeOptions)
	if err != nil {
		return nil, provider, err
	}
	svc := &service.Service{
		Runtime: rt,
		Model:   selectModel(cfg, opts.Model, provider),
		Strict:  opts.Strict,
		Logger:  log,
	}
	if cfg != nil {
		svc.SampleRows = cfg.SampleRows
		svc.MaxTokens = cfg.MaxTokens
		svc.Temperature = cfg.Temperature
		svc.Strict = svc.Strict || cfg.StrictSchema
	}
	return svc, provider, nil
}
