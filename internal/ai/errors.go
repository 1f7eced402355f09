package ai

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned when a runtime that needs a credential has none.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is missing")

func describe(kind string, e *APIError) string { return kind + ": " + e.Error() }

// AuthError wraps 401/403 responses.
type AuthError struct{ *APIError }

func (e *AuthError) Error() string { return describe("authentication failed", e.APIError) }
func (e *AuthError) Unwrap() error { return e.APIError }

// RateLimitError wraps 429 responses. RetryAfter is zero when the provider
// did not say how long to wait.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return describe(fmt.Sprintf("rate limited (retry in %ds)", int(e.RetryAfter.Seconds())), e.APIError)
	}
	return describe("rate limited", e.APIError)
}
func (e *RateLimitError) Unwrap() error { return e.APIError }

// ModelNotFoundError means the configured model id is unknown to the provider.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string { return describe("model not found", e.APIError) }
func (e *ModelNotFoundError) Unwrap() error { return e.APIError }

// BadRequestError covers the remaining 4xx responses.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return describe("bad request", e.APIError) }
func (e *BadRequestError) Unwrap() error { return e.APIError }

// QuotaExceededError means the account ran out of credits (402 or a quota code).
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string { return describe("quota exceeded", e.APIError) }
func (e *QuotaExceededError) Unwrap() error { return e.APIError }

// ServerError wraps 5xx responses.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return describe("provider error", e.APIError) }
func (e *ServerError) Unwrap() error { return e.APIError }

// UnreachableError means no HTTP response was received, typically a local
// Ollama that is not running.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Hint suggests what the user can do about a runtime error. It returns ""
// when there is nothing specific to say.
func Hint(err error) string {
	var (
		auth  *AuthError
		rl    *RateLimitError
		nf    *ModelNotFoundError
		quota *QuotaExceededError
		down  *UnreachableError
	)
	switch {
	case errors.As(err, &auth):
		return "check OPENROUTER_API_KEY"
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			return fmt.Sprintf("wait %ds and try again", int(rl.RetryAfter.Seconds()))
		}
		return "wait a moment and try again"
	case errors.As(err, &nf):
		return "pick another model from 'filesense models show'"
	case errors.As(err, &quota):
		return "add credits to the OpenRouter account"
	case errors.As(err, &down):
		if down.Host != "" {
			return "make sure the runtime is listening on " + down.Host
		}
		return "make sure the runtime is running"
	}
	return ""
}
