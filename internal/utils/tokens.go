package utils

// CountTokens estimates the number of tokens in text at roughly four
// characters per token. Any non-empty text counts as at least one token.
func CountTokens(text string) int {
	n := len([]rune(text))
	switch {
	case n == 0:
		return 0
	case n < 4:
		return 1
	}
	return n / 4
}

// PromptEstimate holds per-message token estimates for one chat request.
type PromptEstimate struct {
	System int
	Prompt int
}

// Total is the estimated prompt size sent to the model.
func (e PromptEstimate) Total() int { return e.System + e.Prompt }

// EstimatePrompt estimates the system and user messages of a request.
func EstimatePrompt(system, prompt string) PromptEstimate {
	return PromptEstimate{System: CountTokens(system), Prompt: CountTokens(prompt)}
}
