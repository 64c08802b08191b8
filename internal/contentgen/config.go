package contentgen

// Config controls LLM-backed generation.
type Config struct {
	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MaxExcluded caps how many already-seen prompts go into the prompt.
	MaxExcluded int

	// StepsMaxTokens is the token budget for a worked solution.
	StepsMaxTokens int
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      2048,
		Temperature:    0.8,
		MaxExcluded:    10,
		StepsMaxTokens: 768,
	}
}
