// Package budget estimates token usage so prompts stay inside a model's
// context window. Estimates are deliberately conservative; small local
// models fail hard on overruns.
package budget

import "math"

// EstimateTokensFromChars converts a character count into an estimated token
// count using a conservative heuristic (~4 chars per token in English). The
// result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// Headroom returns a safety margin to subtract from a model context so
// prompt sizing survives tokenizer and framing overheads: the larger of 5%
// of the context or a fixed floor of 64 tokens. The floor is small because
// the catalogue's models have tiny windows to begin with.
func Headroom(contextTokens int) int {
	dyn := int(math.Ceil(float64(contextTokens) * 0.05))
	if dyn < 64 {
		return 64
	}
	return dyn
}

// SourceCharBudget converts a model's context window into the number of
// source-text characters a prompt may embed, after reserving room for the
// instruction scaffold and the generated output. Never negative.
func SourceCharBudget(contextTokens, instructionChars, reservedOutputTokens int) int {
	remaining := contextTokens - Headroom(contextTokens) - reservedOutputTokens - EstimateTokensFromChars(instructionChars)
	if remaining <= 0 {
		return 0
	}
	return remaining * 4
}

// Fits reports whether a prompt of promptTokens fits the context window
// when reserving reservedOutputTokens for generation.
func Fits(contextTokens, reservedOutputTokens, promptTokens int) bool {
	return contextTokens-Headroom(contextTokens)-reservedOutputTokens-promptTokens > 0
}
