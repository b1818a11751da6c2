// Package model owns the closed catalogue of supported generation models
// and executes bounded text generation against an OpenAI-compatible local
// backend (llama.cpp server, text-generation-inference, or similar).
package model

import (
	"fmt"
	"strings"

	"github.com/jkautto/letterpress/internal/prompt"
)

// ID identifies one entry of the closed model catalogue.
type ID string

const (
	GPT2       ID = "gpt2"
	DistilGPT2 ID = "distilgpt2"
	GPTNeo125M ID = "gpt-neo-125m"
	Phi3Mini   ID = "phi-3-mini"
)

// Config is the static capability record for one model. The catalogue is
// process-wide and never mutated.
type Config struct {
	ID          ID
	DisplayName string
	// Upstream is the model identifier the backend expects.
	Upstream string
	// ContextTokens is the model's context window.
	ContextTokens int
	// SupportsInstructions marks instruction-tuned models; they receive
	// chat-style prompts, base models receive completion framing.
	SupportsInstructions bool
	// Temperature used for all generations with this model.
	Temperature float32
}

var catalog = []Config{
	{ID: GPT2, DisplayName: "GPT-2 (default, fast)", Upstream: "gpt2", ContextTokens: 1024, Temperature: 0.8},
	{ID: DistilGPT2, DisplayName: "DistilGPT-2 (faster)", Upstream: "distilgpt2", ContextTokens: 1024, Temperature: 0.8},
	{ID: GPTNeo125M, DisplayName: "GPT-Neo 125M (better quality)", Upstream: "EleutherAI/gpt-neo-125M", ContextTokens: 2048, Temperature: 0.8},
	{ID: Phi3Mini, DisplayName: "Phi-3 Mini (high quality)", Upstream: "microsoft/Phi-3-mini-4k-instruct", ContextTokens: 4096, SupportsInstructions: true, Temperature: 0.7},
}

// Catalog returns the model catalogue in display order.
func Catalog() []Config {
	out := make([]Config, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the capability record for an id.
func Lookup(id ID) (Config, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}

// ParseID maps a wire identifier to a catalogue ID. The empty string
// selects the default model.
func ParseID(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GPT2, nil
	}
	for _, c := range catalog {
		if s == string(c.ID) || strings.EqualFold(s, c.Upstream) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("unknown model: %q", s)
}

// GenerationResult is the outcome of one section's generation. A failed
// result carries empty text; the parser substitutes a placeholder.
type GenerationResult struct {
	Kind      prompt.SectionKind
	RawText   string
	Succeeded bool
}
