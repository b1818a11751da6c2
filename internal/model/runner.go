package model

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jkautto/letterpress/internal/prompt"
)

// DefaultGenerationTimeout bounds one section's generation wall-clock time.
const DefaultGenerationTimeout = 60 * time.Second

// Runner executes prompt specs against registry-held models. Any inference
// fault (timeout, backend error, panic in the client) produces a failed
// GenerationResult instead of propagating: one bad section must never
// crash a request.
type Runner struct {
	Registry *Registry
	// Timeout per generation call. Zero means DefaultGenerationTimeout.
	Timeout time.Duration
	// Cache, when non-nil, stores raw generations keyed by model and prompt.
	Cache *GenCache
}

// Run generates text for one prompt spec on the given model.
func (r *Runner) Run(ctx context.Context, id ID, spec prompt.Spec) (res GenerationResult) {
	res = GenerationResult{Kind: spec.Kind}
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("section", spec.Kind.String()).Msg("inference panicked")
			res = GenerationResult{Kind: spec.Kind}
		}
	}()

	h, cfg, err := r.Registry.acquire(id)
	if err != nil {
		log.Warn().Err(err).Str("section", spec.Kind.String()).Msg("model unavailable")
		return res
	}

	key := KeyFrom(string(id), spec.Text)
	if r.Cache != nil {
		if raw, ok, _ := r.Cache.Get(ctx, key); ok {
			return GenerationResult{Kind: spec.Kind, RawText: string(raw), Succeeded: true}
		}
	}

	// Serialize inference per model id.
	h.mu.Lock()
	defer h.mu.Unlock()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out string
	if cfg.SupportsInstructions {
		resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: cfg.Upstream,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: spec.Text},
			},
			MaxTokens:   spec.MaxNewTokens,
			Temperature: cfg.Temperature,
			N:           1,
		})
		if err != nil {
			log.Warn().Err(err).Str("section", spec.Kind.String()).Str("model", string(id)).Msg("generation failed")
			return res
		}
		if len(resp.Choices) > 0 {
			out = resp.Choices[0].Message.Content
		}
	} else {
		resp, err := h.client.CreateCompletion(ctx, openai.CompletionRequest{
			Model:       cfg.Upstream,
			Prompt:      spec.Text,
			MaxTokens:   spec.MaxNewTokens,
			Temperature: cfg.Temperature,
			N:           1,
		})
		if err != nil {
			log.Warn().Err(err).Str("section", spec.Kind.String()).Str("model", string(id)).Msg("generation failed")
			return res
		}
		if len(resp.Choices) > 0 {
			out = resp.Choices[0].Text
		}
	}

	out = strings.TrimSpace(out)
	if out == "" {
		log.Warn().Str("section", spec.Kind.String()).Str("model", string(id)).Msg("empty generation")
		return res
	}
	if r.Cache != nil {
		_ = r.Cache.Save(ctx, key, []byte(out))
	}
	return GenerationResult{Kind: spec.Kind, RawText: out, Succeeded: true}
}
