// Package app wires the newsletter pipeline together: extraction,
// normalization, prompting, generation, parsing, and assembly. The HTTP
// and CLI layers stay thin and delegate here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jkautto/letterpress/internal/assemble"
	"github.com/jkautto/letterpress/internal/budget"
	"github.com/jkautto/letterpress/internal/extract"
	"github.com/jkautto/letterpress/internal/fetch"
	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/normalize"
	"github.com/jkautto/letterpress/internal/parse"
	"github.com/jkautto/letterpress/internal/prompt"
)

// App owns the long-lived pipeline components. Construct once, share
// across requests; the model registry is the only mutable state inside.
type App struct {
	cfg       Config
	extractor *extract.Extractor
	runner    *model.Runner
}

// New builds an App from configuration.
func New(cfg Config) *App {
	cfg = cfg.withDefaults()

	fetcher := &fetch.Client{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: cfg.FetchTimeout,
		RedirectMaxHops:   5,
		MaxBodyBytes:      int64(cfg.MaxUploadBytes),
	}
	runner := &model.Runner{
		Registry: model.NewRegistry(cfg.LLMBaseURL, cfg.LLMAPIKey),
		Timeout:  cfg.GenerationTimeout,
	}
	if cfg.CacheDir != "" {
		runner.Cache = &model.GenCache{Dir: cfg.CacheDir}
	}
	return &App{
		cfg:       cfg,
		extractor: &extract.Extractor{Fetcher: fetcher, MaxUploadBytes: cfg.MaxUploadBytes},
		runner:    runner,
	}
}

// Request is one newsletter generation request. Exactly one of URL or
// Document is set.
type Request struct {
	URL          string
	Document     []byte
	DocumentKind extract.OriginKind
	Model        model.ID
	Audience     prompt.Audience
}

// Reserved output tokens per generation call; sized to the largest
// per-section bound plus framing overhead.
const reservedOutputTokens = 220

// Rough instruction-scaffold size used when budgeting how much source text
// a prompt may embed.
const instructionChars = 600

// Generate runs the full pipeline for one request. Extraction errors abort
// immediately with their taxonomy kind; generation faults degrade
// per-section and only escalate to ModelError when nothing usable came
// back at all.
func (a *App) Generate(ctx context.Context, req Request) (assemble.Newsletter, error) {
	mcfg, ok := model.Lookup(req.Model)
	if !ok {
		return assemble.Newsletter{}, newError(KindModel, nil, fmt.Sprintf("unknown model %q", req.Model))
	}

	src, err := a.extractSource(ctx, req)
	if err != nil {
		return assemble.Newsletter{}, err
	}
	log.Debug().Str("origin", string(src.Origin)).Int("bytes", src.ByteSize).Int("chars", len(src.RawText)).Msg("source extracted")

	charBudget := budget.SourceCharBudget(mcfg.ContextTokens, instructionChars, reservedOutputTokens)
	text := normalize.Normalize(src.RawText, charBudget)
	if text == "" {
		return assemble.Newsletter{}, newError(KindParse, nil, "source text empty after cleanup")
	}

	builder := &prompt.Builder{Instruct: mcfg.SupportsInstructions}
	specs := builder.Build(text, req.Audience)

	var items []assemble.Item
	var headline string
	for _, spec := range specs {
		res := a.runner.Run(ctx, req.Model, spec)
		out := parse.Parse(res, spec)
		if spec.Kind == prompt.Headline && !out.Degraded {
			headline = out.Text
		}
		if out.Degraded {
			log.Warn().Str("section", spec.Kind.String()).Msg("section degraded to fallback")
		}
		items = append(items, assemble.Item{Result: res, Outcome: out})
	}

	// The CTA is the one deliberately chained prompt: it anchors on the
	// generated headline when one exists.
	ctaSpec := builder.BuildCTA(text, headline, req.Audience)
	ctaRes := a.runner.Run(ctx, req.Model, ctaSpec)
	ctaOut := parse.Parse(ctaRes, ctaSpec)
	if ctaOut.Degraded {
		log.Warn().Str("section", prompt.CTA.String()).Msg("section degraded to fallback")
	}
	items = append(items, assemble.Item{Result: ctaRes, Outcome: ctaOut})

	n, err := assemble.Assemble(items)
	if err != nil {
		if errors.Is(err, assemble.ErrAllDegraded) {
			return assemble.Newsletter{}, newError(KindModel, err, "model produced no usable output for any section")
		}
		return assemble.Newsletter{}, newError(KindModel, err, err.Error())
	}
	log.Info().Str("model", string(req.Model)).Str("audience", string(req.Audience)).Int("sections", len(n.Sections)).Bool("degraded", n.RawOutput != "").Msg("newsletter assembled")
	return n, nil
}

func (a *App) extractSource(ctx context.Context, req Request) (extract.SourceDocument, error) {
	switch {
	case req.URL != "":
		src, err := a.extractor.FromURL(ctx, req.URL)
		if err != nil {
			if errors.Is(err, extract.ErrNoText) {
				return extract.SourceDocument{}, newError(KindParse, err, "could not extract article text from URL")
			}
			return extract.SourceDocument{}, newError(KindNetwork, err, fmt.Sprintf("could not fetch URL: %v", err))
		}
		return src, nil
	case req.DocumentKind == extract.OriginPDF:
		return a.mapDocErr(a.extractor.FromPDF(req.Document))
	case req.DocumentKind == extract.OriginDOCX:
		return a.mapDocErr(a.extractor.FromDOCX(req.Document))
	}
	return extract.SourceDocument{}, newError(KindParse, nil, "no source provided")
}

func (a *App) mapDocErr(src extract.SourceDocument, err error) (extract.SourceDocument, error) {
	if err == nil {
		return src, nil
	}
	if errors.Is(err, extract.ErrTooLarge) {
		return extract.SourceDocument{}, newError(KindSizeLimit, err, err.Error())
	}
	return extract.SourceDocument{}, newError(KindParse, err, err.Error())
}
