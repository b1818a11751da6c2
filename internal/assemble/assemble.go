// Package assemble composes parsed section values into the final
// Newsletter. A degraded-but-partial newsletter is acceptable; one where
// every section degraded is not and fails assembly.
package assemble

import (
	"errors"
	"strings"

	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/parse"
	"github.com/jkautto/letterpress/internal/prompt"
)

// Newsletter is the assembled output returned to the caller. Every field is
// non-empty; Sections always holds 2 or 3 entries; RawOutput is present
// only when at least one section fell back to heuristics or a placeholder.
type Newsletter struct {
	Headline     string   `json:"headline"`
	Introduction string   `json:"introduction"`
	Sections     []string `json:"sections"`
	CTA          string   `json:"cta"`
	RawOutput    string   `json:"raw_output,omitempty"`
}

// Item pairs one section's generation with its parsed outcome.
type Item struct {
	Result  model.GenerationResult
	Outcome parse.Outcome
}

// ErrAllDegraded signals that no section produced usable model output; the
// caller reports this as a model failure instead of returning a newsletter
// of placeholders.
var ErrAllDegraded = errors.New("model produced no usable output for any section")

// Assemble fixes field order per the newsletter schema. Items arrive in
// generation order: headline, introduction, body sections, cta. Missing or
// surplus body sections are corrected so the 2–3 section invariant always
// holds.
func Assemble(items []Item) (Newsletter, error) {
	var n Newsletter
	degraded := 0

	for _, it := range items {
		if it.Outcome.Degraded {
			degraded++
		}
		switch it.Result.Kind {
		case prompt.Headline:
			n.Headline = it.Outcome.Text
		case prompt.Introduction:
			n.Introduction = it.Outcome.Text
		case prompt.Section:
			n.Sections = append(n.Sections, it.Outcome.Text)
		case prompt.CTA:
			n.CTA = it.Outcome.Text
		}
	}

	if len(items) == 0 || degraded == len(items) {
		return Newsletter{}, ErrAllDegraded
	}

	// Enforce the schema invariants even if a caller handed us an odd
	// section count.
	if n.Headline == "" {
		n.Headline = parse.Placeholder(prompt.Headline)
		degraded++
	}
	if n.Introduction == "" {
		n.Introduction = parse.Placeholder(prompt.Introduction)
		degraded++
	}
	if n.CTA == "" {
		n.CTA = parse.Placeholder(prompt.CTA)
		degraded++
	}
	for len(n.Sections) < 2 {
		n.Sections = append(n.Sections, parse.Placeholder(prompt.Section))
		degraded++
	}
	if len(n.Sections) > 3 {
		n.Sections = n.Sections[:3]
	}

	if degraded > 0 {
		// Diagnostic trail: every raw model output, in generation order.
		var all []string
		for _, it := range items {
			if raw := strings.TrimSpace(it.Result.RawText); raw != "" {
				all = append(all, raw)
			}
		}
		n.RawOutput = strings.Join(all, "\n\n---\n\n")
	}
	return n, nil
}
