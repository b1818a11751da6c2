// Package parse converts raw model generations into clean section text.
// Small local models frequently ignore instructions, so every path here
// resolves to an explicit outcome: a Structured extraction when the model
// followed the requested shape, a Fallback heuristic otherwise, and a fixed
// placeholder when the output is unusable. No path returns an error.
package parse

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"

	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/normalize"
	"github.com/jkautto/letterpress/internal/prompt"
)

// Outcome is the parsed value for one section. Degraded marks values
// produced by fallback heuristics or placeholder substitution rather than
// a well-formatted model response.
type Outcome struct {
	Text     string
	Degraded bool
}

const (
	maxHeadlineChars = 80
	maxIntroChars    = 400
	maxSectionChars  = 600
	maxCTAChars      = 200
)

// Parse extracts the section value from a generation result. spec is the
// prompt that produced the result; it is used to strip echoed instruction
// or source lines the model may have copied back.
func Parse(res model.GenerationResult, spec prompt.Spec) Outcome {
	raw := strings.TrimSpace(res.RawText)
	if !res.Succeeded || raw == "" {
		return Outcome{Text: Placeholder(spec.Kind), Degraded: true}
	}

	cleaned := stripEcho(raw, spec.Text)
	if text, ok := structured(cleaned, spec.Kind); ok {
		return Outcome{Text: text}
	}
	// The ladder works on the echo-stripped text too; running it on the
	// raw output would hand an echoed instruction line straight to the
	// headline and introduction heuristics.
	if text := fallback(cleaned, spec.Kind); text != "" {
		return Outcome{Text: text, Degraded: true}
	}
	return Outcome{Text: Placeholder(spec.Kind), Degraded: true}
}

// Placeholder returns the fixed substitute used when a section's generation
// produced nothing usable.
func Placeholder(kind prompt.SectionKind) string {
	switch kind {
	case prompt.Headline:
		return "Newsletter update"
	case prompt.Introduction:
		return "This edition rounds up the highlights from the source article."
	case prompt.CTA:
		return "Read the full article to learn more."
	default:
		return "Content for this section could not be generated."
	}
}

// stripEcho removes a leading copy of the prompt and any leading lines the
// model parroted back from the instruction or embedded source text.
func stripEcho(raw, promptText string) string {
	if promptText != "" && strings.HasPrefix(raw, promptText) {
		raw = strings.TrimSpace(raw[len(promptText):])
	}
	lines := strings.Split(raw, "\n")
	start := 0
	for start < len(lines) {
		t := strings.TrimSpace(lines[start])
		if t == "" {
			start++
			continue
		}
		// Only lines long enough to be unambiguous count as echoes.
		if len(t) >= 12 && strings.Contains(promptText, t) {
			start++
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

// structured accepts output that already matches the shape the prompt asked
// for and returns it essentially verbatim.
func structured(text string, kind prompt.SectionKind) (string, bool) {
	if text == "" {
		return "", false
	}
	switch kind {
	case prompt.Headline:
		line := firstNonEmptyLine(text)
		line = strings.Trim(line, `"'#* `)
		words := len(strings.Fields(line))
		if words >= 3 && words <= 15 && len(line) <= maxHeadlineChars+40 {
			return line, true
		}
	case prompt.CTA:
		lines := nonEmptyLines(text)
		if len(lines) == 1 {
			line := strings.Trim(lines[0], `"' `)
			if line != "" && len(line) <= maxCTAChars {
				return line, true
			}
		}
	case prompt.Introduction:
		if len(text) <= maxIntroChars+100 && strings.ContainsAny(text, ".!?") {
			return text, true
		}
	case prompt.Section:
		if len(text) >= 40 && len(text) <= maxSectionChars+200 {
			return text, true
		}
	}
	return "", false
}

// fallback applies the heuristic ladder to otherwise shapeless output.
// text has already been echo-stripped; an empty string falls through to
// the placeholder.
func fallback(text string, kind prompt.SectionKind) string {
	switch kind {
	case prompt.Headline:
		return clip(firstNonEmptyLine(text), maxHeadlineChars)
	case prompt.Introduction:
		return clip(firstSentences(text, 3), maxIntroChars)
	case prompt.Section:
		return normalize.Truncate(strings.TrimSpace(text), maxSectionChars)
	case prompt.CTA:
		if last := lastSentence(text); last != "" {
			return clip(last, maxCTAChars)
		}
		return clip(firstNonEmptyLine(text), maxCTAChars)
	}
	return ""
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func firstSentences(s string, n int) string {
	var b strings.Builder
	count := 0
	tokens := sentences.FromString(strings.TrimSpace(s))
	for tokens.Next() && count < n {
		b.WriteString(tokens.Value())
		count++
	}
	return strings.TrimSpace(b.String())
}

func lastSentence(s string) string {
	var last string
	tokens := sentences.FromString(strings.TrimSpace(s))
	for tokens.Next() {
		if t := strings.TrimSpace(tokens.Value()); t != "" {
			last = t
		}
	}
	return last
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return normalize.Truncate(s, max)
}
