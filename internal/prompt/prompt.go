// Package prompt renders audience- and section-specific natural-language
// instructions around normalized source text. Prompts are independent of
// each other's outputs, with one deliberate exception: the call-to-action
// may reference the already-generated headline.
package prompt

import (
	"fmt"
	"strings"
)

// SectionKind identifies which newsletter field a prompt targets.
type SectionKind int

const (
	Headline SectionKind = iota
	Introduction
	Section
	CTA
)

func (k SectionKind) String() string {
	switch k {
	case Headline:
		return "headline"
	case Introduction:
		return "introduction"
	case Section:
		return "section"
	case CTA:
		return "cta"
	}
	return "unknown"
}

// Audience selects the framing mode for all prompts of a request.
type Audience string

const (
	Business  Audience = "business"
	Technical Audience = "technical"
)

// ParseAudience maps the wire identifier to an Audience.
func ParseAudience(s string) (Audience, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Business):
		return Business, nil
	case string(Technical):
		return Technical, nil
	}
	return "", fmt.Errorf("unknown audience: %q", s)
}

// DisplayName returns the catalogue name shown in selection UIs.
func (a Audience) DisplayName() string {
	switch a {
	case Business:
		return "Business"
	case Technical:
		return "Technical"
	}
	return string(a)
}

// Audiences lists the closed audience catalogue in display order.
func Audiences() []Audience {
	return []Audience{Business, Technical}
}

// Spec is one rendered prompt: the text handed to the model plus the
// generation bounds for its section. Built fresh per request, never reused.
type Spec struct {
	Kind         SectionKind
	Audience     Audience
	Text         string
	MaxNewTokens int
}

// Per-section generation bounds, matching the output shape each
// instruction asks for.
const (
	headlineTokens = 20
	introTokens    = 100
	sectionTokens  = 200
	ctaTokens      = 50
)

// Builder renders prompts for one model family. Instruct selects plain
// imperative instructions for models trained to follow them; base models
// get completion framing that ends in a stub the model continues.
type Builder struct {
	Instruct bool
}

// Build returns the ordered prompts for headline, introduction, and 2–3
// body sections. The source text is embedded in full for headline and
// introduction; body sections each embed one contiguous chunk of it. The
// CTA prompt is built separately (see BuildCTA) because it may use the
// generated headline.
func (b *Builder) Build(source string, aud Audience) []Spec {
	specs := []Spec{
		{Kind: Headline, Audience: aud, MaxNewTokens: headlineTokens, Text: b.headline(source, aud)},
		{Kind: Introduction, Audience: aud, MaxNewTokens: introTokens, Text: b.introduction(source, aud)},
	}
	for _, chunk := range SplitChunks(source, 3) {
		specs = append(specs, Spec{Kind: Section, Audience: aud, MaxNewTokens: sectionTokens, Text: b.section(chunk, aud)})
	}
	return specs
}

// BuildCTA renders the call-to-action prompt. When a usable headline is
// available it anchors the CTA; otherwise the source text does.
func (b *Builder) BuildCTA(source, headline string, aud Audience) Spec {
	anchor := strings.TrimSpace(headline)
	var text string
	if b.Instruct {
		if anchor != "" {
			text = fmt.Sprintf("Write a one-sentence call to action for a newsletter with the headline %q. %s Reply with the call to action only.", anchor, framing(aud))
		} else {
			text = fmt.Sprintf("Write a one-sentence call to action closing a newsletter about this article. %s Reply with the call to action only.\n\nArticle:\n%s", framing(aud), source)
		}
	} else {
		if anchor != "" {
			text = fmt.Sprintf("Title: %s\n\n%s\nCall to action: ", anchor, framing(aud))
		} else {
			text = fmt.Sprintf("Article: %s\n\n%s\nCall to action: ", source, framing(aud))
		}
	}
	return Spec{Kind: CTA, Audience: aud, MaxNewTokens: ctaTokens, Text: text}
}

func (b *Builder) headline(source string, aud Audience) string {
	if b.Instruct {
		return fmt.Sprintf("Write one headline of 4 to 9 words for a newsletter based on this article. %s Reply with the headline only.\n\nArticle:\n%s", framing(aud), source)
	}
	return fmt.Sprintf("Article: %s\n\n%s\nBased on the given content write a headline of 4 to 9 words for the newsletter.\nHeadline: ", source, framing(aud))
}

func (b *Builder) introduction(source string, aud Audience) string {
	if b.Instruct {
		return fmt.Sprintf("Write a brief two-to-three sentence introduction for a newsletter based on this article. %s Reply with the introduction only.\n\nArticle:\n%s", framing(aud), source)
	}
	return fmt.Sprintf("Article: %s\n\n%s\nIntroduction: This article covers ", source, framing(aud))
}

func (b *Builder) section(chunk string, aud Audience) string {
	if b.Instruct {
		return fmt.Sprintf("Write one newsletter body paragraph based on this content. %s Reply with the paragraph only.\n\nContent:\n%s", framing(aud), chunk)
	}
	return fmt.Sprintf("Content: %s\n\n%s\nNewsletter section: ", chunk, framing(aud))
}

func framing(aud Audience) string {
	switch aud {
	case Technical:
		return "Write for a technical audience: focus on how it works, implementation details, and trade-offs."
	default:
		return "Write for business decision-makers: lead with outcomes, costs, and return on investment."
	}
}

// SplitChunks divides the source into at most max contiguous chunks of
// non-empty lines, one per body section. Short sources yield two chunks so
// the newsletter always carries at least two body sections.
func SplitChunks(source string, max int) []string {
	var lines []string
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	n := max
	if len(lines) < n {
		n = 2
	}
	if len(lines) >= n {
		size := (len(lines) + n - 1) / n
		chunks := make([]string, 0, n)
		for i := 0; i < len(lines); i += size {
			end := i + size
			if end > len(lines) {
				end = len(lines)
			}
			chunks = append(chunks, strings.Join(lines[i:end], "\n"))
		}
		return chunks
	}

	// Very short sources: split the raw text roughly in half at a word
	// boundary so both sections still see distinct content.
	text := strings.TrimSpace(source)
	mid := len(text) / 2
	if idx := strings.IndexByte(text[mid:], ' '); idx >= 0 {
		mid += idx
	}
	first := strings.TrimSpace(text[:mid])
	second := strings.TrimSpace(text[mid:])
	if second == "" {
		second = first
	}
	return []string{first, second}
}
