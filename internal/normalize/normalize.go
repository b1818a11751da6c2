// Package normalize cleans extracted article text and truncates it to a
// character budget sized to the target model's context window. The cleanup
// is an ordered sequence of pure rules so the whole stage stays
// deterministic: identical input and budget always yield identical output.
package normalize

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
	"golang.org/x/text/unicode/norm"
)

// Rule is one pure transformation over the text. Rules run in the order
// returned by Rules.
type Rule struct {
	// Name identifies the rule in logs and tests.
	Name string
	// Apply transforms the text. Must be pure.
	Apply func(string) string
}

// Rules returns the cleanup pipeline:
//  1. unicode: NFC normalization and control-character scrub.
//  2. repeated-lines: drop short lines occurring three or more times,
//     which are almost always per-page boilerplate (nav labels, footers).
//  3. edge-boilerplate: trim leading and trailing runs of very short
//     non-prose lines left over from navigation chrome.
//  4. blank-lines: collapse runs of blank lines to a single one.
func Rules() []Rule {
	return []Rule{
		{Name: "unicode", Apply: normalizeUnicode},
		{Name: "repeated-lines", Apply: dropRepeatedShortLines},
		{Name: "edge-boilerplate", Apply: trimEdgeBoilerplate},
		{Name: "blank-lines", Apply: collapseBlankLines},
	}
}

// Normalize runs the cleanup rules and truncates the result to budgetChars,
// cutting at a paragraph boundary when possible, a sentence boundary
// otherwise, and never mid-word. A non-positive budget disables truncation.
func Normalize(raw string, budgetChars int) string {
	text := raw
	for _, r := range Rules() {
		text = r.Apply(text)
	}
	text = strings.TrimSpace(text)
	if budgetChars > 0 {
		text = Truncate(text, budgetChars)
	}
	return text
}

// Truncate cuts s to at most budget bytes, preferring the last paragraph
// break that fits, then the last complete sentence, then the last word
// boundary.
func Truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	if budget <= 0 {
		return ""
	}

	// Paragraph boundary: only worth it if we keep a reasonable share of
	// the budget, otherwise a single huge paragraph would truncate to
	// nearly nothing.
	if idx := strings.LastIndex(s[:budget], "\n\n"); idx >= budget/2 {
		return strings.TrimSpace(s[:idx])
	}

	// Sentence boundary via UAX#29 segmentation.
	var b strings.Builder
	tokens := sentences.FromString(s)
	for tokens.Next() {
		sent := tokens.Value()
		if b.Len()+len(sent) > budget {
			break
		}
		b.WriteString(sent)
	}
	if out := strings.TrimSpace(b.String()); out != "" {
		return out
	}

	// Last resort: cut at the final space inside the budget so we never
	// split a word.
	cut := s[:budget]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

func normalizeUnicode(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dropRepeatedShortLines removes every occurrence of short lines that
// appear three or more times. Prose rarely repeats verbatim; menus,
// cookie notices, and footers do.
func dropRepeatedShortLines(s string) string {
	lines := strings.Split(s, "\n")
	counts := make(map[string]int, len(lines))
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t != "" && len(t) < 80 {
			counts[t]++
		}
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t != "" && len(t) < 80 && counts[t] >= 3 {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// trimEdgeBoilerplate drops leading and trailing runs of lines that do not
// look like prose: very short and without sentence-ending punctuation.
func trimEdgeBoilerplate(s string) string {
	lines := strings.Split(s, "\n")
	start := 0
	for start < len(lines) && isBoilerplateLine(lines[start]) {
		start++
	}
	end := len(lines)
	for end > start && isBoilerplateLine(lines[end-1]) {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func isBoilerplateLine(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return true
	}
	if len(t) >= 40 {
		return false
	}
	return !strings.ContainsAny(t, ".!?")
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(out, "\n")
}
