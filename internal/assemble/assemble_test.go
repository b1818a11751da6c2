package assemble

import (
	"errors"
	"testing"

	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/parse"
	"github.com/jkautto/letterpress/internal/prompt"
)

func ok(kind prompt.SectionKind, text string) Item {
	return Item{
		Result:  model.GenerationResult{Kind: kind, RawText: text, Succeeded: true},
		Outcome: parse.Outcome{Text: text},
	}
}

func bad(kind prompt.SectionKind, raw string) Item {
	return Item{
		Result:  model.GenerationResult{Kind: kind, RawText: raw, Succeeded: raw != ""},
		Outcome: parse.Outcome{Text: parse.Placeholder(kind), Degraded: true},
	}
}

func TestAssemble_CleanRun(t *testing.T) {
	n, err := Assemble([]Item{
		ok(prompt.Headline, "Billing Gets Faster"),
		ok(prompt.Introduction, "The migration finished in March."),
		ok(prompt.Section, "Section one text that is long enough."),
		ok(prompt.Section, "Section two text that is long enough."),
		ok(prompt.Section, "Section three text that is long enough."),
		ok(prompt.CTA, "Try it today."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Headline != "Billing Gets Faster" || n.CTA != "Try it today." {
		t.Fatalf("field order broken: %+v", n)
	}
	if len(n.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(n.Sections))
	}
	if n.RawOutput != "" {
		t.Fatalf("clean run must not carry raw_output, got %q", n.RawOutput)
	}
}

func TestAssemble_PartialDegradationKeepsNewsletter(t *testing.T) {
	n, err := Assemble([]Item{
		ok(prompt.Headline, "Billing Gets Faster"),
		bad(prompt.Introduction, "garbled model noise"),
		ok(prompt.Section, "Section one text that is long enough."),
		ok(prompt.Section, "Section two text that is long enough."),
		ok(prompt.CTA, "Try it today."),
	})
	if err != nil {
		t.Fatalf("partial degradation must still succeed: %v", err)
	}
	if n.Introduction != parse.Placeholder(prompt.Introduction) {
		t.Fatalf("expected placeholder introduction, got %q", n.Introduction)
	}
	if n.RawOutput == "" {
		t.Fatalf("degraded run must expose raw_output for diagnostics")
	}
	if len(n.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(n.Sections))
	}
}

func TestAssemble_AllDegradedFails(t *testing.T) {
	_, err := Assemble([]Item{
		bad(prompt.Headline, ""),
		bad(prompt.Introduction, ""),
		bad(prompt.Section, ""),
		bad(prompt.Section, ""),
		bad(prompt.CTA, ""),
	})
	if !errors.Is(err, ErrAllDegraded) {
		t.Fatalf("expected ErrAllDegraded, got %v", err)
	}
}

func TestAssemble_NoItemsFails(t *testing.T) {
	if _, err := Assemble(nil); !errors.Is(err, ErrAllDegraded) {
		t.Fatalf("expected ErrAllDegraded for empty input, got %v", err)
	}
}

func TestAssemble_SectionCountClamped(t *testing.T) {
	items := []Item{
		ok(prompt.Headline, "Headline Words Here"),
		ok(prompt.Introduction, "Intro sentence."),
		ok(prompt.Section, "Only one section made it through."),
		ok(prompt.CTA, "Act now."),
	}
	n, err := Assemble(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Sections) != 2 {
		t.Fatalf("expected padding to 2 sections, got %d", len(n.Sections))
	}

	items = append(items,
		ok(prompt.Section, "Section two."),
		ok(prompt.Section, "Section three."),
		ok(prompt.Section, "Section four."),
	)
	n, err = Assemble(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Sections) != 3 {
		t.Fatalf("expected clamping to 3 sections, got %d", len(n.Sections))
	}
}

func TestAssemble_AllFieldsNonEmpty(t *testing.T) {
	n, err := Assemble([]Item{
		ok(prompt.Headline, "Headline Words Here"),
		bad(prompt.Introduction, "noise"),
		ok(prompt.Section, "Section one."),
		bad(prompt.Section, "more noise"),
		bad(prompt.CTA, ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, f := range []string{n.Headline, n.Introduction, n.CTA} {
		if f == "" {
			t.Fatalf("field %d empty after assembly", i)
		}
	}
	for i, s := range n.Sections {
		if s == "" {
			t.Fatalf("section %d empty after assembly", i)
		}
	}
}
