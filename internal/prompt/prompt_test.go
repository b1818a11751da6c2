package prompt

import (
	"strings"
	"testing"
)

const sourceText = `The migration to the new billing engine finished in March.
Invoices now settle within two hours instead of two days.
The engineering team replaced the nightly batch job with a streaming pipeline.
Customer complaints about delayed invoices dropped by eighty percent.
The rollout required no downtime.`

func TestBuild_SectionOrderAndCount(t *testing.T) {
	b := &Builder{}
	specs := b.Build(sourceText, Business)

	if specs[0].Kind != Headline || specs[1].Kind != Introduction {
		t.Fatalf("expected headline then introduction, got %v then %v", specs[0].Kind, specs[1].Kind)
	}
	sections := 0
	for _, s := range specs[2:] {
		if s.Kind != Section {
			t.Fatalf("unexpected kind after introduction: %v", s.Kind)
		}
		sections++
	}
	if sections < 2 || sections > 3 {
		t.Fatalf("expected 2-3 section prompts, got %d", sections)
	}
}

func TestBuild_AudienceFramingDiffers(t *testing.T) {
	b := &Builder{}
	business := b.Build(sourceText, Business)
	technical := b.Build(sourceText, Technical)

	if len(business) != len(technical) {
		t.Fatalf("audience changed the number of prompts: %d vs %d", len(business), len(technical))
	}
	for i := range business {
		if business[i].Text == technical[i].Text {
			t.Fatalf("prompt %d identical across audiences", i)
		}
		// The embedded source text must be identical; only framing differs.
		if business[i].Kind == Headline || business[i].Kind == Introduction {
			if !strings.Contains(business[i].Text, "billing engine") {
				t.Fatalf("prompt %d lost the source text", i)
			}
		}
	}
	if !strings.Contains(business[0].Text, "return on investment") {
		t.Fatalf("business framing missing: %q", business[0].Text)
	}
	if !strings.Contains(technical[0].Text, "implementation details") {
		t.Fatalf("technical framing missing: %q", technical[0].Text)
	}
}

func TestBuild_NoPlaceholderTokens(t *testing.T) {
	for _, instruct := range []bool{false, true} {
		b := &Builder{Instruct: instruct}
		specs := append(b.Build(sourceText, Technical), b.BuildCTA(sourceText, "A Headline", Technical))
		for _, s := range specs {
			if strings.Contains(s.Text, "___") || strings.Contains(s.Text, "{{") {
				t.Fatalf("prompt leaks placeholder tokens: %q", s.Text)
			}
			if strings.TrimSpace(s.Text) == "" {
				t.Fatalf("empty prompt for kind %v", s.Kind)
			}
		}
	}
}

func TestBuild_TokenBounds(t *testing.T) {
	b := &Builder{}
	specs := b.Build(sourceText, Business)
	if specs[0].MaxNewTokens != 20 {
		t.Fatalf("headline budget: got %d", specs[0].MaxNewTokens)
	}
	if specs[1].MaxNewTokens != 100 {
		t.Fatalf("introduction budget: got %d", specs[1].MaxNewTokens)
	}
	for _, s := range specs[2:] {
		if s.MaxNewTokens != 200 {
			t.Fatalf("section budget: got %d", s.MaxNewTokens)
		}
	}
	if cta := b.BuildCTA(sourceText, "", Business); cta.MaxNewTokens != 50 {
		t.Fatalf("cta budget: got %d", cta.MaxNewTokens)
	}
}

func TestBuildCTA_UsesHeadlineWhenPresent(t *testing.T) {
	b := &Builder{Instruct: true}
	withHeadline := b.BuildCTA(sourceText, "Billing Gets Faster", Business)
	if !strings.Contains(withHeadline.Text, "Billing Gets Faster") {
		t.Fatalf("expected headline anchor in CTA prompt: %q", withHeadline.Text)
	}
	withoutHeadline := b.BuildCTA(sourceText, "  ", Business)
	if !strings.Contains(withoutHeadline.Text, "billing engine") {
		t.Fatalf("expected source anchor in CTA prompt: %q", withoutHeadline.Text)
	}
}

func TestSplitChunks_ShortSourceStillYieldsTwo(t *testing.T) {
	chunks := SplitChunks("One single line about a product launch that cannot be split by lines.", 3)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for a one-line source, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestSplitChunks_LongSourceYieldsThree(t *testing.T) {
	chunks := SplitChunks(sourceText, 3)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0] == chunks[1] {
		t.Fatalf("chunks must cover distinct content")
	}
}

func TestParseAudience(t *testing.T) {
	if a, err := ParseAudience("Technical"); err != nil || a != Technical {
		t.Fatalf("ParseAudience(Technical) = %v, %v", a, err)
	}
	if a, err := ParseAudience(""); err != nil || a != Business {
		t.Fatalf("expected empty audience to default to business, got %v, %v", a, err)
	}
	if _, err := ParseAudience("students"); err == nil {
		t.Fatalf("expected error for unknown audience")
	}
}
