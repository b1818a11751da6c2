package app

import (
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/jkautto/letterpress/internal/assemble"
)

// RenderMarkdown formats a newsletter as a Markdown document for the CLI
// output path. RawOutput diagnostics are deliberately omitted; they are an
// API-level concern.
func RenderMarkdown(n assemble.Newsletter) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(n.Headline)
	sb.WriteString("\n\n")
	sb.WriteString(n.Introduction)
	sb.WriteString("\n")
	for _, s := range n.Sections {
		sb.WriteString("\n")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	sb.WriteString("\n**")
	sb.WriteString(n.CTA)
	sb.WriteString("**\n")
	return sb.String()
}

// WritePDF renders the newsletter into a simple one-column PDF. Layout is
// intentionally minimal: headline, introduction, body paragraphs, bold CTA.
func WritePDF(n assemble.Newsletter, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, n.Headline, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, n.Introduction, "", "L", false)
	pdf.Ln(4)

	for _, s := range n.Sections {
		pdf.MultiCell(0, 5, s, "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 5, n.CTA, "", "L", false)

	return pdf.OutputFileAndClose(outPath)
}
