// Package extract turns a URL or an uploaded document byte stream into a
// plain-text SourceDocument for the newsletter pipeline.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jkautto/letterpress/internal/fetch"
)

// OriginKind identifies where a source document came from.
type OriginKind string

const (
	OriginURL  OriginKind = "url"
	OriginPDF  OriginKind = "pdf"
	OriginDOCX OriginKind = "docx"
)

// SourceDocument is the immutable output of extraction, handed by value to
// normalization. It is never persisted.
type SourceDocument struct {
	Origin   OriginKind
	Title    string
	RawText  string
	ByteSize int
}

var (
	// ErrTooLarge signals the input exceeded the byte cap. Checked before
	// any parsing happens.
	ErrTooLarge = errors.New("input exceeds size limit")
	// ErrNoText signals the source yielded no usable article text
	// (empty page, scanned PDF without a text layer, empty document).
	ErrNoText = errors.New("no extractable text")
)

const (
	// DefaultMaxUploadBytes mirrors the upload cap of the HTTP surface.
	DefaultMaxUploadBytes = 16 << 20
	// DefaultMinTextChars is the threshold below which a page is not
	// considered an article.
	DefaultMinTextChars = 200
)

// Extractor converts URLs and document byte streams into SourceDocuments.
type Extractor struct {
	Fetcher *fetch.Client
	// MaxUploadBytes caps PDF/DOCX input size. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int
	// MinTextChars is the minimum extracted length to accept a URL source.
	// Zero means DefaultMinTextChars.
	MinTextChars int
}

// Parse hooks, swappable in tests to observe that oversized inputs never
// reach the parser.
var (
	parsePDF  = pdfText
	parseDOCX = docxText
)

// FromURL fetches a page and extracts readable article text.
func (e *Extractor) FromURL(ctx context.Context, pageURL string) (SourceDocument, error) {
	if e.Fetcher == nil {
		return SourceDocument{}, errors.New("extractor: fetcher not configured")
	}
	body, _, err := e.Fetcher.Get(ctx, pageURL)
	if err != nil {
		return SourceDocument{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	doc := FromHTML(body)
	text := strings.TrimSpace(doc.Text)
	if len(text) < e.minTextChars() {
		return SourceDocument{}, fmt.Errorf("page %s is not an article: %w", pageURL, ErrNoText)
	}
	return SourceDocument{Origin: OriginURL, Title: doc.Title, RawText: text, ByteSize: len(body)}, nil
}

// FromPDF extracts text page by page, concatenated with paragraph breaks.
// The size cap is enforced before the parser sees a single byte.
func (e *Extractor) FromPDF(data []byte) (SourceDocument, error) {
	if err := e.checkSize(len(data)); err != nil {
		return SourceDocument{}, err
	}
	text, err := parsePDF(data)
	if err != nil {
		return SourceDocument{}, fmt.Errorf("pdf: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SourceDocument{}, fmt.Errorf("pdf has no text layer: %w", ErrNoText)
	}
	return SourceDocument{Origin: OriginPDF, RawText: text, ByteSize: len(data)}, nil
}

// FromDOCX extracts paragraph text in document order. Same failure contract
// as FromPDF.
func (e *Extractor) FromDOCX(data []byte) (SourceDocument, error) {
	if err := e.checkSize(len(data)); err != nil {
		return SourceDocument{}, err
	}
	text, err := parseDOCX(data)
	if err != nil {
		return SourceDocument{}, fmt.Errorf("docx: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SourceDocument{}, fmt.Errorf("docx has no paragraph text: %w", ErrNoText)
	}
	return SourceDocument{Origin: OriginDOCX, RawText: text, ByteSize: len(data)}, nil
}

func (e *Extractor) checkSize(n int) error {
	max := e.MaxUploadBytes
	if max <= 0 {
		max = DefaultMaxUploadBytes
	}
	if n > max {
		return fmt.Errorf("%d bytes over %d byte cap: %w", n, max, ErrTooLarge)
	}
	return nil
}

func (e *Extractor) minTextChars() int {
	if e.MinTextChars > 0 {
		return e.MinTextChars
	}
	return DefaultMinTextChars
}
