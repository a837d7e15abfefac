// Package pdf extracts readable text from uploaded PDF documents.
//
// We use the ledongthuc/pdf library to read each page's positioned glyphs.
// It's a pure Go implementation, no CGO required. The glyphs are merged into
// word fragments and handed to Reconstruct, which rebuilds lines from their
// baselines.
package pdf

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MediaType is the declared content type of PDF uploads.
const MediaType = "application/pdf"

// wordGapRatio is the horizontal gap, as a fraction of the font size, that
// separates two words on the same baseline.
const wordGapRatio = 0.2

// ExtractionResult holds the output from a PDF text extraction.
type ExtractionResult struct {
	Text      string // Reconstructed text content
	PageCount int    // Number of pages
	WordCount int    // Word count
}

// Extractor reads PDFs held in memory.
type Extractor struct{}

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads a PDF from memory and reconstructs the text of every page.
//
// Go Pattern: We accept a byte slice because the pdf library requires
// io.ReaderAt for random access to the PDF structure, and bytes.Reader
// gives us that for free.
func (e *Extractor) Extract(data []byte) (*ExtractionResult, error) {
	if !ValidatePDF(data) {
		return nil, fmt.Errorf("not a PDF document")
	}

	pdfReader, err := openReader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pageCount := pdfReader.NumPage()
	pages := make([][]Fragment, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		fragments, err := pageFragments(pdfReader.Page(i))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, fragments)
	}

	text := Reconstruct(pages)
	return &ExtractionResult{
		Text:      text,
		PageCount: pageCount,
		WordCount: countWords(text),
	}, nil
}

// openReader wraps pdf.NewReader, which panics on some malformed files.
func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// pageFragments merges the glyphs of a page into word fragments in content
// stream order.
func pageFragments(page pdf.Page) (fragments []Fragment, err error) {
	if page.V.IsNull() || page.V.Key("Contents").IsNull() {
		return nil, nil
	}

	// The content stream interpreter reports syntax errors by panicking.
	defer func() {
		if rec := recover(); rec != nil {
			fragments = nil
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()

	var (
		word     strings.Builder
		baseline float64
		endX     float64
	)
	flush := func() {
		if word.Len() > 0 {
			fragments = append(fragments, Fragment{Text: word.String(), Baseline: baseline})
			word.Reset()
		}
	}

	for _, glyph := range page.Content().Text {
		if strings.TrimSpace(glyph.S) == "" {
			flush()
			continue
		}
		if word.Len() > 0 && (glyph.Y != baseline || isWordGap(glyph.X-endX, glyph.FontSize)) {
			flush()
		}
		if word.Len() == 0 {
			baseline = glyph.Y
		}
		word.WriteString(glyph.S)
		endX = glyph.X + glyph.W
	}
	flush()

	return fragments, nil
}

func isWordGap(gap, fontSize float64) bool {
	if fontSize <= 0 {
		fontSize = 1
	}
	limit := fontSize * wordGapRatio
	return gap > limit || gap < -limit
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// IsPDF reports whether a declared media type names a PDF. Parameters such
// as "; charset=binary" are ignored.
func IsPDF(mediaType string) bool {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(mediaType), MediaType)
	}
	return parsed == MediaType
}
