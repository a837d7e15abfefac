// Package upload receives documents, extracts text from PDFs, and records the
// result in the per-identifier text cache.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/textcache"
)

// DefaultIdentifier is used when the caller does not name its cache slot.
const DefaultIdentifier = "default"

// TextExtractor turns PDF bytes into text.
type TextExtractor interface {
	Extract(data []byte) (*pdf.ExtractionResult, error)
}

// Document is one uploaded file.
type Document struct {
	Content    io.Reader
	MediaType  string // Declared by the client; may be empty
	Filename   string
	Identifier string
}

// Result describes a processed upload.
type Result struct {
	Identifier string
	Filename   string
	MediaType  string
	IsPDF      bool
	Text       string // Extracted text; empty for non-PDFs
	PageCount  int
	WordCount  int
}

// Service processes uploads.
type Service struct {
	storage   *Storage
	cache     *textcache.Store
	extractor TextExtractor
	log       *slog.Logger
}

// NewService creates an upload service.
func NewService(storage *Storage, cache *textcache.Store, extractor TextExtractor, log *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		cache:     cache,
		extractor: extractor,
		log:       log,
	}
}

// Process stores the document in its own slot, extracts its text when it is
// a PDF, and updates the cache entry for the document's identifier.
//
// A non-PDF resets the identifier's text to "". A PDF that fails to parse
// returns a processing error and leaves the existing entry alone.
func (s *Service) Process(ctx context.Context, doc Document) (*Result, error) {
	id := NormalizeIdentifier(doc.Identifier)

	slot, err := s.storage.NewSlot()
	if err != nil {
		return nil, fmt.Errorf("allocate storage: %w", err)
	}
	defer func() {
		if err := slot.Remove(); err != nil {
			s.log.Warn("failed to remove upload slot", "dir", slot.Dir(), "err", err)
		}
	}()

	path, err := slot.Save(doc.Filename, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stored upload: %w", err)
	}

	result := &Result{
		Identifier: id,
		Filename:   doc.Filename,
		MediaType:  resolveMediaType(doc.MediaType, data),
	}
	result.IsPDF = pdf.IsPDF(result.MediaType)

	if !result.IsPDF {
		s.cache.Set(id, "")
		s.log.Info("stored non-PDF upload", "id", id, "filename", doc.Filename, "media_type", result.MediaType, "bytes", len(data))
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extracted, err := s.extractor.Extract(data)
	if err != nil {
		s.log.Error("PDF extraction failed", "id", id, "filename", doc.Filename, "err", err)
		return nil, apperrors.NewProcessingError("File processing failed", err)
	}

	s.cache.Set(id, extracted.Text)
	result.Text = extracted.Text
	result.PageCount = extracted.PageCount
	result.WordCount = extracted.WordCount

	s.log.Info("extracted PDF text", "id", id, "filename", doc.Filename, "pages", extracted.PageCount, "words", extracted.WordCount)
	return result, nil
}

// NormalizeIdentifier maps blank identifiers onto DefaultIdentifier.
// Anything else is an opaque key and is kept verbatim.
func NormalizeIdentifier(id string) string {
	if strings.TrimSpace(id) == "" {
		return DefaultIdentifier
	}
	return id
}

// resolveMediaType trusts the declared type unless it is missing or the
// generic octet-stream, in which case the content is sniffed.
func resolveMediaType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(strings.ToLower(declared), "application/octet-stream") {
		return declared
	}
	return mimetype.Detect(data).String()
}
