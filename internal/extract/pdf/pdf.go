// Package pdf extracts the text layer of PDF files. Scanned PDFs without
// a text layer yield empty text.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// DefaultMaxPages bounds how many pages are read. Text extraction is CPU
// and memory heavy on large documents.
const DefaultMaxPages = 500

// Extractor handles PDF documents.
type Extractor struct {
	maxPages int
}

// New creates a PDF extractor reading at most DefaultMaxPages pages.
func New() *Extractor {
	return &Extractor{maxPages: DefaultMaxPages}
}

// SupportedExtensions returns the extensions this extractor handles.
func (x *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (x *Extractor) Priority() int {
	return 50
}

// Extract returns the plain text of each page, separated by blank lines.
// Pages that fail to decode are skipped.
func (x *Extractor) Extract(ctx context.Context, name string, content []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := min(total, x.maxPages)
	if pages < total {
		logger.Warn("pdf: %s has %d pages, reading the first %d", name, total, pages)
	}

	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("pdf: %s page %d: %v", name, i, err)
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			parts = append(parts, pageText)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
