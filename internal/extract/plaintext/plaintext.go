// Package plaintext extracts text files, decoding UTF-8 and UTF-16 with
// a byte order mark.
package plaintext

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (x *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

// Priority returns the selection priority.
func (x *Extractor) Priority() int {
	return 10 // Fallback
}

// Extract decodes content. A BOM selects UTF-16; otherwise UTF-8 is
// assumed and invalid sequences are replaced.
func (x *Extractor) Extract(_ context.Context, _ string, content []byte) (string, error) {
	return Decode(content)
}

// Decode converts raw text bytes into a valid UTF-8 string.
func Decode(content []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	text := strings.ToValidUTF8(string(out), "\uFFFD")
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
