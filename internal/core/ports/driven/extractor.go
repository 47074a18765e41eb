package driven

import "context"

// TextExtractor converts file content into plain text.
// Each extractor handles specific file extensions (e.g. .pdf, .docx).
type TextExtractor interface {
	// SupportedExtensions returns lower-case extensions including the dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Extract returns the plain text of the named file content.
	Extract(ctx context.Context, name string, content []byte) (string, error)
}
