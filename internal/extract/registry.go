package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/extract/docx"
	"github.com/custodia-labs/provenance-cli/internal/extract/html"
	"github.com/custodia-labs/provenance-cli/internal/extract/markdown"
	"github.com/custodia-labs/provenance-cli/internal/extract/pdf"
	"github.com/custodia-labs/provenance-cli/internal/extract/plaintext"
)

// MaxFileSize bounds the size of a file read for extraction.
const MaxFileSize = 32 << 20

// Registry dispatches files to text extractors by extension.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	byExtension map[string][]driven.TextExtractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{byExtension: make(map[string][]driven.TextExtractor)}
	for _, x := range extractors {
		r.Register(x)
	}
	return r
}

// Default returns a registry with every built-in extractor.
func Default() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		docx.New(),
		pdf.New(),
		html.New(),
	)
}

// Register adds an extractor for each of its extensions.
func (r *Registry) Register(x driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range x.SupportedExtensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExtension[ext], x)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExtension[ext] = list
	}
}

// Supports returns true if name has an extension with an extractor.
func (r *Registry) Supports(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byExtension[strings.ToLower(filepath.Ext(name))]) > 0
}

// SupportedExtensions returns every handled extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract converts content into text using the highest priority extractor
// for name's extension. Unknown extensions return domain.ErrUnsupportedType.
func (r *Registry) Extract(ctx context.Context, name string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	r.mu.RLock()
	list := r.byExtension[ext]
	r.mu.RUnlock()

	if len(list) == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
	text, err := list[0].Extract(ctx, name, content)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(name), err)
	}
	return strings.TrimSpace(text), nil
}

// ExtractFile reads path and extracts its text.
func (r *Registry) ExtractFile(ctx context.Context, path string) (string, error) {
	if !r.Supports(path) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", domain.NewValidationError("%s is larger than %d bytes", filepath.Base(path), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return r.Extract(ctx, path, content)
}
