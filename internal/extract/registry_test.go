package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

type fakeExtractor struct {
	exts     []string
	priority int
	text     string
	err      error
}

func (f *fakeExtractor) SupportedExtensions() []string { return f.exts }
func (f *fakeExtractor) Priority() int                 { return f.priority }

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	return f.text, f.err
}

func TestDefault_SupportedExtensions(t *testing.T) {
	exts := Default().SupportedExtensions()
	for _, ext := range []string{".txt", ".md", ".docx", ".pdf", ".html"} {
		assert.Contains(t, exts, ext)
	}
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry(
		&fakeExtractor{exts: []string{".txt"}, priority: 10, text: "low"},
		&fakeExtractor{exts: []string{".TXT"}, priority: 90, text: "high"},
	)

	text, err := r.Extract(context.Background(), "notes.TxT", nil)
	require.NoError(t, err)
	assert.Equal(t, "high", text)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := Default()

	assert.False(t, r.Supports("image.png"))
	_, err := r.Extract(context.Background(), "image.png", []byte{0x89})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.ExtractFile(context.Background(), "archive.tar")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_WrapsExtractorError(t *testing.T) {
	boom := errors.New("corrupt")
	r := NewRegistry(&fakeExtractor{exts: []string{".x"}, err: boom})

	_, err := r.Extract(context.Background(), "/tmp/file.x", nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "file.x")
}

func TestRegistry_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "essay.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nSome **bold** prose.\n"), 0o600))

	text, err := Default().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nSome bold prose.", text)
}

func TestRegistry_ExtractFileMissing(t *testing.T) {
	_, err := Default().ExtractFile(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
