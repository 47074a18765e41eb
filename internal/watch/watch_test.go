package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textOnly(name string) bool {
	return strings.HasSuffix(name, ".txt")
}

func TestNew_Defaults(t *testing.T) {
	w := New("/tmp", nil, 0)

	assert.Equal(t, DefaultQuiet, w.quiet)
	assert.True(t, w.supports("anything.bin"))
}

func TestWatcher_HandleEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		mkdir     bool
		create    bool
		operation fsnotify.Op
		expected  bool
	}{
		{name: "create supported file", file: "essay.txt", create: true, operation: fsnotify.Create, expected: true},
		{name: "write supported file", file: "essay.txt", create: true, operation: fsnotify.Write, expected: true},
		{name: "write and chmod", file: "essay.txt", create: true, operation: fsnotify.Write | fsnotify.Chmod, expected: true},
		{name: "chmod only", file: "essay.txt", create: true, operation: fsnotify.Chmod},
		{name: "remove", file: "gone.txt", operation: fsnotify.Remove},
		{name: "unsupported extension", file: "image.png", create: true, operation: fsnotify.Create},
		{name: "hidden file", file: ".draft.txt", create: true, operation: fsnotify.Create},
		{name: "office lock file", file: "~$essay.txt", create: true, operation: fsnotify.Create},
		{name: "directory", file: "folder.txt", mkdir: true, operation: fsnotify.Create},
		{name: "vanished before stat", file: "temp.txt", operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.create {
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
			}
			if tt.mkdir {
				require.NoError(t, os.Mkdir(path, 0755))
			}

			w := New(dir, textOnly, 0)
			got, ok := w.handleEvent(fsnotify.Event{Name: path, Op: tt.operation})

			assert.Equal(t, tt.expected, ok)
			if tt.expected {
				assert.Equal(t, path, got)
			}
		})
	}
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), nil, 0)

	_, err := w.Watch(context.Background())
	assert.Error(t, err)
}

func TestWatcher_WatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := New(path, nil, 0).Watch(context.Background())
	assert.ErrorContains(t, err, "not a directory")
}

func TestWatcher_ReportsSettledFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w := New(dir, textOnly, 100*time.Millisecond)
	paths, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.png"), []byte("png"), 0644))
	target := filepath.Join(dir, "essay.txt")
	require.NoError(t, os.WriteFile(target, []byte("first part"), 0644))

	select {
	case got := <-paths:
		assert.Equal(t, target, got)
	case <-ctx.Done():
		t.Fatal("no file reported")
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	paths, err := New(t.TempDir(), nil, 50*time.Millisecond).Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-paths:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}
