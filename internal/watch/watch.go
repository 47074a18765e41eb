// Package watch reports files dropped into a directory once they have
// stopped changing.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/provenance-cli/internal/logger"
)

// DefaultQuiet is how long a file must go without writes before it is reported.
const DefaultQuiet = 750 * time.Millisecond

// Watcher watches one directory, not recursively.
type Watcher struct {
	root     string
	supports func(name string) bool
	quiet    time.Duration
}

// New creates a watcher over root. supports filters file names; nil
// accepts every file. A quiet period of zero uses DefaultQuiet.
func New(root string, supports func(name string) bool, quiet time.Duration) *Watcher {
	if supports == nil {
		supports = func(string) bool { return true }
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Watcher{root: root, supports: supports, quiet: quiet}
}

// Watch starts watching and returns a channel of settled file paths.
// The channel is closed when ctx is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}

	out := make(chan string)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	defer fsw.Close()

	// pending maps a path to the time of its last write.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.quiet / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleEvent(event); ok {
				pending[path] = time.Now()
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(pending, event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.quiet {
					continue
				}
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent returns the path of a supported regular file that was
// created or written. Hidden files and directories are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return "", false
	}
	if !w.supports(base) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}
