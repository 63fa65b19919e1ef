package providers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce groups bursts of file events into one notification
const DefaultWatchDebounce = 250 * time.Millisecond

// FileWatcher reports changes to local repository list files. It watches
// the parent directories so editors that replace files by rename are seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
}

// NewFileWatcher starts watching paths. The caller must call Close.
func NewFileWatcher(paths []string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &FileWatcher{watcher: watcher, files: make(map[string]bool, len(paths)), debounce: debounce}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run calls onChange after a watched file is written, created, renamed or
// removed. It returns when ctx is done or the watcher is closed.
func (w *FileWatcher) Run(ctx context.Context, onChange func(context.Context)) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			slog.DebugContext(ctx, "Repository list file changed", "file", event.Name, "op", event.Op.String())
			pending = time.After(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.WarnContext(ctx, "Repository list watcher error", "error", err)
		case <-pending:
			pending = nil
			onChange(ctx)
		}
	}
}

// Close stops watching
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
