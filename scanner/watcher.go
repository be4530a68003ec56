package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"PalmFM/logger"

	"github.com/fsnotify/fsnotify"
)

// debounce window between a burst of file events and the rescan they trigger.
const watchDebounce = 2 * time.Second

// Watcher watches the music directory and invokes a callback after changes
// settle. The controller wires the callback to device reconciliation when the
// auto-scan setting is enabled.
type Watcher struct {
	musicDir string
	onChange func()
}

// NewWatcher creates a watcher that calls onChange after debounced changes.
func NewWatcher(musicDir string, onChange func()) *Watcher {
	return &Watcher{musicDir: musicDir, onChange: onChange}
}

// Run blocks until ctx is cancelled, dispatching debounced change callbacks.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the tree recursively; fsnotify is per-directory.
	err = filepath.WalkDir(w.musicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch music directory: %w", err)
	}

	logger.Info("Watching music directory", logger.String("dir", w.musicDir))

	var debounce *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories must be added to the watch set.
				if err := watcher.Add(event.Name); err == nil {
					logger.Debug("Watching new entry", logger.String("path", event.Name))
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Music directory watch error", logger.ErrorField(err))

		case <-pending:
			logger.Info("Music directory changed, triggering rescan")
			w.onChange()
		}
	}
}
