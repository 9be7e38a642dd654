package tui

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchStore calls notify whenever the file at storePath is created,
// written, replaced or removed. The parent directory is watched because
// store writes replace the file by rename. The returned function stops
// the watcher.
func WatchStore(ctx context.Context, storePath string, notify func(), logger *slog.Logger) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	storePath = filepath.Clean(storePath)
	if err := watcher.Add(filepath.Dir(storePath)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != storePath {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					notify()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("store watcher error", "error", err)
			}
		}
	}()

	return watcher.Close, nil
}
