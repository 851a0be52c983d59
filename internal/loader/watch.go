package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reports which locale changed whenever a translation document under
// root is written, created, removed or renamed. It blocks until ctx is done.
// Directories created while watching are added automatically.
func Watch(ctx context.Context, root string, logger *slog.Logger, onChange func(locale string)) error {
	if onChange == nil {
		return fmt.Errorf("onChange callback is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	root = filepath.Clean(root)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return err
	}
	logger.Info("watching translations", "root", root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("watch new directory failed", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op == fsnotify.Chmod || !isTranslationFile(filepath.Base(event.Name)) {
				continue
			}
			locale := localeOf(root, event.Name)
			if locale == "" {
				continue
			}
			logger.Debug("translation change", "locale", locale, "file", event.Name, "op", event.Op.String())
			onChange(locale)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// addTree watches dir and every directory below it
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// localeOf returns the first path segment of name below root
func localeOf(root, name string) string {
	rel, err := filepath.Rel(root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
