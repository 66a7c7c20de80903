// Package watch monitors content and layout directories and coalesces
// file changes into rebuild triggers.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"blogbuilder/internal/logfields"
)

// Watcher monitors a set of directory trees and forwards relevant file
// changes to a Debouncer.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	roots     []string
}

// NewWatcher watches each root directory recursively. Missing roots are
// skipped so a site without a layouts override still watches content.
func NewWatcher(debouncer *Debouncer, roots ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, debouncer: debouncer}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolve watch root %s: %w", root, err)
		}
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			slog.Debug("Skipping missing watch root", "root", abs)
			continue
		}
		if err := w.addTree(abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.roots = append(w.roots, abs)
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(d.Name()) && path != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch directory %s: %w", path, err)
		}
		return nil
	})
}

// Run pumps file system events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("Watching for changes", "roots", strings.Join(w.roots, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if skipDir(name) {
		return
	}

	// New directories must be added to the watch set so files created
	// inside them are seen.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !relevantFile(name) {
		return
	}

	slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
	w.debouncer.Notify(event.Name)
}

// Close releases the underlying file system watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func relevantFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".html", ".yaml", ".yml", ".css", ".js":
		return true
	}
	return false
}
