package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/fileutil"
)

// watchSources watches root recursively and calls onChange with the .qmd
// files created or written since the previous call, once debounce has
// passed without a new event. It returns when ctx is cancelled.
func watchSources(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, onChange func([]string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", "root", root, "debounce", debounce)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			timer.Reset(debounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			onChange(paths)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed", "path", ev.Name, "error", addErr)
						continue
					}
					for _, p := range sourcesIn(ev.Name) {
						pending[p] = struct{}{}
					}
					schedule()
					continue
				}
			}

			if !fileutil.HasExt(ev.Name, qmd.SourceExt) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = struct{}{}
				schedule()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
				logger.Debug("watcher: source gone", "path", ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", "error", watchErr)
		}
	}
}

// sourcesIn lists the .qmd files below dir.
func sourcesIn(dir string) []string {
	var paths []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && fileutil.HasExt(path, qmd.SourceExt) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
