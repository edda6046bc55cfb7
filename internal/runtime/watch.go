package runtime

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// readPluginDirs lists plugin directories under pluginsDir.
func readPluginDirs(pluginsDir string) ([]string, error) {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(pluginsDir, e.Name()))
		}
	}
	return dirs, nil
}

// Watch re-runs discovery whenever the plugins directory changes, so
// installs and uninstalls show up without restarting the daemon.
// Events are debounced: an install touches many files, discovery
// should run once.
func (h *Host) Watch(ctx context.Context, pluginsDir string, lookup func(id string) (bool, map[string]any)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := os.MkdirAll(pluginsDir, 0755); err != nil {
		return err
	}
	if err := watcher.Add(pluginsDir); err != nil {
		return err
	}

	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.log.Warn("plugin watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := h.Discover(pluginsDir, lookup); err != nil {
				h.log.Warn("plugin rescan failed", zap.Error(err))
			} else {
				h.log.Info("plugin rotation reloaded", zap.Strings("active", h.ActiveIDs()))
			}
		}
	}
}
