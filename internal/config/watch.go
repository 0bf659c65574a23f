package config

import (
	"context"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/logger"
)

// Watch reloads the config at path whenever it is written and calls onChange
// with the previous and new values. Files that fail to load or validate are
// logged and skipped. Watch blocks until ctx ends.
func Watch(ctx context.Context, path string, current *Config, log logger.Logger, onChange func(prev, next *Config)) error {
	if log == nil {
		log = logger.Noop()
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create config watcher",
			"Live reload is unavailable; restart pingraph to apply config changes.")
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to watch "+path,
			"Live reload is unavailable; restart pingraph to apply config changes.")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != path {
				continue
			}

			next, err := Load(path)
			if err != nil {
				log.Warn("config reload failed: %s", errors.ShortMessage(err))
				continue
			}
			// Targets may come from the command line, so only check the
			// values a reload can change.
			if err := ValidateReload(next); err != nil {
				log.Warn("config reload rejected: %s", errors.ShortMessage(err))
				continue
			}
			if len(Changed(current, next)) == 0 {
				continue
			}
			onChange(current, next)
			current = next

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error: %v", err)
		}
	}
}

// ValidateReload checks the parts of a reloaded file that apply live.
func ValidateReload(cfg *Config) error {
	if cfg.Buffer < 1 {
		return errors.New(errors.ErrConfig,
			"buffer must be at least 1 second",
			"Fix the buffer value in .pingraph.yaml.")
	}
	return nil
}

// Changed lists the config keys whose values differ between prev and next.
func Changed(prev, next *Config) []string {
	fields := []struct {
		key  string
		a, b interface{}
	}{
		{"targets", prev.Targets, next.Targets},
		{"cmd", prev.Cmd, next.Cmd},
		{"watch_interval", prev.WatchInterval, next.WatchInterval},
		{"buffer", prev.Buffer, next.Buffer},
		{"ipv4", prev.IPv4, next.IPv4},
		{"ipv6", prev.IPv6, next.IPv6},
		{"interface", prev.Interface, next.Interface},
		{"via", prev.Via, next.Via},
		{"colors", prev.Colors, next.Colors},
		{"simple_graphics", prev.SimpleGraphics, next.SimpleGraphics},
		{"restart", prev.Restart, next.Restart},
		{"log", prev.Log, next.Log},
		{"export_dir", prev.ExportDir, next.ExportDir},
	}

	var changed []string
	for _, f := range fields {
		if !reflect.DeepEqual(f.a, f.b) {
			changed = append(changed, f.key)
		}
	}
	return changed
}
