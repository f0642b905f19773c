package dev

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/barisgit/fluxdoc/internal/logging"
)

// DefaultDebounce groups the events of one save into a single pass.
const DefaultDebounce = 150 * time.Millisecond

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
}

// Watcher feeds file system events under a project root to a Controller.
type Watcher struct {
	root     string
	config   string
	ctrl     *Controller
	log      *logging.Logger
	fs       *fsnotify.Watcher
	Debounce time.Duration
}

// NewWatcher watches root recursively and the directory of configPath.
func NewWatcher(root, configPath string, ctrl *Controller, log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{root: root, ctrl: ctrl, log: log, fs: fw, Debounce: DefaultDebounce}
	if configPath != "" {
		if w.config, err = filepath.Abs(configPath); err != nil {
			fw.Close()
			return nil, err
		}
	}

	if err := w.addDirectoryRecursively(root); err != nil {
		fw.Close()
		return nil, err
	}
	if w.config != "" {
		if err := fw.Add(filepath.Dir(w.config)); err != nil {
			log.Warn("⚠️  Could not watch %s: %v", filepath.Dir(w.config), err)
		}
	}
	return w, nil
}

// addDirectoryRecursively adds a directory and all its subdirectories, since
// fsnotify does not watch subdirectories on its own.
func (w *Watcher) addDirectoryRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Warn("⚠️  Could not watch %s: %v", path, err)
		} else {
			w.log.Debug("👁️  Watching directory: %s", path)
		}
		return nil
	})
}

// Run forwards relevant events until ctx is done or a pass fails without
// KeepGoing. Events are debounced and passed on as one batch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var (
		batch []string
		timer *time.Timer
		fire  <-chan time.Time
		errs  = make(chan error, 1)
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errs:
			return err

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoryRecursively(event.Name); err != nil {
						w.log.Warn("⚠️  Could not watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			batch = append(batch, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			paths := batch
			batch, fire = nil, nil
			go func() {
				if err := w.ctrl.Changed(ctx, paths...); err != nil {
					select {
					case errs <- err:
					default:
					}
				}
			}()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Debug("File watcher error: %v", err)
		}
	}
}

// relevant keeps writes, creations, removals and renames of Go sources and of
// the configuration file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.config != "" {
		if abs, err := filepath.Abs(event.Name); err == nil && abs == w.config {
			return true
		}
	}
	return strings.HasSuffix(event.Name, ".go")
}
