// Package watcher watches app type roots and signals, debounced, when
// their contents change so that the inventory can be reconciled.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors app type roots for changes and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	excluded  map[string]bool
	debounce  time.Duration
	logger    *slog.Logger
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Roots       []string
	ExcludeDirs []string
	DebounceDur time.Duration
	Logger      *slog.Logger
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:       roots,
		DebounceDur: 1 * time.Second,
	}
}

// New creates a new watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	excluded := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, d := range cfg.ExcludeDirs {
		excluded[d] = true
	}

	return &Watcher{
		fsWatcher: fsw,
		roots:     cfg.Roots,
		excluded:  excluded,
		debounce:  cfg.DebounceDur,
		logger:    logger,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching every root and each app directory directly below
// it. Roots that do not exist are skipped. Returns a channel that receives
// one signal per burst of changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	for _, root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			w.logger.Warn("not watching missing root", "root", root)
			continue
		}
		if err := w.fsWatcher.Add(root); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", root, err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", root, err)
		}
		for _, e := range entries {
			if e.IsDir() && w.watchable(e.Name()) {
				w.addDir(filepath.Join(root, e.Name()))
			}
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// WatchList returns the directories currently watched.
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}

func (w *Watcher) addDir(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.Warn("cannot watch app directory", "dir", dir, "error", err)
		return
	}
	w.logger.Debug("watching", "dir", dir)
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			w.trackNewAppDir(event)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// trackNewAppDir starts watching a directory created directly under a root.
func (w *Watcher) trackNewAppDir(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) || !w.isRoot(filepath.Dir(event.Name)) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		w.addDir(event.Name)
	}
}

func (w *Watcher) isRoot(dir string) bool {
	for _, r := range w.roots {
		if filepath.Clean(r) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// isRelevantEvent checks if the event should trigger a reconciliation.
// Attribute changes, hidden files and excluded directories are ignored.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return w.watchable(filepath.Base(event.Name))
}

func (w *Watcher) watchable(name string) bool {
	return !strings.HasPrefix(name, ".") && !w.excluded[name]
}
