package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent is delivered to a Watcher's callback when the watched
// file's content actually changes (debounced, content-hash
// deduplicated).
type ChangeEvent struct {
	Path string
	Tree *Tree
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration applied to filesystem events
// before the file is re-read.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger used for watcher diagnostics.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// Watcher monitors a config file for changes and invokes onChange with
// a freshly parsed Tree whenever the file's content actually changes.
// It watches the containing directory rather than the file itself so
// atomic-rename saves (the common case for config editors) are
// observed correctly.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(ChangeEvent)

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	lastHash  string
}

// NewWatcher creates a Watcher for path. Call Start to begin watching.
func NewWatcher(path string, onChange func(ChangeEvent), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: 250 * time.Millisecond,
		logger:   slog.Default(),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching the config file's directory for changes. It
// returns once the watch is established; delivery happens on a
// background goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}
	w.fsWatcher = fsWatcher

	if hash, err := w.hashFile(); err == nil {
		w.lastHash = hash
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload() {
	hash, err := w.hashFile()
	if err != nil {
		w.logger.Error("config watcher: hash file", slog.String("path", w.path), slog.Any("error", err))
		return
	}
	if hash == w.lastHash {
		return
	}
	w.lastHash = hash
	tree, err := Load(w.path)
	if err != nil {
		w.logger.Error("config watcher: reload", slog.String("path", w.path), slog.Any("error", err))
		return
	}
	w.logger.Info("config reloaded", slog.String("path", w.path))
	if w.onChange != nil {
		w.onChange(ChangeEvent{Path: w.path, Tree: tree})
	}
}

func (w *Watcher) hashFile() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if w.fsWatcher != nil {
			w.fsWatcher.Close()
		}
	})
	w.wg.Wait()
}
