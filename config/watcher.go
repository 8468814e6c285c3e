package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/attrlock/guard"
)

// defaultDebounce is how long the watcher waits for further writes
// before rebuilding the registry.
const defaultDebounce = 500 * time.Millisecond

// Watcher watches a lock configuration file and rebuilds the registry
// when it changes. Each successful rebuild is handed to the apply
// callback (typically guard.Evaluator.SetRegistry); failed reloads are
// logged and the last good registry stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	apply    func(*guard.Registry)
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher for the given config file. A
// non-positive debounce uses the default.
func NewWatcher(path string, debounce time.Duration, apply func(*guard.Registry), logger *slog.Logger) (*Watcher, error) {
	if apply == nil {
		return nil, fmt.Errorf("apply callback is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		apply:    apply,
		watcher:  fsw,
		logger:   logger,
	}, nil
}

// Start loads the file once, applies the result, and begins watching
// for changes until ctx is cancelled or Stop is called.
//
// The parent directory is watched rather than the file itself, since
// editors and config writers commonly replace the file by rename.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.Reload(); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	go w.processEvents(ctx)

	w.logger.Info("Lock config watcher started",
		"path", w.path,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Reload rebuilds the registry from the file and applies it.
func (w *Watcher) Reload() error {
	cfg, err := LoadFromFile(w.path)
	if err != nil {
		return err
	}
	reg, err := cfg.Build()
	if err != nil {
		return err
	}
	w.apply(reg)
	return nil
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent marks a reload pending when the config file changed.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug("Lock config change detected",
		"path", w.path,
		"op", event.Op.String())
}

// flushPending performs the debounced reload.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	dirty := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if !dirty {
		return
	}

	if err := w.Reload(); err != nil {
		w.logger.Warn("Lock config reload failed, keeping previous registry",
			"path", w.path,
			"error", err)
		return
	}
	w.logger.Info("Lock config reloaded", "path", w.path)
}
