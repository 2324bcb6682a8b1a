// Package watcher watches the raw data root with fsnotify and reports which
// target has fresh scraper output, debounced so a multi-file dump triggers a
// single reprocess.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// Watcher watches <rawDir>/<target>/ directories for new or rewritten JSON
// dumps and invokes onChange with the target name after writes settle.
type Watcher struct {
	rawDir   string
	onChange func(target string)
	debounce time.Duration
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timers   map[string]*time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for event tracing.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the settle window before onChange fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over rawDir. onChange receives the target directory
// name, once per burst of writes.
func New(rawDir string, onChange func(target string), opts ...Option) *Watcher {
	w := &Watcher{
		rawDir:   rawDir,
		onChange: onChange,
		debounce: defaultDebounce,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The raw root and its existing target subdirectories
// are registered; target directories created later are picked up from their
// create events. Runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := os.MkdirAll(w.rawDir, 0755); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("create raw dir: %w", err)
	}
	if err := fsw.Add(w.rawDir); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.rawDir, err)
	}
	entries, err := os.ReadDir(w.rawDir)
	if err != nil {
		fsw.Close()
		w.mu.Unlock()
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := fsw.Add(filepath.Join(w.rawDir, e.Name())); err != nil && w.logger != nil {
				w.logger.Warn("watch target dir", zap.String("target", e.Name()), zap.Error(err))
			}
		}
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Info("watching raw data root", zap.String("dir", w.rawDir))
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}

	// A new target directory under the root: start watching it.
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		w.mu.Lock()
		if w.watcher != nil {
			if err := w.watcher.Add(ev.Name); err != nil && w.logger != nil {
				w.logger.Warn("watch new dir", zap.String("path", ev.Name), zap.Error(err))
			}
		}
		w.mu.Unlock()
		return
	}

	if !strings.EqualFold(filepath.Ext(ev.Name), ".json") {
		return
	}
	target := w.targetFor(ev.Name)
	if target == "" {
		return
	}
	if w.logger != nil {
		w.logger.Debug("raw file changed",
			zap.String("path", ev.Name),
			zap.String("target", target),
		)
	}
	w.schedule(target)
}

// targetFor maps a changed file path to the target directory name directly
// under the raw root. Files sitting loose in the root have no target.
func (w *Watcher) targetFor(path string) string {
	rel, err := filepath.Rel(w.rawDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// schedule arms (or rearms) the per-target debounce timer.
func (w *Watcher) schedule(target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[target]; ok {
		t.Stop()
	}
	w.timers[target] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, target)
		w.mu.Unlock()
		if w.onChange != nil {
			w.onChange(target)
		}
	})
}

// Stop stops the watcher and cancels pending callbacks.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for target, t := range w.timers {
		t.Stop()
		delete(w.timers, target)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
