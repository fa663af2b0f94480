package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lixenwraith/spritestage/core"
)

// DefaultDebounce coalesces the burst of events an editor save produces
const DefaultDebounce = 150 * time.Millisecond

// ChangeFunc receives the new program text
type ChangeFunc func(text string)

// Watcher re-reads a program file on change and reports its text
// The directory is watched, not the file, so atomic-rename saves are seen
type Watcher struct {
	path     string
	debounce time.Duration
	onChange ChangeFunc
	logger   *slog.Logger

	fsWatcher *fsnotify.Watcher

	mu   sync.Mutex
	last string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for path; the current content is the baseline
func NewWatcher(path string, onChange ChangeFunc, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   logger,
		last:     string(text),
	}, nil
}

// SetDebounce overrides the debounce window; must be called before Start
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Name implements service.Service
func (w *Watcher) Name() string { return "watcher" }

// Dependencies implements service.Service
func (w *Watcher) Dependencies() []string { return []string{"engine"} }

// Start begins watching
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.fsWatcher = fsw

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	core.Go(func() { w.watchLoop(ctx) })
	return nil
}

// Stop stops watching and waits for the loop
func (w *Watcher) Stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	err := w.fsWatcher.Close()
	w.wg.Wait()
	w.cancel = nil
	return err
}

// Reload re-reads the file and reports it if the text changed
func (w *Watcher) Reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", w.path, err)
	}
	text := string(data)

	w.mu.Lock()
	changed := text != w.last
	w.last = text
	w.mu.Unlock()

	if changed && w.onChange != nil {
		w.onChange(text)
	}
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			if err := w.Reload(); err != nil {
				// Mid-rename the file may briefly not exist
				w.logger.Debug("program reload failed", "error", err)
			} else {
				w.logger.Debug("program reloaded", "path", w.path)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("program watcher error", "error", err)
		}
	}
}
