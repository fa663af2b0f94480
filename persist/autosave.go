package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/core"
)

// SourceFunc returns the current frame and canonical actors
type SourceFunc func() (int64, []component.Actor)

// Autosaver writes a snapshot on an interval and once more on Stop
// A zero interval only saves on Stop
type Autosaver struct {
	store    Store
	key      string
	interval time.Duration
	source   SourceFunc
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	saves  int
}

// NewAutosaver creates an autosaver for key
func NewAutosaver(store Store, key string, interval time.Duration, source SourceFunc, logger *slog.Logger) *Autosaver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Autosaver{
		store:    store,
		key:      key,
		interval: interval,
		source:   source,
		logger:   logger,
	}
}

// Name implements service.Service
func (a *Autosaver) Name() string { return "autosave" }

// Dependencies implements service.Service
func (a *Autosaver) Dependencies() []string { return []string{"engine"} }

// Start launches the save loop
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return nil
	}
	ctx, a.cancel = context.WithCancel(ctx)
	if a.interval > 0 {
		a.wg.Add(1)
		core.Go(func() { a.loop(ctx) })
	}
	return nil
}

// Stop halts the loop and writes a final snapshot
func (a *Autosaver) Stop() error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	a.wg.Wait()

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	return a.SaveNow(ctx)
}

// SaveNow writes a snapshot immediately
func (a *Autosaver) SaveNow(ctx context.Context) error {
	frame, actors := a.source()
	if err := a.store.Save(ctx, NewSnapshot(a.key, frame, actors)); err != nil {
		a.logger.Warn("snapshot save failed", "key", a.key, "error", err)
		return err
	}
	a.mu.Lock()
	a.saves++
	a.mu.Unlock()
	a.logger.Debug("snapshot saved", "key", a.key, "frame", frame, "actors", len(actors))
	return nil
}

// Saves returns the number of successful saves
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}

func (a *Autosaver) loop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = a.SaveNow(ctx)
		}
	}
}
