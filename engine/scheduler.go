package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/spritestage/core"
	"github.com/lixenwraith/spritestage/render"
)

// Scheduler drives an engine on a fixed frame interval: Frame, then Draw
// Frames run while paused too, so the renderer keeps showing drag previews
type Scheduler struct {
	engine   *Engine
	renderer render.Renderer
	logger   *slog.Logger

	interval time.Duration

	frameCount atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	// Optional hook run on the scheduler goroutine after each draw
	afterFrame func(render.Scene)
}

// NewScheduler creates a scheduler at the engine's configured FPS
func NewScheduler(e *Engine, r render.Renderer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = e.logger
	}
	return &Scheduler{
		engine:   e,
		renderer: r,
		logger:   logger,
		interval: time.Second / time.Duration(e.cfg.FPS),
		stopChan: make(chan struct{}),
	}
}

// SetInterval overrides the frame interval; must be called before Start
func (s *Scheduler) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// AfterFrame registers a hook called with each drawn scene; must be called before Start
func (s *Scheduler) AfterFrame(fn func(render.Scene)) {
	s.afterFrame = fn
}

// Start begins the frame loop
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		core.Go(s.loop)
	}
}

// Stop halts the frame loop and waits for the in-flight frame
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

// FrameCount returns the number of loop iterations drawn
func (s *Scheduler) FrameCount() uint64 {
	return s.frameCount.Load()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one frame and draws it
func (s *Scheduler) tick() {
	s.engine.Frame()
	scene := s.engine.Scene()
	if err := s.renderer.Draw(scene); err != nil {
		s.logger.Warn("draw failed", "frame", scene.Frame, "error", err)
	}
	s.frameCount.Add(1)
	if s.afterFrame != nil {
		s.afterFrame(scene)
	}
}
