package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/spritestage/audio"
	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/event"
	"github.com/lixenwraith/spritestage/input"
	"github.com/lixenwraith/spritestage/logging"
	"github.com/lixenwraith/spritestage/parameter"
	"github.com/lixenwraith/spritestage/physics"
	"github.com/lixenwraith/spritestage/render"
	"github.com/lixenwraith/spritestage/sandbox"
	"github.com/lixenwraith/spritestage/status"
)

// RunState is the engine lifecycle position
type RunState uint8

const (
	StateStopped RunState = iota // Never started; no sandbox yet
	StateRunning
	StatePaused
)

func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// SelectEvent is emitted when a pointer-down hits an actor
type SelectEvent struct {
	ID string `json:"id"`
}

// Config holds the engine's tunables; zero fields take parameter defaults
type Config struct {
	Width         float64
	Height        float64
	FPS           int
	WaitHorizon   int64
	DragThreshold float64
	ClampInset    float64
	Capabilities  render.Capability
	Seed          int64
}

// DefaultConfig returns the stock stage configuration with the manual drag backend
func DefaultConfig() Config {
	return Config{
		Width:         parameter.DefaultCanvasWidth,
		Height:        parameter.DefaultCanvasHeight,
		FPS:           parameter.DefaultFPS,
		WaitHorizon:   parameter.WaitHorizonFrames,
		DragThreshold: parameter.DragThreshold,
		ClampInset:    parameter.ClampInset,
		Capabilities:  render.CapManualDrag,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.WaitHorizon <= 0 {
		c.WaitHorizon = d.WaitHorizon
	}
	if c.DragThreshold <= 0 {
		c.DragThreshold = d.DragThreshold
	}
	if c.ClampInset < 0 {
		c.ClampInset = d.ClampInset
	}
	if c.Capabilities == 0 {
		c.Capabilities = d.Capabilities
	}
	return c
}

// Option customizes a new Engine
type Option func(*Engine)

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSink routes tone effects to s
func WithSink(s audio.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithStatus publishes engine metrics into reg
func WithStatus(reg *status.Registry) Option {
	return func(e *Engine) { e.statusReg = reg }
}

// WithProgram sets the initial program text
func WithProgram(text string) Option {
	return func(e *Engine) { e.program = text }
}

// Engine runs one program against one actor store
// Phases execute one at a time under mu; pointer moves only touch the drag session.
type Engine struct {
	id     string
	cfg    Config
	logger *slog.Logger
	sink   audio.Sink

	mu      sync.Mutex
	state   RunState
	program string
	exec    *sandbox.Executor
	draws   []sandbox.DrawCommand
	caps    atomic.Uint32 // render.Capability, read lock-free by pointer moves

	store   *ActorStore
	overlay *Overlay
	clock   *FrameClock
	drag    *input.Machine
	grab    *physics.Grab
	diag    *event.Log

	selMu     sync.RWMutex
	selected  string
	selectors []func(SelectEvent)

	// Cached metric pointers
	statusReg       *status.Registry
	statFrames      *atomic.Int64
	statUpdates     *atomic.Int64
	statErrors      *atomic.Int64
	statDragCommits *atomic.Int64
	statOverlay     *atomic.Int64
	statRunning     *atomic.Bool
	statFrameMs     *status.AtomicFloat
	statState       *status.AtomicString
}

// New creates a stopped engine over store
func New(store *ActorStore, cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		id:      uuid.NewString(),
		cfg:     cfg,
		store:   store,
		overlay: NewOverlay(),
		clock:   NewFrameClock(),
		drag: input.NewMachine(input.Bounds{
			Width:  cfg.Width,
			Height: cfg.Height,
			Inset:  cfg.ClampInset,
		}, cfg.DragThreshold),
		grab: physics.NewGrab(parameter.SpringStiffness, parameter.SpringSettle, physics.Rect{
			MinX: cfg.ClampInset,
			MinY: cfg.ClampInset,
			MaxX: cfg.Width - cfg.ClampInset,
			MaxY: cfg.Height - cfg.ClampInset,
		}),
		diag: event.NewLog(),
	}
	e.caps.Store(uint32(cfg.Capabilities))
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.With("engine_id", e.id)
	if e.sink == nil {
		e.sink = audio.NopSink{}
	}
	if e.statusReg == nil {
		e.statusReg = status.NewRegistry()
	}

	e.statFrames = e.statusReg.Ints.Get("engine.frames")
	e.statUpdates = e.statusReg.Ints.Get("engine.updates")
	e.statErrors = e.statusReg.Ints.Get("engine.errors")
	e.statDragCommits = e.statusReg.Ints.Get("drag.commits")
	e.statOverlay = e.statusReg.Ints.Get("overlay.size")
	e.statRunning = e.statusReg.Bools.Get("engine.running")
	e.statFrameMs = e.statusReg.Floats.Get("engine.frame_ms")
	e.statState = e.statusReg.Strings.Get("engine.state")
	e.statState.Store(StateStopped.String())

	return e
}

// ID returns the engine instance id
func (e *Engine) ID() string { return e.id }

// Config returns the effective configuration
func (e *Engine) Config() Config { return e.cfg }

// Store returns the canonical actor store
func (e *Engine) Store() *ActorStore { return e.store }

// Status returns the metric registry
func (e *Engine) Status() *status.Registry { return e.statusReg }

// State returns the current run state
func (e *Engine) State() RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentFrame returns the current frame number
func (e *Engine) CurrentFrame() int64 {
	return e.clock.Current()
}

// Capabilities returns the active backend capability set
func (e *Engine) Capabilities() render.Capability {
	return render.Capability(e.caps.Load())
}

// Program returns the current program text
func (e *Engine) Program() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.program
}

// OnSelect registers a selection listener
func (e *Engine) OnSelect(fn func(SelectEvent)) {
	e.selMu.Lock()
	e.selectors = append(e.selectors, fn)
	e.selMu.Unlock()
}

// Selected returns the last selected actor id
func (e *Engine) Selected() string {
	e.selMu.RLock()
	defer e.selMu.RUnlock()
	return e.selected
}

// Diagnostics returns retained diagnostic entries, oldest first
func (e *Engine) Diagnostics() []event.Entry {
	return e.diag.Peek()
}

// DiagnosticLog exposes the ring for consumers that drain it
func (e *Engine) DiagnosticLog() *event.Log {
	return e.diag
}

// ===== LIFECYCLE =====

// Start creates the sandbox and runs init on first call; afterwards it resumes
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateRunning:
		return
	case StatePaused:
		e.resumeLocked()
		return
	}

	e.setStateLocked(StateRunning)
	e.clock.Thaw()
	e.createSandboxLocked()
	e.runInitLocked()
	e.logger.Info("engine started", "frame", e.clock.Current())
}

// Pause freezes the clock and drops the overlay; no frame runs until Resume
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning {
		return
	}
	e.clock.Freeze()
	e.overlay.Clear()
	e.statOverlay.Store(0)
	e.setStateLocked(StatePaused)
	e.logger.Debug("engine paused", "frame", e.clock.Current())
}

// Resume continues from the frozen frame without re-running init
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resumeLocked()
}

func (e *Engine) resumeLocked() {
	if e.state != StatePaused {
		return
	}
	if e.exec == nil {
		e.createSandboxLocked()
		e.runInitLocked()
	}
	e.clock.Thaw()
	e.setStateLocked(StateRunning)
	e.logger.Debug("engine resumed", "frame", e.clock.Current())
}

// Toggle pauses a running engine and starts or resumes any other
func (e *Engine) Toggle() {
	if e.State() == StateRunning {
		e.Pause()
		return
	}
	e.Start()
}

// Reset cancels drag, clears overlay and waits, zeroes the clock, recreates the
// sandbox and re-runs init. The engine ends paused.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drag.Cancel()
	e.grab.Cancel()
	e.overlay.Clear()
	e.statOverlay.Store(0)
	e.clock.Freeze()
	e.clock.Reset()
	e.draws = nil

	for _, a := range e.store.List() {
		if a.WaitUntil != 0 {
			if err := e.store.Update(a.ID, component.WaitPatch(0), SourceReset); err != nil {
				e.logger.Warn("reset wait clear failed", "actor", a.ID, "error", err)
			}
		}
	}

	e.setStateLocked(StatePaused)
	e.createSandboxLocked()
	e.runInitLocked()
	e.diag.Add(0, event.SeverityInfo, "reset")
	e.logger.Info("engine reset")
}

// Recreate rebuilds the sandbox and re-runs init seeded from the overlay, without a reset
// A stopped engine has no sandbox and is left alone.
func (e *Engine) Recreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateStopped {
		return
	}
	e.createSandboxLocked()
	e.runInitLocked()
	e.logger.Debug("sandbox recreated", "frame", e.clock.Current())
}

// SetProgram swaps program text; the next phase invocation uses it and init does not re-run
func (e *Engine) SetProgram(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.program = text
	if e.exec == nil {
		return
	}
	e.reportProblemsLocked(e.exec.Compile(text))
}

// SetBackend switches drag ownership; open drags are cancelled
// The sandbox, its globals and the init state are untouched
func (e *Engine) SetBackend(caps render.Capability) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caps == e.Capabilities() {
		return
	}
	e.drag.Cancel()
	e.grab.Cancel()
	e.caps.Store(uint32(caps))
	e.logger.Info("backend changed", "caps", caps.String())
}

func (e *Engine) setStateLocked(s RunState) {
	e.state = s
	e.statRunning.Store(s == StateRunning)
	e.statState.Store(s.String())
}

// ===== FRAME =====

// Frame is the per-frame callback: advance the clock, run the frame phase, reconcile,
// then step the physics grab. Only the grab step happens while not running.
func (e *Engine) Frame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	if e.state == StateRunning && e.exec != nil {
		if frame, ok := e.clock.Advance(); ok {
			before := e.overlay.Seed(e.store.List())
			res := e.exec.RunFrame(before, frame)
			e.draws = nil
			e.absorbLocked(res, before, frame)
			e.statFrames.Add(1)
		}
	}
	if e.Capabilities().Has(render.CapPhysicsDrag) {
		e.stepGrabLocked()
	}
	e.statOverlay.Store(int64(e.overlay.Len()))
	e.statFrameMs.Smooth(float64(time.Since(start).Microseconds())/1000, 0.1)
}

// Scene composes what the renderer should draw right now
func (e *Engine) Scene() render.Scene {
	e.mu.Lock()
	running := e.state == StateRunning
	in := render.ComposeInput{
		Width:    e.cfg.Width,
		Height:   e.cfg.Height,
		Frame:    e.clock.Current(),
		Running:  running,
		Paused:   e.state == StatePaused,
		Actors:   e.store.List(),
		Draws:    e.draws,
		Selected: e.Selected(),
	}
	e.mu.Unlock()
	caps := e.Capabilities()

	if running {
		in.Overlay = func(id string) (float64, float64, bool) {
			p, ok := e.overlay.Get(id)
			return p.X, p.Y, ok
		}
	}
	if caps.Has(render.CapPhysicsDrag) {
		if id, x, y, ok := e.grab.Position(); ok {
			in.Preview = render.Preview{ID: id, X: x, Y: y, Active: true}
			if tx, ty, ok := e.grab.Target(); ok {
				in.Tether = &render.Tether{FromX: x, FromY: y, ToX: tx, ToY: ty}
			}
		}
	} else if id, x, y, ok := e.drag.Preview(); ok {
		in.Preview = render.Preview{ID: id, X: x, Y: y, Active: true}
	}
	return render.Compose(in)
}

// ===== POINTER =====

// PointerDown hit-tests displayed actors; a hit opens a drag and emits a selection,
// a miss runs the pointer-press phase while running
func (e *Engine) PointerDown(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	displayed := e.displayedLocked()
	if e.Capabilities().Has(render.CapPhysicsDrag) {
		if idx, ok := input.HitTest(displayed, x, y); ok {
			a := displayed[idx]
			e.grab.Begin(a.ID, a.X, a.Y, x, y)
			e.selectActor(a.ID)
			return
		}
	} else if out := e.drag.Press(displayed, x, y); out.Hit {
		e.selectActor(out.ID)
		return
	}

	if e.state != StateRunning || e.exec == nil {
		return
	}
	frame := e.clock.Current()
	res := e.exec.RunPointerPress(displayed, frame, x, y)
	e.absorbLocked(res, displayed, frame)
}

// PointerMove only updates the drag session; it never writes actor data
func (e *Engine) PointerMove(x, y float64) {
	if e.Capabilities().Has(render.CapPhysicsDrag) {
		e.grab.SetTarget(x, y)
		return
	}
	e.drag.Move(x, y)
}

// PointerUp closes the drag; a drag past the threshold commits its final position
func (e *Engine) PointerUp(x, y float64) {
	if e.Capabilities().Has(render.CapPhysicsDrag) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.grab.SetTarget(x, y)
		if id, bx, by, ok := e.grab.End(); ok {
			cx, cy := e.drag.Bounds().Clamp(component.Round(bx), component.Round(by))
			e.commitLocked(id, cx, cy, SourceDrag)
		}
		return
	}

	out := e.drag.Release(x, y)
	if out.Kind != input.ReleaseCommit {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commitLocked(out.ID, out.X, out.Y, SourceDrag)
}

// DragState exposes the manual drag machine state
func (e *Engine) DragState() input.DragState {
	return e.drag.State()
}

func (e *Engine) selectActor(id string) {
	e.selMu.Lock()
	e.selected = id
	fns := append([]func(SelectEvent)(nil), e.selectors...)
	e.selMu.Unlock()

	for _, fn := range fns {
		fn(SelectEvent{ID: id})
	}
}

// commitLocked writes a pointer-driven position into the store and the overlay
func (e *Engine) commitLocked(id string, x, y float64, source UpdateSource) {
	cur, ok := e.store.Get(id)
	if !ok {
		e.logger.Debug("commit for removed actor", "actor", id)
		return
	}
	e.overlay.Set(id, x, y)
	if cur.X == x && cur.Y == y {
		return
	}
	if err := e.store.Update(id, component.PositionPatch(x, y), source); err != nil {
		e.logger.Warn("commit failed", "actor", id, "error", err)
		return
	}
	if source == SourceDrag {
		e.statDragCommits.Add(1)
	}
}

// stepGrabLocked advances the physics grab and commits the body position every frame
func (e *Engine) stepGrabLocked() {
	id, x, y, ok := e.grab.Step(1 / float64(e.cfg.FPS))
	if !ok {
		return
	}
	rx, ry := component.Round(x), component.Round(y)
	cur, found := e.store.Get(id)
	if !found {
		e.grab.Cancel()
		return
	}
	if cur.X == rx && cur.Y == ry {
		return
	}
	if err := e.store.Update(id, component.PositionPatch(rx, ry), SourcePhysics); err != nil {
		e.logger.Warn("physics commit failed", "actor", id, "error", err)
		return
	}
	if e.state == StateRunning {
		e.overlay.Set(id, rx, ry)
	}
}

// displayedLocked returns actors at the positions currently shown
func (e *Engine) displayedLocked() []component.Actor {
	actors := e.store.List()
	if e.state == StateRunning {
		return e.overlay.Seed(actors)
	}
	return actors
}

// ===== SANDBOX =====

func (e *Engine) createSandboxLocked() {
	e.exec = sandbox.New(sandbox.Options{
		Width:  e.cfg.Width,
		Height: e.cfg.Height,
		Seed:   e.cfg.Seed,
	})
	e.reportProblemsLocked(e.exec.Compile(e.program))
}

// runInitLocked clears stale waits and runs init seeded from the overlay
func (e *Engine) runInitLocked() {
	e.clearStaleWaitsLocked()
	before := e.overlay.Seed(e.store.List())
	res := e.exec.RunInit(before)
	e.absorbLocked(res, before, e.clock.Current())
}

// clearStaleWaitsLocked zeroes waits pointing further ahead than the horizon allows
func (e *Engine) clearStaleWaitsLocked() {
	limit := e.clock.Current() + e.cfg.WaitHorizon
	for _, a := range e.store.List() {
		if a.WaitUntil == 0 || a.WaitUntil <= limit {
			continue
		}
		if err := e.store.Update(a.ID, component.WaitPatch(0), SourceReset); err != nil {
			continue
		}
		e.diag.Add(e.clock.Current(), event.SeverityWarn,
			fmt.Sprintf("cleared stale wait on %s (frame %d)", a.ID, a.WaitUntil))
	}
}

// absorbLocked records diagnostics and effects of one invocation and reconciles its actors
func (e *Engine) absorbLocked(res sandbox.Result, before []component.Actor, frame int64) {
	for _, m := range res.Effects.Logs {
		e.diag.Add(frame, m.Severity, m.Text)
		e.logger.Debug("program log", "frame", frame, "severity", m.Severity.String(), "msg", m.Text)
	}
	if !res.Ran {
		return
	}
	if res.Err != nil {
		e.statErrors.Add(1)
		e.diag.Add(frame, event.SeverityError, fmt.Sprintf("%s: %v", res.Kind, res.Err))
		e.logger.Debug("phase failed", "phase", res.Kind.String(), "frame", frame, "error", res.Err)
		return
	}

	e.draws = append(e.draws, res.Effects.Draws...)
	for _, t := range res.Effects.Tones {
		e.sink.Play(t.Freq, t.Duration)
	}

	var overlay *Overlay
	if e.state == StateRunning {
		overlay = e.overlay
	}
	r, err := Reconcile(e.store, overlay, before, res.Actors)
	if err != nil {
		e.diag.Add(frame, event.SeverityError, err.Error())
		e.logger.Warn("reconcile failed", "phase", res.Kind.String(), "error", err)
		return
	}
	e.statUpdates.Add(int64(len(r.Updated)))
}

func (e *Engine) reportProblemsLocked(problems []error) {
	for _, p := range problems {
		e.diag.Add(e.clock.Current(), event.SeverityInfo, p.Error())
		e.logger.Debug("program problem", "error", p)
	}
}
