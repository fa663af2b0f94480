package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/spritestage/audio"
	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/config"
	"github.com/lixenwraith/spritestage/engine"
	"github.com/lixenwraith/spritestage/persist"
	"github.com/lixenwraith/spritestage/project"
	"github.com/lixenwraith/spritestage/render"
	"github.com/lixenwraith/spritestage/server"
	"github.com/lixenwraith/spritestage/service"
	"github.com/lixenwraith/spritestage/terminal"
)

// runOptions are the command line overrides of the run command
type runOptions struct {
	httpAddr  string
	backend   string
	watch     bool
	noAudio   bool
	restore   bool
	autostart bool
}

// app is one assembled stage: the engine and every service around it
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	project *project.Project

	engine   *engine.Engine
	hub      *service.Hub
	term     *terminal.TerminalService
	store    persist.Store
	autosave *persist.Autosaver

	mu       sync.Mutex
	renderer *render.TerminalRenderer
	sched    *engine.Scheduler
}

// applyOverrides folds command line flags into cfg and revalidates
func applyOverrides(cfg *config.Config, opts runOptions) error {
	if opts.backend != "" {
		cfg.Render.Backend = opts.backend
	}
	if opts.httpAddr != "" {
		cfg.HTTP.Addr = opts.httpAddr
	}
	if opts.noAudio {
		cfg.Audio.Enabled = false
	}
	return cfg.Validate()
}

// openStore builds the configured snapshot store; nil when persistence is off
func openStore(cfg config.PersistConfig) (persist.Store, error) {
	switch cfg.Kind {
	case "file":
		return persist.NewFileStore(cfg.Path)
	case "redis":
		return persist.NewRedisStore(cfg.RedisAddr), nil
	default:
		return nil, nil
	}
}

// newApp wires the engine, the terminal and the optional services
// screen may be nil to use the process terminal
func newApp(ctx context.Context, cfg *config.Config, proj *project.Project, opts runOptions, screen tcell.Screen, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		project: proj,
		hub:     service.NewHub(logger),
		term:    terminal.NewService(screen),
	}

	store, err := openStore(cfg.Persist)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	a.store = store

	actors := proj.Actors()
	if opts.restore && store != nil {
		snap, err := store.Load(ctx, cfg.Persist.Key)
		switch {
		case errors.Is(err, persist.ErrNotFound):
			logger.Info("no snapshot to restore", "key", cfg.Persist.Key)
		case err != nil:
			return nil, fmt.Errorf("restore snapshot: %w", err)
		default:
			actors = snap.ActorList()
			logger.Info("snapshot restored", "key", snap.Key, "frame", snap.Frame, "actors", len(actors))
		}
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithProgram(proj.Program),
	}
	engineDeps := []string{a.term.Name()}
	if cfg.Audio.Enabled {
		sink := audio.NewBeepSink(cfg.AudioSettings())
		engineOpts = append(engineOpts, engine.WithSink(sink))
		engineDeps = append(engineDeps, "audio")
		if err := a.hub.Register(&service.Func{
			ID: "audio",
			OnStart: func(context.Context) error {
				// Missing audio hardware is not fatal; Play stays a no-op
				if err := sink.Initialize(); err != nil {
					logger.Warn("audio disabled", "error", err)
				}
				return nil
			},
			OnStop: func() error {
				sink.Close()
				return nil
			},
		}); err != nil {
			return nil, err
		}
	}
	a.engine = engine.New(engine.NewActorStore(actors), cfg.EngineSettings(), engineOpts...)

	if err := a.hub.Register(a.term); err != nil {
		return nil, err
	}
	if err := a.hub.Register(&service.Func{
		ID:   "engine",
		Deps: engineDeps,
		OnStart: func(context.Context) error {
			a.startFrames()
			if opts.autostart {
				a.engine.Start()
			}
			return nil
		},
		OnStop: func() error {
			a.stopFrames()
			return nil
		},
	}); err != nil {
		return nil, err
	}

	if cfg.HTTP.Addr != "" {
		if err := a.hub.Register(server.NewService(cfg.HTTP.Addr, a.engine, logger)); err != nil {
			return nil, err
		}
	}

	if opts.watch {
		path := proj.ProgramPath()
		if path == "" {
			path = proj.Path
		}
		w, err := project.NewWatcher(path, a.onProgramFile(path), logger)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		if err := a.hub.Register(w); err != nil {
			return nil, err
		}
	}

	if store != nil {
		a.autosave = persist.NewAutosaver(store, cfg.Persist.Key, cfg.Persist.Autosave, a.snapshotSource, logger)
		if err := a.hub.Register(a.autosave); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// startFrames builds the renderer on the now-initialized screen and starts the scheduler
func (a *app) startFrames() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderer = render.NewTerminalRenderer(a.term.Screen(), a.cfg.Backend())
	a.sched = engine.NewScheduler(a.engine, a.renderer, a.logger)
	a.sched.Start()
}

func (a *app) stopFrames() {
	a.mu.Lock()
	sched := a.sched
	a.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

// snapshotSource feeds the autosaver
func (a *app) snapshotSource() (int64, []component.Actor) {
	return a.engine.CurrentFrame(), a.engine.Store().List()
}

// onProgramFile maps a watched file change to a program swap
// A watched project file is re-parsed so inline programs hot-swap too
func (a *app) onProgramFile(path string) project.ChangeFunc {
	if path != a.project.Path {
		return func(text string) {
			a.engine.SetProgram(text)
		}
	}
	return func(text string) {
		p, err := project.Parse(path, []byte(text))
		if err != nil {
			a.logger.Warn("project reload failed", "path", path, "error", err)
			return
		}
		a.engine.SetProgram(p.Program)
	}
}

// setBackend switches renderer and engine together
func (a *app) setBackend(b render.Backend) {
	a.mu.Lock()
	if a.renderer != nil {
		a.renderer.SetBackend(b)
	}
	a.mu.Unlock()
	a.engine.SetBackend(b.Capabilities())
	a.logger.Info("backend switched", "backend", string(b))
}

// reloadProgram re-reads the program from disk
func (a *app) reloadProgram() {
	p, err := project.Load(a.project.Path)
	if err != nil {
		a.logger.Warn("program reload failed", "error", err)
		return
	}
	a.project.Program = p.Program
	a.engine.SetProgram(p.Program)
	a.logger.Info("program reloaded", "path", a.project.Path)
}

// save writes the current actors back to the project and to the snapshot store
func (a *app) save(ctx context.Context) {
	if err := a.project.Save(a.engine.Store().List()); err != nil {
		a.logger.Warn("project save failed", "error", err)
	}
	if a.autosave != nil {
		_ = a.autosave.SaveNow(ctx)
	}
}

// handleCommand runs one host command; false ends the event loop
func (a *app) handleCommand(ctx context.Context, cmd terminal.Command) bool {
	switch cmd {
	case terminal.CmdQuit:
		return false
	case terminal.CmdToggleRun:
		a.engine.Toggle()
	case terminal.CmdReset:
		a.engine.Reset()
	case terminal.CmdBackendDraw:
		a.setBackend(render.BackendDraw)
	case terminal.CmdBackendPhysics:
		a.setBackend(render.BackendPhysics)
	case terminal.CmdReload:
		a.reloadProgram()
	case terminal.CmdSave:
		a.save(ctx)
	case terminal.CmdRedraw:
		if s := a.term.Screen(); s != nil {
			s.Sync()
		}
	}
	return true
}

// run starts every service, pumps terminal events until quit or ctx ends, then stops
func (a *app) run(ctx context.Context) error {
	order, err := a.hub.Order()
	if err != nil {
		return err
	}
	a.logger.Info("starting services", "order", order)
	if err := a.hub.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		a.hub.StopAll()
		if a.store != nil {
			_ = a.store.Close()
		}
	}()

	host := terminal.NewHost(a.engine, a.cfg.Canvas.Width, a.cfg.Canvas.Height, terminal.DefaultKeymap(),
		func(cmd terminal.Command) bool { return a.handleCommand(ctx, cmd) })
	events := a.term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			cols, rows := a.term.Screen().Size()
			if !host.Handle(ev, cols, rows) {
				return nil
			}
		}
	}
}
