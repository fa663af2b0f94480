package sandbox

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/event"
)

var (
	// ErrInitialized reports a second RunInit on the same sandbox lifetime
	ErrInitialized = errors.New("init already ran for this sandbox")
	// ErrNonFinite reports a program that left a non-finite number in an actor field
	ErrNonFinite = errors.New("non-finite actor field")
)

// Options configures a new Executor
type Options struct {
	Width, Height float64
	Seed          int64 // 0 uses a time-independent default seed of 1
}

// Result is the outcome of one phase invocation
// Actors is nil when the invocation failed or the phase is absent
type Result struct {
	Kind    PhaseKind
	Ran     bool
	Actors  []component.Actor
	Effects Effects
	Err     error
}

// Executor owns one sandbox lifetime: a JavaScript runtime, its compiled phases and the
// globals programs create. Compile may be called any number of times; RunInit at most once.
// Not safe for concurrent use; the engine serializes all calls.
type Executor struct {
	mu sync.Mutex

	vm     *goja.Runtime
	width  float64
	height float64
	rng    *rand.Rand

	source *Source
	phases [phaseCount]goja.Callable

	// Top-level names bound by earlier preludes
	declared map[string]bool

	initDone bool

	// Per-invocation state read by the primitive API
	effects *Effects
	byID    map[string]*goja.Object
}

// New creates a fresh sandbox with the primitive API installed and no program
func New(opts Options) *Executor {
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	x := &Executor{
		vm:       goja.New(),
		width:    opts.Width,
		height:   opts.Height,
		rng:      rand.New(rand.NewSource(seed)),
		source:   &Source{},
		declared: make(map[string]bool),
	}
	x.vm.SetRandSource(x.rng.Float64)
	x.installAPI()
	return x
}

// Source returns the last compiled program split
func (x *Executor) Source() *Source {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.source
}

// HasPhase reports whether the current program defines kind
func (x *Executor) HasPhase(kind PhaseKind) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return kind < phaseCount && x.phases[kind] != nil
}

// Initialized reports whether RunInit already ran in this lifetime
func (x *Executor) Initialized() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.initDone
}

// Compile swaps in new program text without touching initialization state or globals
// Prelude helpers are redefined on every compile; declarations already bound keep their
// values. Problems are shape or syntax issues; the affected phase is simply absent.
func (x *Executor) Compile(text string) (problems []error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	src := ExtractPhases(text)
	problems = append(problems, src.Problems...)

	var phases [phaseCount]goja.Callable
	for k, p := range src.Phases {
		if p == nil {
			continue
		}
		fn, cerr := x.compilePhase(p)
		if cerr != nil {
			problems = append(problems, fmt.Errorf("phase %s (%s): %w", p.Kind, p.Name, cerr))
			src.Phases[k] = nil
			continue
		}
		phases[k] = fn
	}

	if src.Prelude != "" {
		problems = append(problems, x.runPrelude(src.Prelude)...)
	}

	x.source = src
	x.phases = phases
	return problems
}

func (x *Executor) compilePhase(p *Phase) (goja.Callable, error) {
	code := "(function " + p.Name + "(" + strings.Join(p.Params, ", ") + ") {" + p.Body + "\n})"
	prog, err := goja.Compile(p.Name, code, false)
	if err != nil {
		return nil, err
	}
	var fn goja.Callable
	err = x.runGuarded(func() error {
		v, rerr := x.vm.RunProgram(prog)
		if rerr != nil {
			return rerr
		}
		var ok bool
		fn, ok = goja.AssertFunction(v)
		if !ok {
			return errors.New("phase did not compile to a function")
		}
		return nil
	})
	return fn, err
}

// RunInit runs the init phase once per sandbox lifetime
// Callers seed actors from the overlay where one exists
func (x *Executor) RunInit(actors []component.Actor) Result {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.initDone {
		return Result{Kind: PhaseInit, Err: ErrInitialized}
	}
	x.initDone = true
	return x.invoke(PhaseInit, actors, 0, func(sprites *goja.Object) []goja.Value {
		return []goja.Value{sprites}
	})
}

// RunFrame runs the per-frame phase for the given frame number
func (x *Executor) RunFrame(actors []component.Actor, frame int64) Result {
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.invoke(PhaseFrame, actors, frame, func(sprites *goja.Object) []goja.Value {
		return []goja.Value{x.vm.ToValue(frame), sprites}
	})
}

// RunPointerPress runs the pointer-press phase with canvas coordinates
func (x *Executor) RunPointerPress(actors []component.Actor, frame int64, px, py float64) Result {
	x.mu.Lock()
	defer x.mu.Unlock()

	pointer := x.vm.NewObject()
	_ = pointer.Set("x", px)
	_ = pointer.Set("y", py)
	_ = x.vm.Set("pointer", pointer)
	defer x.vm.Set("pointer", goja.Null())

	return x.invoke(PhasePress, actors, frame, func(sprites *goja.Object) []goja.Value {
		return []goja.Value{x.vm.ToValue(px), x.vm.ToValue(py), sprites}
	})
}

// invoke runs one phase against private copies of actors
// On any failure the copies are dropped and only log messages survive
func (x *Executor) invoke(kind PhaseKind, actors []component.Actor, frame int64, args func(*goja.Object) []goja.Value) Result {
	res := Result{Kind: kind}
	fn := x.phases[kind]
	if fn == nil {
		return res
	}
	res.Ran = true

	private := component.CloneAll(actors)
	effects := &Effects{}
	x.effects = effects
	defer func() {
		x.effects = nil
		x.byID = nil
	}()

	objs := make([]*goja.Object, len(private))
	x.byID = make(map[string]*goja.Object, len(private))
	items := make([]interface{}, len(private))
	for i := range private {
		objs[i] = x.toObject(private[i])
		x.byID[private[i].ID] = objs[i]
		items[i] = objs[i]
	}
	sprites := x.vm.NewArray(items...)
	_ = x.vm.Set("sprites", sprites)
	_ = x.vm.Set("frame", frame)

	err := x.runGuarded(func() error {
		_, cerr := fn(goja.Undefined(), args(sprites)...)
		return cerr
	})
	if err == nil {
		for i := range private {
			if err = fromObject(objs[i], &private[i]); err != nil {
				err = fmt.Errorf("actor %s: %w", private[i].ID, err)
				break
			}
		}
	}
	if err != nil {
		res.Err = err
		res.Effects = effects.discardOutput()
		return res
	}

	res.Actors = private
	res.Effects = *effects
	return res
}

// runGuarded converts thrown exceptions and runtime panics into errors
func (x *Executor) runGuarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sandbox panic: %v", r)
		}
	}()
	err = fn()
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fmt.Errorf("%s", ex.Error())
	}
	return err
}

// record appends a log message to the current invocation, if any
func (x *Executor) record(sev event.Severity, text string) {
	if x.effects == nil {
		return
	}
	x.effects.Logs = append(x.effects.Logs, Message{Severity: sev, Text: text})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
