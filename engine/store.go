package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lixenwraith/spritestage/component"
)

var (
	ErrUnknownActor   = errors.New("unknown actor")
	ErrDuplicateActor = errors.New("duplicate actor id")
)

// UpdateSource tags who produced a store write
type UpdateSource uint8

const (
	SourceUI UpdateSource = iota
	SourceProgram
	SourceDrag
	SourcePhysics
	SourceReset
)

func (s UpdateSource) String() string {
	switch s {
	case SourceUI:
		return "ui"
	case SourceProgram:
		return "program"
	case SourceDrag:
		return "drag"
	case SourcePhysics:
		return "physics"
	case SourceReset:
		return "reset"
	default:
		return "unknown"
	}
}

// UpdateEvent is delivered to store observers after every applied write
type UpdateEvent struct {
	ID     string          `json:"id"`
	Patch  component.Patch `json:"patch"`
	Source UpdateSource    `json:"-"`
	Actor  component.Actor `json:"-"` // Whole record after the merge
}

// Observer receives store writes synchronously, outside the store lock
type Observer func(UpdateEvent)

// ActorStore is the canonical ordered actor collection
// All writes go through Update so observers always see whole records
type ActorStore struct {
	mu     sync.RWMutex
	order  []string // Paint order, back to front
	actors map[string]component.Actor

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int
}

// NewActorStore creates a store holding normalized copies of actors
func NewActorStore(actors []component.Actor) *ActorStore {
	s := &ActorStore{
		actors:    make(map[string]component.Actor, len(actors)),
		observers: make(map[int]Observer),
	}
	s.replaceLocked(actors)
	return s
}

// Subscribe registers an observer and returns its cancel function
func (s *ActorStore) Subscribe(fn Observer) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// Update shallow-merges patch into the actor with id
// An empty patch is accepted and produces no event
func (s *ActorStore) Update(id string, patch component.Patch, source UpdateSource) error {
	if patch.Empty() {
		s.mu.RLock()
		_, ok := s.actors[id]
		s.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownActor, id)
		}
		return nil
	}

	s.mu.Lock()
	cur, ok := s.actors[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	next := patch.Apply(cur)
	s.actors[id] = next
	s.mu.Unlock()

	s.notify(UpdateEvent{ID: id, Patch: patch, Source: source, Actor: next.Clone()})
	return nil
}

// Get returns a copy of the actor with id
func (s *ActorStore) Get(id string) (component.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actors[id]
	if !ok {
		return component.Actor{}, false
	}
	return a.Clone(), true
}

// List returns copies of all actors in paint order
func (s *ActorStore) List() []component.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]component.Actor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.actors[id].Clone())
	}
	return out
}

// IDs returns actor ids in paint order
func (s *ActorStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of actors
func (s *ActorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Replace swaps the whole collection, as a UI import would
// Duplicate ids keep the first occurrence
func (s *ActorStore) Replace(actors []component.Actor) {
	s.mu.Lock()
	s.replaceLocked(actors)
	s.mu.Unlock()
}

func (s *ActorStore) replaceLocked(actors []component.Actor) {
	s.order = make([]string, 0, len(actors))
	s.actors = make(map[string]component.Actor, len(actors))
	for _, a := range actors {
		if _, dup := s.actors[a.ID]; dup {
			continue
		}
		s.order = append(s.order, a.ID)
		s.actors[a.ID] = component.Normalize(a.Clone())
	}
}

// Add appends an actor at the front of the paint order
func (s *ActorStore) Add(a component.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.actors[a.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateActor, a.ID)
	}
	s.order = append(s.order, a.ID)
	s.actors[a.ID] = component.Normalize(a.Clone())
	return nil
}

// Remove deletes the actor with id
func (s *ActorStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actors[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	delete(s.actors, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *ActorStore) notify(ev UpdateEvent) {
	s.obsMu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	fns := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.obsMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
