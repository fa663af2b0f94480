package render

import "sync"

// Recorder is a headless renderer that keeps the most recent scenes
// Used when no terminal is attached and by the HTTP surface
type Recorder struct {
	mu     sync.Mutex
	caps   Capability
	keep   int
	scenes []Scene
	count  uint64
}

// NewRecorder keeps up to keep scenes; keep below 1 keeps one
func NewRecorder(caps Capability, keep int) *Recorder {
	return &Recorder{caps: caps, keep: max(keep, 1)}
}

// Capabilities returns the configured capability set
func (r *Recorder) Capabilities() Capability {
	return r.caps
}

// Draw stores the scene
func (r *Recorder) Draw(scene Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.scenes = append(r.scenes, scene)
	if len(r.scenes) > r.keep {
		r.scenes = append(r.scenes[:0], r.scenes[len(r.scenes)-r.keep:]...)
	}
	return nil
}

// Last returns the most recent scene
func (r *Recorder) Last() (Scene, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.scenes) == 0 {
		return Scene{}, false
	}
	return r.scenes[len(r.scenes)-1], true
}

// Scenes returns the retained scenes, oldest first
func (r *Recorder) Scenes() []Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Scene(nil), r.scenes...)
}

// Count returns the number of scenes drawn since creation
func (r *Recorder) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
