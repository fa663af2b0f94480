// Package persist saves and restores actor store snapshots
// Only canonical actor data is persisted; overlay and drag state are transient
package persist

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/lixenwraith/spritestage/component"
)

var (
	ErrNotFound   = errors.New("snapshot not found")
	ErrInvalidKey = errors.New("invalid snapshot key")
)

// Snapshot is the persisted form of an actor list
type Snapshot struct {
	Key     string             `json:"key" yaml:"key"`
	SavedAt time.Time          `json:"savedAt" yaml:"saved_at"`
	Frame   int64              `json:"frame" yaml:"frame"`
	Actors  []component.Record `json:"actors" yaml:"actors"`
}

// NewSnapshot captures actors at frame
func NewSnapshot(key string, frame int64, actors []component.Actor) Snapshot {
	recs := make([]component.Record, len(actors))
	for i, a := range actors {
		recs[i] = component.RecordOf(a)
	}
	return Snapshot{Key: key, SavedAt: time.Now().UTC(), Frame: frame, Actors: recs}
}

// ActorList converts the records back, applying defaults
func (s Snapshot) ActorList() []component.Actor {
	out := make([]component.Actor, len(s.Actors))
	for i, r := range s.Actors {
		out[i] = r.Actor()
	}
	return out
}

// Store persists snapshots by key
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidKey reports whether key is usable as a file name and redis key suffix
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
