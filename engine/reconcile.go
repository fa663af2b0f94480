package engine

import (
	"errors"

	"github.com/lixenwraith/spritestage/component"
)

// Reconciliation is the outcome of one write-back pass
type Reconciliation struct {
	Updated []string // Ids written, in paint order
	Missing []string // Ids removed from the store while the phase ran
}

// Reconcile diffs the phase output against its input and writes one update per changed actor
// before and after must be index-aligned, as returned by the executor.
// When overlay is non-nil the rounded position of every moved actor is also cached there.
func Reconcile(store *ActorStore, overlay *Overlay, before, after []component.Actor) (Reconciliation, error) {
	var r Reconciliation
	if len(before) != len(after) {
		return r, errors.New("reconcile: phase output does not match its input")
	}

	for i := range after {
		snap := component.SnapshotOf(before[i])
		patch := component.Diff(snap, after[i])
		if patch.Empty() {
			continue
		}

		id := before[i].ID
		if err := store.Update(id, patch, SourceProgram); err != nil {
			if errors.Is(err, ErrUnknownActor) {
				r.Missing = append(r.Missing, id)
				continue
			}
			return r, err
		}
		r.Updated = append(r.Updated, id)

		if overlay != nil && patch.HasPosition() {
			overlay.Set(id, *patch.X, *patch.Y)
		}
	}
	return r, nil
}
