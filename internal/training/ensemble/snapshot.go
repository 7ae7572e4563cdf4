// internal/training/ensemble/snapshot.go
package ensemble

import (
	"sync/atomic"
)

// Snapshot wraps one published model generation. Degraded marks a
// generation that failed to load, which online scorers surface
// differently from a cold start with no model at all.
type Snapshot struct {
	Model    *Ensemble
	Degraded bool
}

// Store holds the current model snapshot. Swaps are atomic pointer
// writes, so readers never block and never see a half-built model.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the active model, or nil when no usable model is
// published. degraded is true when a model was expected but could not
// be loaded, as opposed to a cold start where none exists yet.
func (s *Store) Current() (model *Ensemble, degraded bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.Model, snap.Degraded
}

// Publish atomically replaces the active model. In-flight reads keep
// the snapshot they already loaded.
func (s *Store) Publish(model *Ensemble) {
	s.current.Store(&Snapshot{Model: model})
}

// MarkDegraded records that the expected model could not be loaded.
// Any previously published model stays active.
func (s *Store) MarkDegraded() {
	if snap := s.current.Load(); snap != nil && snap.Model != nil {
		return
	}
	s.current.Store(&Snapshot{Degraded: true})
}
