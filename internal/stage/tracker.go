package stage

import (
	"errors"
	"fmt"

	"github.com/calder-games/assetforge/internal/catalog"
)

var (
	// ErrStageRegression is returned when an advance targets a stage
	// earlier than the pair's current stage. Indicates a loader bug.
	ErrStageRegression = errors.New("stage regression")

	// ErrAlreadyTerminal is returned when advancing or failing a pair
	// that is already Complete or Failed.
	ErrAlreadyTerminal = errors.New("pair already terminal")
)

// pairEntry is the tracked state of one (asset, category) pair. gen pins
// the entry to the asset generation that created it; a mismatched
// generation reads as absent and is replaced on the next write.
type pairEntry struct {
	gen    uint32
	stage  LoadStage
	failed bool
	reason Reason
}

// Tracker holds the current stage and status of every touched (asset,
// category) pair. Entries are created lazily on the first advance.
//
// Ownership: each category's loader is the only writer of that category's
// slice; reads may come from any goroutine. The per-slice lock exists for
// the cross-category readers (aggregation, queries), not for contention
// between loaders.
type Tracker struct {
	slices map[catalog.Category]*trackerSlice
}

// NewTracker creates a tracker with one slice per known category.
func NewTracker() *Tracker {
	t := &Tracker{slices: make(map[catalog.Category]*trackerSlice)}
	for _, c := range catalog.Categories() {
		t.slices[c] = newTrackerSlice()
	}
	return t
}

func (t *Tracker) slice(c catalog.Category) *trackerSlice {
	s, ok := t.slices[c]
	if !ok {
		// Unknown categories get a shared throwaway slice rather than a
		// panic; advance on them surfaces as a regular error.
		return nil
	}
	return s
}

// Advance moves the pair (id, c) to newStage. Re-advancing to the current
// stage is a no-op; a lesser stage is ErrStageRegression; any transition
// on a terminal pair is ErrAlreadyTerminal.
func (t *Tracker) Advance(id catalog.AssetID, c catalog.Category, newStage LoadStage) error {
	s := t.slice(c)
	if s == nil {
		return fmt.Errorf("stage: unknown category %d", c)
	}
	return s.advance(id, newStage)
}

// Fail transitions the pair to terminal Failed with the given reason.
// Failing an already-terminal pair is ErrAlreadyTerminal.
func (t *Tracker) Fail(id catalog.AssetID, c catalog.Category, reason Reason) error {
	s := t.slice(c)
	if s == nil {
		return fmt.Errorf("stage: unknown category %d", c)
	}
	return s.fail(id, reason)
}

// Status returns the pair's derived status. A pair with no entry yet is
// Pending (treated as NotStarted).
func (t *Tracker) Status(id catalog.AssetID, c catalog.Category) Status {
	s := t.slice(c)
	if s == nil {
		return Pending
	}
	return s.status(id)
}

// Stage returns the pair's raw stage, for loaders resuming multi-tick
// work. Absent entries read as StageNotStarted.
func (t *Tracker) Stage(id catalog.AssetID, c catalog.Category) LoadStage {
	s := t.slice(c)
	if s == nil {
		return StageNotStarted
	}
	return s.stageOf(id)
}

// Purge removes every category's entry for id's slot, regardless of
// generation. Called by the coordinator when an asset retires.
func (t *Tracker) Purge(slot uint32) {
	for _, s := range t.slices {
		s.purge(slot)
	}
}
