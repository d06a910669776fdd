package stage

import (
	"fmt"
	"sync"

	"github.com/calder-games/assetforge/internal/catalog"
)

// trackerSlice is one category's share of the tracker: a sparse map from
// asset slot to pair entry, guarded by its own lock so categories never
// contend with each other.
type trackerSlice struct {
	mu      sync.RWMutex
	entries map[uint32]pairEntry
}

func newTrackerSlice() *trackerSlice {
	return &trackerSlice{entries: make(map[uint32]pairEntry)}
}

func (s *trackerSlice) advance(id catalog.AssetID, newStage LoadStage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id.Slot]
	if ok && e.gen != id.Gen {
		// The slot was reused; the old entry belongs to a retired asset.
		// Re-processing replaces rather than duplicates.
		ok = false
	}

	if !ok {
		s.entries[id.Slot] = pairEntry{gen: id.Gen, stage: newStage}
		return nil
	}

	if e.failed || e.stage == StageComplete {
		return fmt.Errorf("stage: advance %s to %s: %w", id, newStage, ErrAlreadyTerminal)
	}
	if newStage == e.stage {
		return nil
	}
	if newStage < e.stage {
		return fmt.Errorf("stage: advance %s from %s to %s: %w", id, e.stage, newStage, ErrStageRegression)
	}

	e.stage = newStage
	s.entries[id.Slot] = e
	return nil
}

func (s *trackerSlice) fail(id catalog.AssetID, reason Reason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id.Slot]
	if ok && e.gen != id.Gen {
		ok = false
	}

	if ok && (e.failed || e.stage == StageComplete) {
		return fmt.Errorf("stage: fail %s (%s): %w", id, reason, ErrAlreadyTerminal)
	}

	if !ok {
		e = pairEntry{gen: id.Gen}
	}
	e.failed = true
	e.reason = reason
	s.entries[id.Slot] = e
	return nil
}

func (s *trackerSlice) status(id catalog.AssetID) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id.Slot]
	if !ok || e.gen != id.Gen {
		return Pending
	}
	if e.failed {
		return Failed(e.reason)
	}
	if e.stage == StageComplete {
		return Complete
	}
	return Pending
}

func (s *trackerSlice) stageOf(id catalog.AssetID) LoadStage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id.Slot]
	if !ok || e.gen != id.Gen {
		return StageNotStarted
	}
	return e.stage
}

func (s *trackerSlice) purge(slot uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, slot)
}
