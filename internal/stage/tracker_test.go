package stage

import (
	"errors"
	"testing"

	"github.com/calder-games/assetforge/internal/catalog"
)

var (
	idA = catalog.AssetID{Slot: 0, Gen: 1}
	idB = catalog.AssetID{Slot: 1, Gen: 1}
)

func TestStatusOfUntouchedPair(t *testing.T) {
	tr := NewTracker()

	got := tr.Status(idA, catalog.CategoryMap)
	if got.State != StatePending {
		t.Errorf("untouched pair status = %v, want pending", got)
	}
	if tr.Stage(idA, catalog.CategoryMap) != StageNotStarted {
		t.Errorf("untouched pair stage = %v, want not_started", tr.Stage(idA, catalog.CategoryMap))
	}
}

func TestForwardOnlyStages(t *testing.T) {
	tr := NewTracker()

	stages := []LoadStage{StageDiscovered, StageConfigurationParsed, StageContentProcessed, StageComplete}
	for _, s := range stages {
		if err := tr.Advance(idA, catalog.CategoryMap, s); err != nil {
			t.Fatalf("Advance(%v) failed: %v", s, err)
		}
	}

	if got := tr.Status(idA, catalog.CategoryMap); got.State != StateComplete {
		t.Errorf("status after full progression = %v, want complete", got)
	}
}

func TestSameStageAdvanceIsNoOp(t *testing.T) {
	tr := NewTracker()

	if err := tr.Advance(idA, catalog.CategoryMap, StageConfigurationParsed); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if err := tr.Advance(idA, catalog.CategoryMap, StageConfigurationParsed); err != nil {
		t.Errorf("idempotent re-advance should no-op, got %v", err)
	}
	if got := tr.Stage(idA, catalog.CategoryMap); got != StageConfigurationParsed {
		t.Errorf("stage = %v, want configuration_parsed", got)
	}
}

func TestStageRegressionRejected(t *testing.T) {
	tr := NewTracker()

	if err := tr.Advance(idA, catalog.CategoryMap, StageContentProcessed); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	err := tr.Advance(idA, catalog.CategoryMap, StageDiscovered)
	if !errors.Is(err, ErrStageRegression) {
		t.Errorf("backward advance error = %v, want ErrStageRegression", err)
	}

	// The offending transition is dropped, not applied.
	if got := tr.Stage(idA, catalog.CategoryMap); got != StageContentProcessed {
		t.Errorf("stage after rejected regression = %v, want content_processed", got)
	}
}

func TestTerminalImmutability(t *testing.T) {
	tr := NewTracker()

	if err := tr.Advance(idA, catalog.CategoryMap, StageComplete); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	if err := tr.Advance(idA, catalog.CategoryMap, StageComplete); !errors.Is(err, ErrAlreadyTerminal) {
		t.Errorf("advance on complete pair error = %v, want ErrAlreadyTerminal", err)
	}
	if err := tr.Fail(idA, catalog.CategoryMap, SemanticError("late")); !errors.Is(err, ErrAlreadyTerminal) {
		t.Errorf("fail on complete pair error = %v, want ErrAlreadyTerminal", err)
	}
	if got := tr.Status(idA, catalog.CategoryMap); got.State != StateComplete {
		t.Errorf("status mutated after rejected transitions: %v", got)
	}
}

func TestFailIsTerminal(t *testing.T) {
	tr := NewTracker()

	reason := UnresolvedReference("hero/missing-anim")
	if err := tr.Fail(idA, catalog.CategorySequence, reason); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}

	got := tr.Status(idA, catalog.CategorySequence)
	if got.State != StateFailed {
		t.Fatalf("status = %v, want failed", got)
	}
	if got.Reason.Code != ReasonUnresolvedReference || got.Reason.Detail != "hero/missing-anim" {
		t.Errorf("reason = %v, want unresolved_reference: hero/missing-anim", got.Reason)
	}

	if err := tr.Advance(idA, catalog.CategorySequence, StageComplete); !errors.Is(err, ErrAlreadyTerminal) {
		t.Errorf("advance after fail error = %v, want ErrAlreadyTerminal", err)
	}
	if err := tr.Fail(idA, catalog.CategorySequence, SemanticError("again")); !errors.Is(err, ErrAlreadyTerminal) {
		t.Errorf("double fail error = %v, want ErrAlreadyTerminal", err)
	}
}

func TestCategoryIsolation(t *testing.T) {
	tr := NewTracker()

	if err := tr.Advance(idA, catalog.CategoryCharacter, StageConfigurationParsed); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if err := tr.Fail(idA, catalog.CategorySequence, UnresolvedReference("missing-anim-slug")); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}

	// The failure touches only its own category.
	if got := tr.Status(idA, catalog.CategoryCharacter); got.State != StatePending {
		t.Errorf("sibling category status = %v, want pending", got)
	}
	if got := tr.Stage(idA, catalog.CategoryCharacter); got != StageConfigurationParsed {
		t.Errorf("sibling category stage = %v, want configuration_parsed", got)
	}

	// And only its own asset.
	if got := tr.Status(idB, catalog.CategorySequence); got.State != StatePending {
		t.Errorf("other asset status = %v, want pending", got)
	}
}

func TestGenerationReplacement(t *testing.T) {
	tr := NewTracker()

	old := catalog.AssetID{Slot: 7, Gen: 1}
	if err := tr.Advance(old, catalog.CategoryMap, StageComplete); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	// The slot's next occupant starts clean; its writes replace the
	// stale entry instead of tripping the terminal guard.
	fresh := catalog.AssetID{Slot: 7, Gen: 2}
	if got := tr.Status(fresh, catalog.CategoryMap); got.State != StatePending {
		t.Errorf("fresh generation status = %v, want pending", got)
	}
	if err := tr.Advance(fresh, catalog.CategoryMap, StageDiscovered); err != nil {
		t.Errorf("fresh generation advance failed: %v", err)
	}
	if got := tr.Status(old, catalog.CategoryMap); got.State != StatePending {
		t.Errorf("stale id status = %v, want pending (absent)", got)
	}
}

func TestPurge(t *testing.T) {
	tr := NewTracker()

	if err := tr.Advance(idA, catalog.CategoryMap, StageComplete); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if err := tr.Fail(idA, catalog.CategoryBackground, SemanticError("bad layer")); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}

	tr.Purge(idA.Slot)

	if got := tr.Status(idA, catalog.CategoryMap); got.State != StatePending {
		t.Errorf("map status after purge = %v, want pending", got)
	}
	if got := tr.Status(idA, catalog.CategoryBackground); got.State != StatePending {
		t.Errorf("background status after purge = %v, want pending", got)
	}
}
