package loaders

import (
	"fmt"
	"time"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// Frame is one resolved animation frame.
type Frame struct {
	Sprite   SpriteHandle
	Duration time.Duration
}

// Sequence is one resolved, named animation.
type Sequence struct {
	Name   string
	Loop   bool
	Frames []Frame
}

// SequenceAggregate is the asset's resolved animation table, keyed by
// sequence name.
type SequenceAggregate struct {
	Sequences map[string]Sequence
}

// SequenceLoader converts sequence sections into animation tables. An
// asset may copy another asset's sequences as a base via copy_from; that
// base lives in this same category, so the loader defers until its own
// table holds the base aggregate.
type SequenceLoader struct {
	deps  *Deps
	table *catalog.Table[*SequenceAggregate]
}

// NewSequenceLoader creates the sequence category loader.
func NewSequenceLoader(deps *Deps) *SequenceLoader {
	return &SequenceLoader{deps: deps, table: catalog.NewTable[*SequenceAggregate]()}
}

func (l *SequenceLoader) Category() catalog.Category { return catalog.CategorySequence }

// Aggregate returns the loaded animation table for id.
func (l *SequenceLoader) Aggregate(id catalog.AssetID) (*SequenceAggregate, bool) {
	return l.table.Get(id)
}

// Purge drops the aggregate stored in a retired asset's slot.
func (l *SequenceLoader) Purge(slot uint32) { l.table.DeleteSlot(slot) }

func (l *SequenceLoader) Process(a *discovery.Asset) error {
	c := l.Category()
	if l.deps.Tracker.Status(a.ID, c).Terminal() {
		return nil
	}
	if err := l.deps.advanceTo(a, c, stage.StageDiscovered); err != nil {
		return err
	}

	sec := a.Doc.Sequence
	if sec == nil {
		return l.deps.fail(a, c, stage.SemanticError("missing sequence section"))
	}
	if sec.CopyFrom == "" && len(sec.Sequences) == 0 {
		return l.deps.fail(a, c, stage.SemanticError("sequence section declares nothing"))
	}
	seen := make(map[string]bool, len(sec.Sequences))
	for _, s := range sec.Sequences {
		if s.Name == "" {
			return l.deps.fail(a, c, stage.SemanticError("sequence with empty name"))
		}
		if seen[s.Name] {
			return l.deps.fail(a, c, stage.SemanticError("duplicate sequence name "+s.Name))
		}
		seen[s.Name] = true
		if len(s.Frames) == 0 {
			return l.deps.fail(a, c, stage.SemanticError("sequence "+s.Name+" has no frames"))
		}
		for i, f := range s.Frames {
			if f.DurationMS <= 0 {
				return l.deps.fail(a, c, stage.SemanticError(
					fmt.Sprintf("sequence %s frame %d duration %dms not positive", s.Name, i, f.DurationMS)))
			}
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageConfigurationParsed); err != nil {
		return err
	}

	// Resolve the copy_from base before building. An unknown base slug is
	// terminal; a known base that has not finished yet defers the pair to
	// the next tick.
	var base *SequenceAggregate
	if sec.CopyFrom != "" {
		baseSlug, err := catalog.ParseSlug(sec.CopyFrom)
		if err != nil {
			return l.deps.fail(a, c, stage.SemanticError("bad copy_from slug: "+sec.CopyFrom))
		}
		baseID, ok := l.deps.Catalog.Resolve(baseSlug)
		if !ok {
			return l.deps.fail(a, c, stage.UnresolvedReference(baseSlug))
		}
		switch st := l.deps.Tracker.Status(baseID, c); st.State {
		case stage.StateFailed:
			return l.deps.fail(a, c, stage.ResourceError(
				fmt.Sprintf("copy_from base %s failed: %s", baseSlug, st.Reason)))
		case stage.StatePending:
			// Stay at an intermediate stage; resume next tick.
			return l.deps.advanceTo(a, c, stage.StageContentProcessed)
		}
		base, _ = l.table.Get(baseID)
		if base == nil {
			return l.deps.fail(a, c, stage.ResourceError(
				fmt.Sprintf("copy_from base %s complete but aggregate missing", baseSlug)))
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageContentProcessed); err != nil {
		return err
	}

	out := make(map[string]Sequence)
	if base != nil {
		for name, s := range base.Sequences {
			out[name] = s
		}
	}
	for _, s := range sec.Sequences {
		frames := make([]Frame, 0, len(s.Frames))
		for _, f := range s.Frames {
			h, err := l.deps.Sprites.Acquire(f.Sprite)
			if err != nil {
				return l.deps.fail(a, c, stage.ResourceError(err.Error()))
			}
			frames = append(frames, Frame{
				Sprite:   h,
				Duration: time.Duration(f.DurationMS) * time.Millisecond,
			})
		}
		out[s.Name] = Sequence{Name: s.Name, Loop: s.Loop, Frames: frames}
	}

	l.table.Put(a.ID, &SequenceAggregate{Sequences: out})
	return l.deps.complete(a, c)
}
