package loaders

import (
	"fmt"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// SpawnPlacement is one resolved spawn-table row: a live subject id and
// an in-bounds offset on the owning map.
type SpawnPlacement struct {
	Subject catalog.AssetID
	X, Y    int
	Count   int
}

// SpawnAggregate is the owning map's resolved spawn table.
type SpawnAggregate struct {
	Placements []SpawnPlacement
}

// SpawnLoader converts spawn sections into resolved spawn tables. Spawn
// rows reference character and energy assets loaded by other categories,
// so the loader defers while a subject is still pending: the pair stays
// at an intermediate stage and resumes on the next tick.
type SpawnLoader struct {
	deps  *Deps
	table *catalog.Table[*SpawnAggregate]
}

// NewSpawnLoader creates the spawn category loader.
func NewSpawnLoader(deps *Deps) *SpawnLoader {
	return &SpawnLoader{deps: deps, table: catalog.NewTable[*SpawnAggregate]()}
}

func (l *SpawnLoader) Category() catalog.Category { return catalog.CategorySpawn }

// Aggregate returns the loaded spawn table for id.
func (l *SpawnLoader) Aggregate(id catalog.AssetID) (*SpawnAggregate, bool) {
	return l.table.Get(id)
}

// Purge drops the aggregate stored in a retired asset's slot.
func (l *SpawnLoader) Purge(slot uint32) { l.table.DeleteSlot(slot) }

func (l *SpawnLoader) Process(a *discovery.Asset) error {
	c := l.Category()
	if l.deps.Tracker.Status(a.ID, c).Terminal() {
		return nil
	}
	if err := l.deps.advanceTo(a, c, stage.StageDiscovered); err != nil {
		return err
	}

	sec := a.Doc.Spawn
	if sec == nil {
		return l.deps.fail(a, c, stage.SemanticError("missing spawn section"))
	}
	mapSec := a.Doc.Map
	if mapSec == nil {
		return l.deps.fail(a, c, stage.SemanticError("spawn table without an owning map section"))
	}
	if len(sec.Entries) == 0 {
		return l.deps.fail(a, c, stage.SemanticError("spawn table declares no entries"))
	}
	for i, e := range sec.Entries {
		if e.X < 0 || e.X >= mapSec.Size.W || e.Y < 0 || e.Y >= mapSec.Size.H {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("entry %d offset (%d,%d) outside map bounds %dx%d",
					i, e.X, e.Y, mapSec.Size.W, mapSec.Size.H)))
		}
		if e.Count < 0 {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("entry %d count %d negative", i, e.Count)))
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageConfigurationParsed); err != nil {
		return err
	}

	placements := make([]SpawnPlacement, 0, len(sec.Entries))
	for _, e := range sec.Entries {
		subjSlug, err := catalog.ParseSlug(e.Subject)
		if err != nil {
			return l.deps.fail(a, c, stage.SemanticError("bad subject slug: "+e.Subject))
		}
		subjID, ok := l.deps.Catalog.Resolve(subjSlug)
		if !ok {
			return l.deps.fail(a, c, stage.UnresolvedReference(subjSlug))
		}
		_, kind, err := l.deps.Catalog.Lookup(subjID)
		if err != nil {
			// Retired between resolve and here.
			return l.deps.fail(a, c, stage.UnresolvedReference(subjSlug))
		}
		objCat, ok := objectCategoryFor(kind)
		if !ok {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("subject %s is a %s asset, not spawnable", subjSlug, kind)))
		}

		switch st := l.deps.Tracker.Status(subjID, objCat); st.State {
		case stage.StateFailed:
			return l.deps.fail(a, c, stage.ResourceError(
				fmt.Sprintf("subject %s failed to load: %s", subjSlug, st.Reason)))
		case stage.StatePending:
			// The subject exists but its object category has not finished.
			// Hold position and retry on the next tick.
			return l.deps.advanceTo(a, c, stage.StageContentProcessed)
		}

		count := e.Count
		if count == 0 {
			count = 1
		}
		placements = append(placements, SpawnPlacement{Subject: subjID, X: e.X, Y: e.Y, Count: count})
	}
	if err := l.deps.advanceTo(a, c, stage.StageContentProcessed); err != nil {
		return err
	}

	l.table.Put(a.ID, &SpawnAggregate{Placements: placements})
	return l.deps.complete(a, c)
}

// objectCategoryFor maps a spawnable kind to the category that loads its
// object aggregate.
func objectCategoryFor(kind catalog.Kind) (catalog.Category, bool) {
	switch kind {
	case catalog.KindCharacter:
		return catalog.CategoryCharacter, true
	case catalog.KindEnergy:
		return catalog.CategoryEnergy, true
	default:
		return 0, false
	}
}
