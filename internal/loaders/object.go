package loaders

import (
	"fmt"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// ObjectAggregate is the runtime stat block of a character or energy
// asset. Character assets carry Health/Speed, energy assets Amount/Radius.
type ObjectAggregate struct {
	DisplayName string
	Health      int
	Speed       float64
	Amount      int
	Radius      float64
	Sequences   []string
}

// ObjectLoader converts object sections into stat blocks. The same
// implementation serves both object categories; the variant decides which
// stat fields are required and which asset kind the loader accepts.
type ObjectLoader struct {
	deps     *Deps
	category catalog.Category
	kind     catalog.Kind
	table    *catalog.Table[*ObjectAggregate]
}

// NewCharacterLoader creates the object/character category loader.
func NewCharacterLoader(deps *Deps) *ObjectLoader {
	return &ObjectLoader{
		deps:     deps,
		category: catalog.CategoryCharacter,
		kind:     catalog.KindCharacter,
		table:    catalog.NewTable[*ObjectAggregate](),
	}
}

// NewEnergyLoader creates the object/energy category loader.
func NewEnergyLoader(deps *Deps) *ObjectLoader {
	return &ObjectLoader{
		deps:     deps,
		category: catalog.CategoryEnergy,
		kind:     catalog.KindEnergy,
		table:    catalog.NewTable[*ObjectAggregate](),
	}
}

func (l *ObjectLoader) Category() catalog.Category { return l.category }

// Aggregate returns the loaded stat block for id.
func (l *ObjectLoader) Aggregate(id catalog.AssetID) (*ObjectAggregate, bool) {
	return l.table.Get(id)
}

// Purge drops the aggregate stored in a retired asset's slot.
func (l *ObjectLoader) Purge(slot uint32) { l.table.DeleteSlot(slot) }

func (l *ObjectLoader) Process(a *discovery.Asset) error {
	c := l.category
	if l.deps.Tracker.Status(a.ID, c).Terminal() {
		return nil
	}
	if err := l.deps.advanceTo(a, c, stage.StageDiscovered); err != nil {
		return err
	}

	sec := a.Doc.Object
	if sec == nil {
		return l.deps.fail(a, c, stage.SemanticError("missing object section"))
	}
	if sec.DisplayName == "" {
		return l.deps.fail(a, c, stage.SemanticError("object has no display_name"))
	}
	switch l.kind {
	case catalog.KindCharacter:
		if sec.Health <= 0 {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("character health %d not positive", sec.Health)))
		}
		if sec.Speed <= 0 {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("character speed %g not positive", sec.Speed)))
		}
	case catalog.KindEnergy:
		if sec.Amount <= 0 {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("energy amount %d not positive", sec.Amount)))
		}
		if sec.Radius < 0 {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("energy radius %g negative", sec.Radius)))
		}
	}
	if len(sec.Sequences) == 0 {
		return l.deps.fail(a, c, stage.SemanticError("object lists no sequences"))
	}
	if err := l.deps.advanceTo(a, c, stage.StageConfigurationParsed); err != nil {
		return err
	}

	// Every listed name must be declared by the asset's own sequence
	// section, or come through a copy_from base that this category
	// cannot see into.
	declared := make(map[string]bool)
	if a.Doc.Sequence != nil {
		for _, s := range a.Doc.Sequence.Sequences {
			declared[s.Name] = true
		}
	}
	hasBase := a.Doc.Sequence != nil && a.Doc.Sequence.CopyFrom != ""
	for _, name := range sec.Sequences {
		if !declared[name] && !hasBase {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("object references undeclared sequence %q", name)))
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageContentProcessed); err != nil {
		return err
	}

	l.table.Put(a.ID, &ObjectAggregate{
		DisplayName: sec.DisplayName,
		Health:      sec.Health,
		Speed:       sec.Speed,
		Amount:      sec.Amount,
		Radius:      sec.Radius,
		Sequences:   append([]string(nil), sec.Sequences...),
	})
	return l.deps.complete(a, c)
}
