package loaders

import (
	"fmt"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// BackgroundLayer is one resolved parallax layer.
type BackgroundLayer struct {
	Sprite   SpriteHandle
	Parallax float64
}

// BackgroundAggregate is the resolved layer stack, near to far.
type BackgroundAggregate struct {
	Layers []BackgroundLayer
}

// BackgroundLoader converts background sections into layer stacks.
type BackgroundLoader struct {
	deps  *Deps
	table *catalog.Table[*BackgroundAggregate]
}

// NewBackgroundLoader creates the background category loader.
func NewBackgroundLoader(deps *Deps) *BackgroundLoader {
	return &BackgroundLoader{deps: deps, table: catalog.NewTable[*BackgroundAggregate]()}
}

func (l *BackgroundLoader) Category() catalog.Category { return catalog.CategoryBackground }

// Aggregate returns the loaded background for id.
func (l *BackgroundLoader) Aggregate(id catalog.AssetID) (*BackgroundAggregate, bool) {
	return l.table.Get(id)
}

// Purge drops the aggregate stored in a retired asset's slot.
func (l *BackgroundLoader) Purge(slot uint32) { l.table.DeleteSlot(slot) }

func (l *BackgroundLoader) Process(a *discovery.Asset) error {
	c := l.Category()
	if l.deps.Tracker.Status(a.ID, c).Terminal() {
		return nil
	}
	if err := l.deps.advanceTo(a, c, stage.StageDiscovered); err != nil {
		return err
	}

	sec := a.Doc.Background
	if sec == nil {
		return l.deps.fail(a, c, stage.SemanticError("missing background section"))
	}
	if len(sec.Layers) == 0 {
		return l.deps.fail(a, c, stage.SemanticError("background declares no layers"))
	}
	for i, layer := range sec.Layers {
		if layer.Parallax < 0 || layer.Parallax > 1 {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("layer %d parallax %g outside [0,1]", i, layer.Parallax)))
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageConfigurationParsed); err != nil {
		return err
	}

	layers := make([]BackgroundLayer, 0, len(sec.Layers))
	for _, layer := range sec.Layers {
		h, err := l.deps.Sprites.Acquire(layer.Image)
		if err != nil {
			return l.deps.fail(a, c, stage.ResourceError(err.Error()))
		}
		layers = append(layers, BackgroundLayer{Sprite: h, Parallax: layer.Parallax})
	}
	if err := l.deps.advanceTo(a, c, stage.StageContentProcessed); err != nil {
		return err
	}

	l.table.Put(a.ID, &BackgroundAggregate{Layers: layers})
	return l.deps.complete(a, c)
}
