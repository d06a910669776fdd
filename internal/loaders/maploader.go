package loaders

import (
	"fmt"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// Tile is one cell of resolved map geometry.
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
	TileHazard
)

// MapAggregate is the runtime-ready output of the map category: resolved
// tile geometry plus the identity of the background the map uses.
type MapAggregate struct {
	Width      int
	Height     int
	Tiles      [][]Tile
	Background catalog.AssetID
	HasSpawns  bool
}

// InBounds reports whether (x, y) lies inside the grid.
func (m *MapAggregate) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// MapLoader converts map sections into MapAggregates.
type MapLoader struct {
	deps  *Deps
	table *catalog.Table[*MapAggregate]
}

// NewMapLoader creates the map category loader.
func NewMapLoader(deps *Deps) *MapLoader {
	return &MapLoader{deps: deps, table: catalog.NewTable[*MapAggregate]()}
}

func (l *MapLoader) Category() catalog.Category { return catalog.CategoryMap }

// Aggregate returns the loaded map for id, present only once the pair is
// Complete.
func (l *MapLoader) Aggregate(id catalog.AssetID) (*MapAggregate, bool) {
	return l.table.Get(id)
}

// Purge drops the aggregate stored in a retired asset's slot.
func (l *MapLoader) Purge(slot uint32) { l.table.DeleteSlot(slot) }

func (l *MapLoader) Process(a *discovery.Asset) error {
	c := l.Category()
	if l.deps.Tracker.Status(a.ID, c).Terminal() {
		return nil
	}
	if err := l.deps.advanceTo(a, c, stage.StageDiscovered); err != nil {
		return err
	}

	sec := a.Doc.Map
	if sec == nil {
		return l.deps.fail(a, c, stage.SemanticError("missing map section"))
	}
	if sec.Size.W <= 0 || sec.Size.H <= 0 {
		return l.deps.fail(a, c, stage.SemanticError(
			fmt.Sprintf("map size %dx%d out of range", sec.Size.W, sec.Size.H)))
	}
	if len(sec.Tiles) != sec.Size.H {
		return l.deps.fail(a, c, stage.SemanticError(
			fmt.Sprintf("map has %d tile rows, declared height %d", len(sec.Tiles), sec.Size.H)))
	}
	for y, row := range sec.Tiles {
		if len([]rune(row)) != sec.Size.W {
			return l.deps.fail(a, c, stage.SemanticError(
				fmt.Sprintf("tile row %d has %d cells, declared width %d", y, len([]rune(row)), sec.Size.W)))
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageConfigurationParsed); err != nil {
		return err
	}

	bgSlug, err := catalog.ParseSlug(sec.Background)
	if err != nil {
		return l.deps.fail(a, c, stage.SemanticError("bad background slug: "+sec.Background))
	}
	bgID, ok := l.deps.Catalog.Resolve(bgSlug)
	if !ok {
		return l.deps.fail(a, c, stage.UnresolvedReference(bgSlug))
	}
	if kind, _ := l.deps.Catalog.KindOf(bgID); kind != catalog.KindBackground {
		return l.deps.fail(a, c, stage.SemanticError(
			fmt.Sprintf("background reference %s is a %s asset", bgSlug, kind)))
	}

	tiles := make([][]Tile, sec.Size.H)
	for y, row := range sec.Tiles {
		tiles[y] = make([]Tile, 0, sec.Size.W)
		for _, r := range row {
			t, ok := tileOf(r)
			if !ok {
				return l.deps.fail(a, c, stage.SemanticError(
					fmt.Sprintf("unknown tile rune %q in row %d", r, y)))
			}
			tiles[y] = append(tiles[y], t)
		}
	}
	if err := l.deps.advanceTo(a, c, stage.StageContentProcessed); err != nil {
		return err
	}

	l.table.Put(a.ID, &MapAggregate{
		Width:      sec.Size.W,
		Height:     sec.Size.H,
		Tiles:      tiles,
		Background: bgID,
		HasSpawns:  a.Doc.Spawn != nil,
	})
	return l.deps.complete(a, c)
}

func tileOf(r rune) (Tile, bool) {
	switch r {
	case '.', ' ':
		return TileFloor, true
	case '#':
		return TileWall, true
	case '~':
		return TileHazard, true
	default:
		return 0, false
	}
}
