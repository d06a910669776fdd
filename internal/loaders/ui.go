package loaders

import (
	"fmt"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/formats"
	"github.com/calder-games/assetforge/internal/stage"
)

// Widget is one resolved node of a UI layout.
type Widget struct {
	ID       string
	Anchor   string
	W, H     int
	Children []Widget
}

// UIAggregate is the resolved widget tree of a UI layout asset.
type UIAggregate struct {
	Widgets []Widget
}

var validAnchors = map[string]bool{
	"top-left": true, "top": true, "top-right": true,
	"left": true, "center": true, "right": true,
	"bottom-left": true, "bottom": true, "bottom-right": true,
}

// UILoader converts ui sections into widget trees.
type UILoader struct {
	deps  *Deps
	table *catalog.Table[*UIAggregate]
}

// NewUILoader creates the ui category loader.
func NewUILoader(deps *Deps) *UILoader {
	return &UILoader{deps: deps, table: catalog.NewTable[*UIAggregate]()}
}

func (l *UILoader) Category() catalog.Category { return catalog.CategoryUI }

// Aggregate returns the loaded widget tree for id.
func (l *UILoader) Aggregate(id catalog.AssetID) (*UIAggregate, bool) {
	return l.table.Get(id)
}

// Purge drops the aggregate stored in a retired asset's slot.
func (l *UILoader) Purge(slot uint32) { l.table.DeleteSlot(slot) }

func (l *UILoader) Process(a *discovery.Asset) error {
	c := l.Category()
	if l.deps.Tracker.Status(a.ID, c).Terminal() {
		return nil
	}
	if err := l.deps.advanceTo(a, c, stage.StageDiscovered); err != nil {
		return err
	}

	sec := a.Doc.UI
	if sec == nil {
		return l.deps.fail(a, c, stage.SemanticError("missing ui section"))
	}
	if len(sec.Widgets) == 0 {
		return l.deps.fail(a, c, stage.SemanticError("ui section declares no widgets"))
	}

	ids := make(map[string]bool)
	if reason, ok := checkWidgets(sec.Widgets, ids); !ok {
		return l.deps.fail(a, c, reason)
	}
	if err := l.deps.advanceTo(a, c, stage.StageConfigurationParsed); err != nil {
		return err
	}

	widgets := buildWidgets(sec.Widgets)
	if err := l.deps.advanceTo(a, c, stage.StageContentProcessed); err != nil {
		return err
	}

	l.table.Put(a.ID, &UIAggregate{Widgets: widgets})
	return l.deps.complete(a, c)
}

// checkWidgets validates a widget subtree: unique ids across the whole
// tree, known anchors, non-negative dimensions.
func checkWidgets(specs []formats.WidgetSpec, ids map[string]bool) (stage.Reason, bool) {
	for _, w := range specs {
		if w.ID == "" {
			return stage.SemanticError("widget with empty id"), false
		}
		if ids[w.ID] {
			return stage.SemanticError("duplicate widget id " + w.ID), false
		}
		ids[w.ID] = true
		if !validAnchors[w.Anchor] {
			return stage.SemanticError(fmt.Sprintf("widget %s has unknown anchor %q", w.ID, w.Anchor)), false
		}
		if w.W < 0 || w.H < 0 {
			return stage.SemanticError(fmt.Sprintf("widget %s has negative size %dx%d", w.ID, w.W, w.H)), false
		}
		if reason, ok := checkWidgets(w.Children, ids); !ok {
			return reason, false
		}
	}
	return stage.Reason{}, true
}

func buildWidgets(specs []formats.WidgetSpec) []Widget {
	out := make([]Widget, 0, len(specs))
	for _, w := range specs {
		out = append(out, Widget{
			ID:       w.ID,
			Anchor:   w.Anchor,
			W:        w.W,
			H:        w.H,
			Children: buildWidgets(w.Children),
		})
	}
	return out
}
