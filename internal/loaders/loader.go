// Package loaders holds the category loader contract and the concrete
// loaders for every asset category. A loader consumes an asset's parsed
// document, performs the category's semantic validation, builds the
// category's runtime aggregate, and drives the stage tracker for its own
// category only.
//
// Content failures never escape a loader as errors: the pair is marked
// Failed in the tracker and the rest of the tick proceeds. A non-nil
// error from Process means a contract violation (stage discipline), which
// the coordinator logs and drops.
package loaders

import (
	"github.com/charmbracelet/log"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// Loader is the contract every category loader implements. One Process
// call drives at most one (asset, category) pair to Complete, fails it,
// or leaves it at an intermediate stage to resume on a later tick.
type Loader interface {
	Category() catalog.Category
	Process(a *discovery.Asset) error
}

// Deps bundles the collaborators shared by all loaders. Constructed once
// by the coordinator and passed to every loader; nothing here is ambient
// state.
type Deps struct {
	Catalog *catalog.Catalog
	Tracker *stage.Tracker
	Sprites SpriteResolver
	Logger  *log.Logger
}

// advanceTo moves the pair forward to s if it is currently behind it.
// Same-stage calls no-op inside the tracker.
func (d *Deps) advanceTo(a *discovery.Asset, c catalog.Category, s stage.LoadStage) error {
	if d.Tracker.Stage(a.ID, c) < s {
		return d.Tracker.Advance(a.ID, c, s)
	}
	return nil
}

// fail records a terminal content failure for the pair and logs it.
// The returned error is only non-nil on a stage-discipline violation.
func (d *Deps) fail(a *discovery.Asset, c catalog.Category, reason stage.Reason) error {
	d.Logger.Debug("category failed", "slug", a.Slug, "category", c, "reason", reason)
	return d.Tracker.Fail(a.ID, c, reason)
}

// complete marks the pair done and logs it.
func (d *Deps) complete(a *discovery.Asset, c catalog.Category) error {
	if err := d.Tracker.Advance(a.ID, c, stage.StageComplete); err != nil {
		return err
	}
	d.Logger.Debug("category complete", "slug", a.Slug, "category", c)
	return nil
}
