// Package pipeline drives loading ticks and aggregates per-category
// status into a single readiness signal per asset. It owns all shared
// pipeline state explicitly: catalog, tracker, and loader set are
// constructed at startup and passed in, never reached through globals.
package pipeline

import (
	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/stage"
)

// Aggregator computes asset-wide readiness from the stage tracker. It is
// a pure reader: readiness is a function of current tracker state and the
// asset's required-category set.
type Aggregator struct {
	tracker *stage.Tracker
}

// NewAggregator creates an aggregator over tracker.
func NewAggregator(tracker *stage.Tracker) *Aggregator {
	return &Aggregator{tracker: tracker}
}

// Readiness folds the statuses of the asset's required categories:
// Failed as soon as any required category failed (first in category
// order wins), Complete only when every required category completed,
// Pending otherwise. Categories outside the required set never gate the
// asset, even if stale entries exist for them.
func (g *Aggregator) Readiness(a *discovery.Asset) stage.Status {
	complete := true
	for _, c := range a.Required {
		st := g.tracker.Status(a.ID, c)
		switch st.State {
		case stage.StateFailed:
			return st
		case stage.StatePending:
			complete = false
		}
	}
	if complete {
		// An empty required set also lands here; discovery rejects such
		// assets before they are admitted.
		return stage.Complete
	}
	return stage.Pending
}

// ReadinessBatch computes readiness for a set of assets in one pass.
// The coordinator calls it exactly once per tick, after the dispatch
// barrier, so no caller observes a torn mid-tick state.
func (g *Aggregator) ReadinessBatch(assets []*discovery.Asset) map[catalog.AssetID]stage.Status {
	out := make(map[catalog.AssetID]stage.Status, len(assets))
	for _, a := range assets {
		out[a.ID] = g.Readiness(a)
	}
	return out
}
