package pipeline

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/loaders"
	"github.com/calder-games/assetforge/internal/stage"
)

// Phase is the coordinator's position in its per-tick cycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseDispatching
	PhaseAggregating
	PhasePublished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDispatching:
		return "dispatching"
	case PhaseAggregating:
		return "aggregating"
	case PhasePublished:
		return "published"
	default:
		return "unknown"
	}
}

// Snapshot is the readiness view published at the end of a tick. Queries
// read the last snapshot; they never trigger work.
type Snapshot struct {
	Tick     uint64
	Statuses map[catalog.AssetID]stage.Status
}

// Status returns the snapshot's status for id, Pending if unknown.
func (s *Snapshot) Status(id catalog.AssetID) stage.Status {
	if s == nil {
		return stage.Pending
	}
	if st, ok := s.Statuses[id]; ok {
		return st
	}
	return stage.Pending
}

// Coordinator drives one tick of the pipeline at a time and exposes the
// query surface used by application state logic. Within a tick, each
// category runs on its own goroutine and processes its assets
// sequentially, which preserves single-writer ownership of every tracker
// slice and aggregate table; a barrier separates dispatch from
// aggregation so readiness never flaps mid-tick.
type Coordinator struct {
	cat     *catalog.Catalog
	tracker *stage.Tracker
	set     *loaders.Set
	agg     *Aggregator
	logger  *log.Logger

	mu      sync.Mutex // serializes ticks and admission
	assets  map[catalog.AssetID]*discovery.Asset
	retired map[catalog.AssetID]stage.Status // sticky, for diagnostics
	tick    uint64

	phase    atomic.Int32
	snapshot atomic.Pointer[Snapshot]
}

// NewCoordinator wires the pipeline around an existing catalog, tracker,
// and loader set.
func NewCoordinator(cat *catalog.Catalog, tracker *stage.Tracker, set *loaders.Set, logger *log.Logger) *Coordinator {
	c := &Coordinator{
		cat:     cat,
		tracker: tracker,
		set:     set,
		agg:     NewAggregator(tracker),
		logger:  logger,
		assets:  make(map[catalog.AssetID]*discovery.Asset),
		retired: make(map[catalog.AssetID]stage.Status),
	}
	c.snapshot.Store(&Snapshot{Statuses: map[catalog.AssetID]stage.Status{}})
	return c
}

// Admit adds discovered assets to the pending set. Admission does not
// start work; the next Tick picks them up.
func (c *Coordinator) Admit(assets []discovery.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range assets {
		a := assets[i]
		c.assets[a.ID] = &a
	}
}

// Retire invalidates the asset's identity. In-flight category work is
// not interrupted; the asset's pending pairs read as Failed(cancelled)
// from the next aggregation boundary on, and its tracker entries and
// aggregates are purged there.
func (c *Coordinator) Retire(id catalog.AssetID) bool {
	return c.cat.Retire(id)
}

// Tick runs one dispatch/aggregate cycle and publishes the resulting
// snapshot. Safe to call from one goroutine at a time; concurrent calls
// serialize.
func (c *Coordinator) Tick() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	prev := c.snapshot.Load()

	c.phase.Store(int32(PhaseDispatching))
	c.dispatch(prev)

	c.phase.Store(int32(PhaseAggregating))
	snap := c.aggregate(prev)

	c.snapshot.Store(snap)
	c.phase.Store(int32(PhasePublished))
	return snap
}

// dispatch invokes each category loader for every live asset that
// requires the category and is not yet terminal there. One goroutine per
// category; errgroup.Wait is the barrier between dispatch and
// aggregation.
func (c *Coordinator) dispatch(prev *Snapshot) {
	var eg errgroup.Group

	for _, ld := range c.set.All() {
		work := c.pendingFor(ld.Category(), prev)
		if len(work) == 0 {
			continue
		}
		eg.Go(func() error {
			for _, a := range work {
				if err := ld.Process(a); err != nil {
					// Stage-discipline violations are loader bugs: log
					// loudly, drop the transition, keep the tick alive.
					c.logger.Error("loader contract violation",
						"category", ld.Category(), "slug", a.Slug, "err", err)
				}
			}
			return nil
		})
	}

	// Loaders never return errors through the group; Wait is purely the
	// dispatch barrier.
	_ = eg.Wait()
}

// pendingFor selects the assets a category must process this tick.
func (c *Coordinator) pendingFor(cat catalog.Category, prev *Snapshot) []*discovery.Asset {
	var work []*discovery.Asset
	for id, a := range c.assets {
		if !c.cat.Alive(id) {
			continue // cancellation handled at the aggregation boundary
		}
		if prev.Status(id).Terminal() {
			continue // no further work for settled assets
		}
		if !a.RequiresCategory(cat) {
			continue
		}
		if c.tracker.Status(id, cat).Terminal() {
			continue
		}
		work = append(work, a)
	}
	return work
}

// aggregate computes the tick's snapshot: cancelled assets first, then
// batch readiness over the live remainder. Terminal statuses from
// earlier ticks are carried forward untouched, which keeps readiness
// monotonic.
func (c *Coordinator) aggregate(prev *Snapshot) *Snapshot {
	statuses := make(map[catalog.AssetID]stage.Status, len(c.assets))

	var live []*discovery.Asset
	for id, a := range c.assets {
		if c.cat.Alive(id) {
			live = append(live, a)
			continue
		}

		// Retired mid-load: pending pairs become Failed(cancelled) at
		// this boundary, then all per-asset state is destroyed.
		st := prev.Status(id)
		if !st.Terminal() {
			st = stage.Failed(stage.Cancelled)
		}
		c.retired[id] = st
		c.tracker.Purge(id.Slot)
		c.set.Purge(id.Slot)
		delete(c.assets, id)
		c.logger.Info("asset retired", "id", id, "status", st)
	}

	for id, st := range c.retired {
		statuses[id] = st
	}

	for id, st := range c.agg.ReadinessBatch(live) {
		if prevSt := prev.Status(id); prevSt.Terminal() {
			st = prevSt
		}
		statuses[id] = st
	}

	return &Snapshot{Tick: c.tick, Statuses: statuses}
}

// Phase reports where the coordinator currently is in its tick cycle.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// Snapshot returns the last published snapshot.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Status reads id's readiness from the last published snapshot.
func (c *Coordinator) Status(id catalog.AssetID) stage.Status {
	return c.snapshot.Load().Status(id)
}

// IsReady reports whether id's readiness is Complete in the last
// published snapshot.
func (c *Coordinator) IsReady(id catalog.AssetID) bool {
	return c.Status(id).State == stage.StateComplete
}

// Settled reports whether every admitted asset has reached a terminal
// readiness in the last snapshot. Drives run-to-quiescence loops.
func (c *Coordinator) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshot.Load()
	for id := range c.assets {
		if !snap.Status(id).Terminal() {
			return false
		}
	}
	return true
}

// Loaders exposes the loader set for downstream aggregate reads.
func (c *Coordinator) Loaders() *loaders.Set {
	return c.set
}

// Assets returns the currently admitted assets in slug order, for
// reporting surfaces.
func (c *Coordinator) Assets() []*discovery.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*discovery.Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
