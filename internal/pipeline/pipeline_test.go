package pipeline

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/formats"
	"github.com/calder-games/assetforge/internal/loaders"
	"github.com/calder-games/assetforge/internal/stage"
)

type fixture struct {
	cat     *catalog.Catalog
	tracker *stage.Tracker
	set     *loaders.Set
	coord   *Coordinator
}

func newFixture() *fixture {
	cat := catalog.New()
	tracker := stage.NewTracker()
	deps := &loaders.Deps{
		Catalog: cat,
		Tracker: tracker,
		Sprites: loaders.NewStaticSprites(),
		Logger:  log.New(io.Discard),
	}
	set := loaders.NewSet(deps)
	return &fixture{
		cat:     cat,
		tracker: tracker,
		set:     set,
		coord:   NewCoordinator(cat, tracker, set, log.New(io.Discard)),
	}
}

func (f *fixture) register(t *testing.T, slug catalog.Slug, kind catalog.Kind) catalog.AssetID {
	t.Helper()
	id, err := f.cat.Register(slug, kind)
	if err != nil {
		t.Fatalf("Register(%q) failed: %v", slug, err)
	}
	return id
}

func (f *fixture) admit(t *testing.T, slug catalog.Slug, kind catalog.Kind, doc formats.Document) catalog.AssetID {
	t.Helper()
	id := f.register(t, slug, kind)
	required := catalog.RequiredCategories(kind)
	if kind == catalog.KindMap && doc.Spawn != nil {
		required = append(append([]catalog.Category(nil), required...), catalog.CategorySpawn)
	}
	f.coord.Admit([]discovery.Asset{{
		ID: id, Slug: slug, Kind: kind, Doc: doc, Required: required,
	}})
	return id
}

// runToQuiescence ticks until every admitted asset settles.
func (f *fixture) runToQuiescence(t *testing.T, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		f.coord.Tick()
		if f.coord.Settled() {
			return
		}
	}
	t.Fatalf("pipeline did not settle within %d ticks", maxTicks)
}

func backgroundDoc() formats.Document {
	return formats.Document{
		Background: &formats.BackgroundSection{
			Layers: []formats.BackgroundLayer{{Image: "far", Parallax: 0.3}},
		},
	}
}

func characterDoc() formats.Document {
	return formats.Document{
		Object: &formats.ObjectSection{
			DisplayName: "Hero", Health: 50, Speed: 1.5, Sequences: []string{"idle"},
		},
		Sequence: &formats.SequenceSection{
			Sequences: []formats.SequenceSpec{
				{Name: "idle", Frames: []formats.FrameSpec{{Sprite: "s0", DurationMS: 100}}},
			},
		},
	}
}

func mapDoc(withSpawn bool) formats.Document {
	doc := formats.Document{
		Map: &formats.MapSection{
			Size:       formats.Size{W: 4, H: 2},
			Tiles:      []string{"....", "####"},
			Background: "scenery/forest",
		},
	}
	if withSpawn {
		doc.Spawn = &formats.SpawnSection{
			Entries: []formats.SpawnEntry{{Subject: "hero/default", X: 1, Y: 0, Count: 2}},
		}
	}
	return doc
}

// Scenario: a map whose Map category is complete but whose Background is
// mid-pipeline reads Pending; completing Background flips it to Complete.
func TestReadinessPartialThenComplete(t *testing.T) {
	f := newFixture()
	id := f.register(t, "arena/forest", catalog.KindMap)

	asset := &discovery.Asset{
		ID: id, Slug: "arena/forest", Kind: catalog.KindMap,
		Required: catalog.RequiredCategories(catalog.KindMap),
	}
	agg := NewAggregator(f.tracker)

	if err := f.tracker.Advance(id, catalog.CategoryMap, stage.StageComplete); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if err := f.tracker.Advance(id, catalog.CategoryBackground, stage.StageConfigurationParsed); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	if got := agg.Readiness(asset); got.State != stage.StatePending {
		t.Errorf("readiness = %v, want pending", got)
	}

	if err := f.tracker.Advance(id, catalog.CategoryBackground, stage.StageComplete); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if got := agg.Readiness(asset); got.State != stage.StateComplete {
		t.Errorf("readiness = %v, want complete", got)
	}
}

// Scenario: a failed required category surfaces its reason as the
// asset's readiness without touching sibling categories.
func TestReadinessFailureCarriesReason(t *testing.T) {
	f := newFixture()
	id := f.register(t, "hero/default", catalog.KindCharacter)

	asset := &discovery.Asset{
		ID: id, Slug: "hero/default", Kind: catalog.KindCharacter,
		Required: catalog.RequiredCategories(catalog.KindCharacter),
	}
	agg := NewAggregator(f.tracker)

	if err := f.tracker.Advance(id, catalog.CategoryCharacter, stage.StageContentProcessed); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if err := f.tracker.Fail(id, catalog.CategorySequence, stage.UnresolvedReference("missing-anim-slug")); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}

	got := agg.Readiness(asset)
	if got.State != stage.StateFailed {
		t.Fatalf("readiness = %v, want failed", got)
	}
	if got.Reason.Code != stage.ReasonUnresolvedReference || got.Reason.Detail != "missing-anim-slug" {
		t.Errorf("reason = %v", got.Reason)
	}

	// The object category keeps whatever status it had.
	if st := f.tracker.Status(id, catalog.CategoryCharacter); st.State != stage.StatePending {
		t.Errorf("object category status = %v, want pending", st)
	}
	if got := f.tracker.Stage(id, catalog.CategoryCharacter); got != stage.StageContentProcessed {
		t.Errorf("object category stage = %v, want content_processed", got)
	}
}

// Categories outside the required set never gate readiness, even when
// stale entries for them exist.
func TestReadinessIgnoresUnrequiredCategories(t *testing.T) {
	f := newFixture()
	id := f.register(t, "hud/main", catalog.KindUI)

	asset := &discovery.Asset{
		ID: id, Slug: "hud/main", Kind: catalog.KindUI,
		Required: catalog.RequiredCategories(catalog.KindUI),
	}
	agg := NewAggregator(f.tracker)

	// Leftover failure in a category the asset does not require.
	if err := f.tracker.Fail(id, catalog.CategoryMap, stage.SemanticError("leftover")); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}
	if err := f.tracker.Advance(id, catalog.CategoryUI, stage.StageComplete); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	if got := agg.Readiness(asset); got.State != stage.StateComplete {
		t.Errorf("readiness = %v, want complete", got)
	}
}

func TestCoordinatorEndToEnd(t *testing.T) {
	f := newFixture()

	bgID := f.admit(t, "scenery/forest", catalog.KindBackground, backgroundDoc())
	heroID := f.admit(t, "hero/default", catalog.KindCharacter, characterDoc())
	mapID := f.admit(t, "arena/forest", catalog.KindMap, mapDoc(true))

	f.runToQuiescence(t, 5)

	for _, id := range []catalog.AssetID{bgID, heroID, mapID} {
		if !f.coord.IsReady(id) {
			t.Errorf("asset %v not ready: %v", id, f.coord.Status(id))
		}
	}

	// Aggregates published for every completed category.
	if _, ok := f.set.Map.Aggregate(mapID); !ok {
		t.Error("map aggregate missing")
	}
	if _, ok := f.set.Background.Aggregate(bgID); !ok {
		t.Error("background aggregate missing")
	}
	if _, ok := f.set.Character.Aggregate(heroID); !ok {
		t.Error("character aggregate missing")
	}
	if _, ok := f.set.Sequence.Aggregate(heroID); !ok {
		t.Error("sequence aggregate missing")
	}

	spawn, ok := f.set.Spawn.Aggregate(mapID)
	if !ok || len(spawn.Placements) != 1 {
		t.Fatalf("spawn aggregate = %+v, %v", spawn, ok)
	}
	if spawn.Placements[0].Subject != heroID {
		t.Errorf("spawn subject = %v, want %v", spawn.Placements[0].Subject, heroID)
	}

	// Readiness is monotonic: further ticks never regress Complete.
	f.coord.Tick()
	for _, id := range []catalog.AssetID{bgID, heroID, mapID} {
		if !f.coord.IsReady(id) {
			t.Errorf("asset %v regressed after extra tick", id)
		}
	}
}

func TestCoordinatorFailureIsolation(t *testing.T) {
	f := newFixture()

	goodID := f.admit(t, "hud/main", catalog.KindUI, formats.Document{
		UI: &formats.UISection{Widgets: []formats.WidgetSpec{{ID: "root", Anchor: "center", W: 4, H: 2}}},
	})
	// Character whose object section is invalid.
	badDoc := characterDoc()
	badDoc.Object.Health = -1
	badID := f.admit(t, "hero/broken", catalog.KindCharacter, badDoc)

	f.runToQuiescence(t, 5)

	if !f.coord.IsReady(goodID) {
		t.Errorf("unrelated asset affected by failure: %v", f.coord.Status(goodID))
	}
	got := f.coord.Status(badID)
	if got.State != stage.StateFailed || got.Reason.Code != stage.ReasonSemanticValidation {
		t.Errorf("broken asset status = %v, want failed(semantic_validation)", got)
	}
	// The broken character's sequence category still completed on its own.
	if st := f.tracker.Status(badID, catalog.CategorySequence); st.State != stage.StateComplete {
		t.Errorf("sibling category of failed asset = %v, want complete", st)
	}
}

// Scenario: retiring an asset mid-load reads Failed(cancelled) from the
// next aggregation on, and its identity stops resolving.
func TestCoordinatorCancellation(t *testing.T) {
	f := newFixture()

	// The copy_from base is registered but never admitted, so the child
	// defers indefinitely and stays Pending.
	f.register(t, "hero/base", catalog.KindCharacter)
	childDoc := characterDoc()
	childDoc.Sequence.CopyFrom = "hero/base"
	childID := f.admit(t, "hero/shadow", catalog.KindCharacter, childDoc)

	f.coord.Tick()
	if got := f.coord.Status(childID); got.State != stage.StatePending {
		t.Fatalf("status before retire = %v, want pending", got)
	}

	if !f.coord.Retire(childID) {
		t.Fatal("Retire() reported false")
	}

	// Cancellation lands at the next aggregation boundary.
	f.coord.Tick()
	got := f.coord.Status(childID)
	if got.State != stage.StateFailed || got.Reason.Code != stage.ReasonCancelled {
		t.Fatalf("status after retire = %v, want failed(cancelled)", got)
	}
	if _, ok := f.cat.Resolve("hero/shadow"); ok {
		t.Error("retired slug still resolves")
	}

	// Per-asset state is destroyed; the sticky cancelled status remains.
	if st := f.tracker.Status(childID, catalog.CategoryCharacter); st.State != stage.StatePending {
		t.Errorf("tracker entry survived retirement: %v", st)
	}
	f.coord.Tick()
	if got := f.coord.Status(childID); got.State != stage.StateFailed {
		t.Errorf("cancelled status not sticky across ticks: %v", got)
	}
}

func TestQueriesDoNotTriggerWork(t *testing.T) {
	f := newFixture()
	id := f.admit(t, "scenery/forest", catalog.KindBackground, backgroundDoc())

	// Before any tick the published snapshot is empty.
	if f.coord.IsReady(id) {
		t.Error("IsReady() true before any tick")
	}
	snap := f.coord.Snapshot()
	for i := 0; i < 10; i++ {
		_ = f.coord.Status(id)
		_ = f.coord.IsReady(id)
	}
	if f.coord.Snapshot() != snap {
		t.Error("querying published a new snapshot")
	}
	if f.coord.Phase() != PhaseIdle {
		t.Errorf("phase = %v before first tick, want idle", f.coord.Phase())
	}

	f.coord.Tick()
	if f.coord.Phase() != PhasePublished {
		t.Errorf("phase = %v after tick, want published", f.coord.Phase())
	}
	if !f.coord.IsReady(id) {
		t.Errorf("background asset not ready after tick: %v", f.coord.Status(id))
	}
}

func TestSnapshotBatchConsistency(t *testing.T) {
	f := newFixture()

	ids := []catalog.AssetID{
		f.admit(t, "scenery/a", catalog.KindBackground, backgroundDoc()),
		f.admit(t, "scenery/b", catalog.KindBackground, backgroundDoc()),
		f.admit(t, "scenery/c", catalog.KindBackground, backgroundDoc()),
	}

	snap := f.coord.Tick()
	if snap.Tick != 1 {
		t.Errorf("snapshot tick = %d, want 1", snap.Tick)
	}
	for _, id := range ids {
		if snap.Status(id).State != stage.StateComplete {
			t.Errorf("asset %v = %v in batch, want complete", id, snap.Status(id))
		}
	}
}
