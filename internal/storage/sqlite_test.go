package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	report := RunReport{Root: "assets", Ticks: 3, Total: 2, Complete: 1, Failed: 1}
	results := []AssetResult{
		{Slug: "hero/default", Kind: "character", State: "complete"},
		{Slug: "arena/forest", Kind: "map", State: "failed", ReasonCode: "unresolved_reference", ReasonDetail: "scenery/missing"},
	}

	runID, err := store.SaveRun(report, results)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	got, err := store.RunByID(runID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() returned nil for saved run")
	}
	if got.Root != "assets" || got.Ticks != 3 || got.Total != 2 || got.Complete != 1 || got.Failed != 1 {
		t.Errorf("Run round-trip mismatch: %+v", got)
	}

	assets, err := store.AssetResults(runID)
	if err != nil {
		t.Fatalf("AssetResults() failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("Expected 2 asset results, got %d", len(assets))
	}

	// Slug order: arena/forest before hero/default
	if assets[0].Slug != "arena/forest" || assets[1].Slug != "hero/default" {
		t.Errorf("Asset results not in slug order: %v", assets)
	}
	if assets[0].State != "failed" || assets[0].ReasonCode != "unresolved_reference" {
		t.Errorf("Failed result lost its reason: %+v", assets[0])
	}
	if assets[1].ReasonCode != "" {
		t.Errorf("Complete result carries a reason: %+v", assets[1])
	}
}

func TestStoreRunByIDMissing(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	got, err := store.RunByID(42)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing run, got %+v", got)
	}
}

func TestStoreRecentRunsLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save 5 runs
	for i := 0; i < 5; i++ {
		if _, err := store.SaveRun(RunReport{Root: "assets", Ticks: uint64(i + 1)}, nil); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	// Request only the last 3
	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}

	if len(runs) != 3 {
		t.Errorf("Expected 3 runs with limit, got %d", len(runs))
	}

	// Newest first
	if runs[0].Ticks != 5 || runs[1].Ticks != 4 || runs[2].Ticks != 3 {
		t.Errorf("Runs not in expected order: %v", runs)
	}
}

func TestStoreFailureHistory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 3; i++ {
		_, err := store.SaveRun(RunReport{Root: "assets", Total: 1, Failed: 1}, []AssetResult{
			{Slug: "arena/forest", Kind: "map", State: "failed", ReasonCode: "semantic_validation", ReasonDetail: "row width mismatch"},
		})
		if err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	// One passing run for the same slug, which must not show up
	if _, err := store.SaveRun(RunReport{Root: "assets", Total: 1, Complete: 1}, []AssetResult{
		{Slug: "arena/forest", Kind: "map", State: "complete"},
	}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	history, err := store.FailureHistory("arena/forest", 10)
	if err != nil {
		t.Fatalf("FailureHistory() failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("Expected 3 failures, got %d", len(history))
	}
	for _, r := range history {
		if r.State != "failed" {
			t.Errorf("Non-failed result in failure history: %+v", r)
		}
	}
}

func TestStoreClearRuns(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	runID, err := store.SaveRun(RunReport{Root: "assets", Total: 1}, []AssetResult{
		{Slug: "hud/main", Kind: "ui", State: "complete"},
	})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	if err := store.ClearRuns(); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.RecentRuns(10)
	if len(runs) != 0 {
		t.Errorf("Expected 0 runs after clear, got %d", len(runs))
	}
	assets, _ := store.AssetResults(runID)
	if len(assets) != 0 {
		t.Errorf("Expected 0 asset results after clear, got %d", len(assets))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
