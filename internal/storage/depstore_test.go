package storage

import (
	"testing"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

func sampleEdge(id, source, target string, depType models.DependencyType) models.DependencyEdge {
	return models.DependencyEdge{
		ID:        id,
		Workspace: "default",
		SourceID:  source,
		TargetID:  target,
		Type:      depType,
		Created:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDepStoreAddAndGet(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")

	if err := store.AddEdge(sampleEdge("DEP-00001", "A", "B", models.FinishToStart)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetEdge("DEP-00001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SourceID != "A" || got.TargetID != "B" || got.Type != models.FinishToStart {
		t.Errorf("edge = %+v", got)
	}
}

func TestDepStoreRejectsDuplicatePair(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")
	if err := store.AddEdge(sampleEdge("DEP-00001", "A", "B", models.FinishToStart)); err != nil {
		t.Fatal(err)
	}

	// Different ID and type, same ordered pair.
	if err := store.AddEdge(sampleEdge("DEP-00002", "A", "B", models.StartToStart)); err == nil {
		t.Fatal("expected a duplicate pair error")
	}

	// The reverse pair is a different pair at this layer; cycle rejection
	// happens above.
	if err := store.AddEdge(sampleEdge("DEP-00003", "B", "A", models.FinishToStart)); err != nil {
		t.Fatalf("reverse pair rejected: %v", err)
	}
}

func TestDepStoreEdgeByPair(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")
	if err := store.AddEdge(sampleEdge("DEP-00001", "A", "B", models.FinishToStart)); err != nil {
		t.Fatal(err)
	}

	edge, ok := store.EdgeByPair("A", "B")
	if !ok || edge.ID != "DEP-00001" {
		t.Fatalf("EdgeByPair = %+v, %v", edge, ok)
	}
	if _, ok := store.EdgeByPair("B", "A"); ok {
		t.Fatal("reverse pair must not match")
	}
}

func TestDepStoreRemoveFreesPair(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")
	if err := store.AddEdge(sampleEdge("DEP-00001", "A", "B", models.FinishToStart)); err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveEdge("DEP-00001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The pair slot is free again, e.g. for a type change.
	if err := store.AddEdge(sampleEdge("DEP-00002", "A", "B", models.FinishToFinish)); err != nil {
		t.Fatalf("pair still blocked after removal: %v", err)
	}
}

func TestDepStoreRemoveMissing(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")
	if err := store.RemoveEdge("DEP-99999"); err == nil {
		t.Fatal("expected an error for missing edge")
	}
}

func TestDepStoreAdjacency(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")
	for _, e := range []models.DependencyEdge{
		sampleEdge("DEP-00002", "A", "C", models.StartToStart),
		sampleEdge("DEP-00001", "A", "B", models.FinishToStart),
		sampleEdge("DEP-00003", "B", "C", models.FinishToFinish),
	} {
		if err := store.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	out := store.Outgoing("A")
	if len(out) != 2 || out[0].ID != "DEP-00001" || out[1].ID != "DEP-00002" {
		t.Fatalf("Outgoing(A) = %+v", out)
	}

	in := store.Incoming("C")
	if len(in) != 2 || in[0].ID != "DEP-00002" || in[1].ID != "DEP-00003" {
		t.Fatalf("Incoming(C) = %+v", in)
	}

	if all := store.AllEdges(); len(all) != 3 {
		t.Fatalf("AllEdges = %+v", all)
	}
}

func TestDepStoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewDependencyStore(dir, "default")
	if err := store.AddEdge(sampleEdge("DEP-00001", "A", "B", models.FinishToStart)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	fresh := NewDependencyStore(dir, "default")
	if err := fresh.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, err := fresh.GetEdge("DEP-00001"); err != nil {
		t.Fatalf("edge lost across save/load: %v", err)
	}

	// The pair index must be rebuilt on load.
	if err := fresh.AddEdge(sampleEdge("DEP-00002", "A", "B", models.StartToStart)); err == nil {
		t.Fatal("pair index not rebuilt after load")
	}
}

func TestDepStoreLoadMissingFile(t *testing.T) {
	store := NewDependencyStore(t.TempDir(), "default")
	if err := store.Load(); err != nil {
		t.Fatalf("load of a fresh workspace must not fail: %v", err)
	}
	if len(store.AllEdges()) != 0 {
		t.Fatal("expected an empty store")
	}
}
