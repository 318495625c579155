package storage

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/cascadehq/cascade/pkg/models"
)

func genDepType(t *rapid.T) models.DependencyType {
	return rapid.SampledFrom(models.DependencyTypes).Draw(t, "depType")
}

// Feature: cascade, Property 9: Edge Store Round-Trip
// Every edge set accepted by the store survives a save/load cycle with its
// pair index intact.
func TestProperty_DepStoreRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		store := NewDependencyStore(dir, "default")

		n := rapid.IntRange(1, 15).Draw(rt, "n")
		added := make(map[string]models.DependencyEdge)
		for i := 0; i < n; i++ {
			edge := models.DependencyEdge{
				ID:        fmt.Sprintf("DEP-%05d", i+1),
				Workspace: "default",
				SourceID:  fmt.Sprintf("T%d", rapid.IntRange(0, 9).Draw(rt, fmt.Sprintf("src%d", i))),
				TargetID:  fmt.Sprintf("T%d", rapid.IntRange(10, 19).Draw(rt, fmt.Sprintf("dst%d", i))),
				Type:      genDepType(rt),
				Created:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			}
			if err := store.AddEdge(edge); err != nil {
				continue // duplicate pair, fine
			}
			added[edge.ID] = edge
		}

		if err := store.Save(); err != nil {
			rt.Fatalf("save failed: %v", err)
		}

		fresh := NewDependencyStore(dir, "default")
		if err := fresh.Load(); err != nil {
			rt.Fatalf("load failed: %v", err)
		}

		if got := len(fresh.AllEdges()); got != len(added) {
			rt.Fatalf("edge count %d after load, want %d", got, len(added))
		}
		for id, want := range added {
			got, err := fresh.GetEdge(id)
			if err != nil {
				rt.Fatalf("edge %s lost: %v", id, err)
			}
			if got.SourceID != want.SourceID || got.TargetID != want.TargetID || got.Type != want.Type {
				rt.Fatalf("edge %s changed: got %+v, want %+v", id, got, want)
			}
			if byPair, ok := fresh.EdgeByPair(want.SourceID, want.TargetID); !ok || byPair.ID != id {
				rt.Fatalf("pair index broken for %s", id)
			}
		}
	})
}
