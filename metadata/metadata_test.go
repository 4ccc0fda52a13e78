package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDefaultEvenSpacing(t *testing.T) {
	m, err := NewDefault("2024/06/01", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.PartitionPath != "2024/06/01" {
		t.Errorf("expected partition path 2024/06/01, got %s", m.PartitionPath)
	}
	if m.InstantTime != InitInstant {
		t.Errorf("expected instant %s, got %s", InitInstant, m.InstantTime)
	}
	if len(m.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(m.Nodes))
	}

	// Boundaries must be strictly increasing, evenly spaced, and the last
	// one must close the range so every hash value is owned.
	step := (uint64(MaxHashValue) + 1) / 4
	for i, n := range m.Nodes {
		want := uint32(step*uint64(i+1)) - 1
		if n.Value != want {
			t.Errorf("node %d: expected boundary %d, got %d", i, want, n.Value)
		}
		if n.FileIDPfx == "" {
			t.Errorf("node %d: empty file group prefix", i)
		}
	}
	if m.Nodes[3].Value != MaxHashValue {
		t.Errorf("expected last boundary %d, got %d", MaxHashValue, m.Nodes[3].Value)
	}
}

func TestNewDefaultDistinctPrefixes(t *testing.T) {
	m, err := NewDefault("p", 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[string]bool)
	for _, n := range m.Nodes {
		if seen[n.FileIDPfx] {
			t.Errorf("duplicate file group prefix %s", n.FileIDPfx)
		}
		seen[n.FileIDPfx] = true
	}
}

func TestNewDefaultInvalidCount(t *testing.T) {
	if _, err := NewDefault("p", 0); err == nil {
		t.Error("expected error for zero bucket count")
	}
	if _, err := NewDefault("p", -3); err == nil {
		t.Error("expected error for negative bucket count")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m, err := NewDefault("2024/06/01", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := m.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestFromJSONIgnoresUnknownFields(t *testing.T) {
	data := []byte(`{
		"partitionPath": "p",
		"instantTime": "20240601120000",
		"futureField": {"nested": true},
		"nodes": [
			{"value": 100, "fileIdPfx": "f0", "tag": "extra"},
			{"value": 200, "fileIdPfx": "f1"}
		]
	}`)
	m, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(m.Nodes))
	}
	if m.Nodes[0].Value != 100 || m.Nodes[0].FileIDPfx != "f0" {
		t.Errorf("unexpected first node: %v", m.Nodes[0])
	}
}

func TestFromJSONCorrupt(t *testing.T) {
	_, err := FromJSON([]byte(`{"nodes": "not-a-list"`))
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestNodesFromJSONEmpty(t *testing.T) {
	nodes, err := NodesFromJSON(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected empty node list, got %d nodes", len(nodes))
	}

	nodes, err = NodesFromJSON([]byte{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected empty node list, got %d nodes", len(nodes))
	}
}

func TestNodesJSONRoundTrip(t *testing.T) {
	want := []Node{{Value: 100, FileIDPfx: "f0"}, {Value: 200, FileIDPfx: "f1"}}
	data, err := NodesToJSON(want)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := NodesFromJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("node list mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeFileID(t *testing.T) {
	n := Node{Value: 100, FileIDPfx: "abc"}
	if n.FileID() != "abc-0" {
		t.Errorf("expected abc-0, got %s", n.FileID())
	}
}

func TestMemoryStoreLoadOrCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.LoadOrCreate(ctx, "p1", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.LoadOrCreate(ctx, "p1", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("load-or-create not idempotent (-first +second):\n%s", diff)
	}

	// A different requested count must not replace the existing layout.
	third, err := store.LoadOrCreate(ctx, "p1", 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third.Nodes) != 4 {
		t.Errorf("expected existing 4-node layout, got %d nodes", len(third.Nodes))
	}
}

func TestMemoryStoreLoadOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const callers = 16
	results := make([]*Metadata, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := store.LoadOrCreate(ctx, "fresh", 8)
			if err != nil {
				t.Errorf("caller %d: unexpected error: %v", i, err)
				return
			}
			results[i] = m
		}(i)
	}
	wg.Wait()

	// Every caller must observe the same node set: no divergent versions.
	for i := 1; i < callers; i++ {
		if diff := cmp.Diff(results[0].Nodes, results[i].Nodes); diff != "" {
			t.Fatalf("caller %d observed divergent layout (-first +got):\n%s", i, diff)
		}
	}
}

func TestMemoryStoreCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put("bad", []byte("{{{"))

	_, err := store.LoadOrCreate(ctx, "bad", 4)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestMemoryStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.LoadOrCreate(ctx, "p", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replaced := &Metadata{
		PartitionPath: "p",
		InstantTime:   "20240601120000",
		Nodes:         []Node{{Value: MaxHashValue, FileIDPfx: "single"}},
	}
	if err := store.Save(ctx, replaced); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.LoadOrCreate(ctx, "p", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(replaced, got); diff != "" {
		t.Errorf("expected replaced layout (-want +got):\n%s", diff)
	}
}
