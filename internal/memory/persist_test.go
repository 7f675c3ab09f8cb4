package memory

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFilePersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories", "memory_database.json")
	p := NewFilePersister(path)

	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Memories: []Node{{
			ID:               "mem_abc123def456",
			Timestamp:        ts,
			Content:          "زيارة حديقة الأزهر مع العائلة",
			MemoryType:       TypeEpisodic,
			Tags:             []string{"family", "outdoors"},
			EmotionalContext: EmotionPositive,
			ImportanceScore:  0.8,
			RetrievalCount:   2,
			LastAccessed:     ts,
			Metadata:         map[string]string{"location": "القاهرة"},
		}},
		Edges:    []Edge{{A: "mem_a", B: "mem_b", Strength: 0.75}},
		Clusters: []Cluster{{ID: "cluster_0", Name: "زيارة حديقة الأزهر", MemberIDs: []string{"mem_abc123def456"}, CentralTheme: "زيارة حديقة الأزهر مع العائلة", Created: ts, Strength: 1.0}},
	}

	if err := p.SaveAll(context.Background(), snap); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	got, err := p.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, snap)
	}
}

func TestFilePersisterMissingFileIsEmpty(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "nope.json"))
	got, err := p.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(got.Memories) != 0 || len(got.Edges) != 0 || len(got.Clusters) != 0 {
		t.Fatalf("LoadAll() on missing file = %+v, want empty snapshot", got)
	}
}

func TestStoreRestoresFromPersister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory_database.json")
	p := NewFilePersister(path)

	first, err := NewStore(context.Background(), Config{Persister: p})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	id := mustStore(t, first, StoreInput{
		Content: "عيد ميلاد الحفيد محمد الخامس",
		Tags:    []string{"family", "celebration"},
	})

	second, err := NewStore(context.Background(), Config{Persister: p})
	if err != nil {
		t.Fatalf("NewStore() reload error = %v", err)
	}
	node, err := second.Get(id)
	if err != nil {
		t.Fatalf("Get(%s) after reload error = %v", id, err)
	}
	if node.Content != "عيد ميلاد الحفيد محمد الخامس" {
		t.Fatalf("reloaded content = %q", node.Content)
	}
	if len(second.Clusters()) != len(first.Clusters()) {
		t.Fatalf("clusters not restored: %d vs %d", len(second.Clusters()), len(first.Clusters()))
	}
}
