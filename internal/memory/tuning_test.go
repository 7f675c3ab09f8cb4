package memory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTuningEmptyPathReturnsDefaults(t *testing.T) {
	got, err := LoadTuning("")
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}
	if got != DefaultTuning() {
		t.Fatalf("LoadTuning(\"\") = %+v, want defaults", got)
	}
}

func TestLoadTuningOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "cluster_join_threshold: 0.6\nrelevance:\n  keyword: 0.5\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	got, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}
	if got.ClusterJoinThreshold != 0.6 {
		t.Fatalf("ClusterJoinThreshold = %v, want 0.6", got.ClusterJoinThreshold)
	}
	if got.Relevance.Keyword != 0.5 {
		t.Fatalf("Relevance.Keyword = %v, want 0.5", got.Relevance.Keyword)
	}
	// Untouched fields keep their defaults.
	if got.EdgeThreshold != DefaultTuning().EdgeThreshold {
		t.Fatalf("EdgeThreshold = %v, want default", got.EdgeThreshold)
	}
}

func TestLoadTuningRejectsOutOfRangeWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("edge_threshold: 1.5\n"), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Fatalf("LoadTuning() expected range error")
	}
}
