package memory

import (
	"testing"
	"time"
)

func TestGraphNeighborsSortedByStrength(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", 0.5)
	g.AddEdge("a", "c", 0.9)
	g.AddEdge("a", "d", 0.7)
	g.AddEdge("b", "c", 0.4)

	got := g.Neighbors("a", 2)
	if len(got) != 2 {
		t.Fatalf("Neighbors() returned %d, want 2", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "d" {
		t.Fatalf("Neighbors() order = %v, want strongest first", got)
	}
}

func TestGraphEdgeCanonicalKey(t *testing.T) {
	g := NewGraph()
	g.AddEdge("b", "a", 0.6)
	g.AddEdge("a", "b", 0.8) // same unordered pair, overwrites

	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1 for the unordered pair", g.EdgeCount())
	}
	if got := g.Strength("a", "b"); got != 0.8 {
		t.Fatalf("Strength(a,b) = %v, want 0.8", got)
	}
	if g.Strength("a", "b") != g.Strength("b", "a") {
		t.Fatalf("edge lookup not symmetric")
	}
}

func TestGraphIgnoresSelfEdge(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "a", 0.9)
	if g.EdgeCount() != 0 {
		t.Fatalf("EdgeCount() = %d, self edges must be ignored", g.EdgeCount())
	}
}

func TestAssociationStrengthTerms(t *testing.T) {
	w := DefaultTuning().Association
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := &Node{Content: "زيارة الحديقة مع الأحفاد", Tags: []string{"family", "outdoors"}, EmotionalContext: EmotionPositive, Timestamp: base}
	b := &Node{Content: "زيارة الحديقة مع الأصدقاء", Tags: []string{"family"}, EmotionalContext: EmotionPositive, Timestamp: base.AddDate(0, 0, 3)}

	got := associationStrength(a, b, w)
	// tags 1/2 * 0.3, emotion 0.3, within a week 0.3, words 3/4 * 0.3
	want := 0.15 + 0.3 + 0.3 + 0.225
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("associationStrength() = %v, want %v", got, want)
	}
}

func TestAssociationStrengthTemporalDecay(t *testing.T) {
	w := DefaultTuning().Association
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Node{Content: "أ", Timestamp: base, EmotionalContext: EmotionNeutral}

	tests := []struct {
		days int
		want float64
	}{
		{3, w.WithinWeek},
		{20, w.WithinMonth},
		{200, w.WithinYear},
		{400, 0},
	}
	for _, tt := range tests {
		b := &Node{Content: "ب", Timestamp: base.AddDate(0, 0, tt.days), EmotionalContext: EmotionAnxious}
		if got := associationStrength(a, b, w); got != tt.want {
			t.Errorf("days=%d: strength = %v, want %v", tt.days, got, tt.want)
		}
	}
}
