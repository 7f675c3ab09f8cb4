package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/munes-ai/munes/internal/gemma"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), Config{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func mustStore(t *testing.T, s *Store, in StoreInput) string {
	t.Helper()
	id, err := s.Store(context.Background(), in)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	return id
}

func TestStoreRejectsEmptyContent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Store(context.Background(), StoreInput{Content: "   "}); err != ErrEmptyContent {
		t.Fatalf("Store() error = %v, want ErrEmptyContent", err)
	}
}

func TestStoredImportanceAlwaysInRange(t *testing.T) {
	s := newTestStore(t)
	inputs := []StoreInput{
		{Content: "نص قصير", EmotionalContext: EmotionNeutral},
		{Content: "ذكرى عائلية سعيدة مع الأطفال في العمل والصحة", EmotionalContext: EmotionVeryPositive},
		{Content: "يوم حزين جداً فيه مرض ودواء وطبيب وعائلة وعمل ووظيفة، وكان يوماً طويلاً مليئاً بالتفاصيل الكثيرة التي لا تنتهي أبداً عن الأسرة والأصدقاء والجيران", EmotionalContext: EmotionVeryNegative},
	}
	for _, in := range inputs {
		id := mustStore(t, s, in)
		node, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if node.ImportanceScore < 0 || node.ImportanceScore > 1 {
			t.Fatalf("importance = %v out of [0,1] for %q", node.ImportanceScore, in.Content)
		}
	}
}

func TestStoreUsesServiceImportance(t *testing.T) {
	s, err := NewStore(context.Background(), Config{Service: gemma.NewMockService()})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	id := mustStore(t, s, StoreInput{Content: "زيارة الحديقة", EmotionalContext: EmotionPositive})
	node, _ := s.Get(id)
	// The mock analysis reply carries "درجة أهمية: 0.8".
	if node.ImportanceScore != 0.8 {
		t.Fatalf("importance = %v, want 0.8 from service analysis", node.ImportanceScore)
	}
}

func TestAssociationEdgesSymmetricAboveThreshold(t *testing.T) {
	s := newTestStore(t)
	a := mustStore(t, s, StoreInput{
		Content:          "رحلة إلى الإسكندرية مع العائلة على الشاطئ",
		Tags:             []string{"family", "travel"},
		EmotionalContext: EmotionPositive,
	})
	b := mustStore(t, s, StoreInput{
		Content:          "رحلة إلى الإسكندرية مع الأصدقاء على الشاطئ",
		Tags:             []string{"family", "friends"},
		EmotionalContext: EmotionPositive,
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.graph.Edges() {
		if e.Strength <= s.tuning.EdgeThreshold || e.Strength > 1.0 {
			t.Fatalf("edge %s-%s strength %v outside (%v, 1.0]", e.A, e.B, e.Strength, s.tuning.EdgeThreshold)
		}
	}
	forward := s.graph.Strength(a, b)
	backward := s.graph.Strength(b, a)
	if forward == 0 {
		t.Fatalf("expected an association edge between near-duplicate memories")
	}
	if forward != backward {
		t.Fatalf("edge not symmetric: %v vs %v", forward, backward)
	}
}

func TestNoEdgeBetweenUnrelatedMemories(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }
	a := mustStore(t, s, StoreInput{Content: "وصفة الكشري", MemoryType: TypeProcedural, Tags: []string{"cooking"}, EmotionalContext: EmotionNeutral})
	s.now = func() time.Time { return time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC) }
	b := mustStore(t, s, StoreInput{Content: "عيد ميلاد الحفيد", Tags: []string{"family"}, EmotionalContext: EmotionPositive})

	if got := s.graph.Strength(a, b); got != 0 {
		t.Fatalf("unexpected edge strength %v between unrelated memories", got)
	}
}

func TestRetrieveRoundTripArabic(t *testing.T) {
	s := newTestStore(t)
	id := mustStore(t, s, StoreInput{
		Content: "زيارة حديقة الأزهر مع العائلة",
		Tags:    []string{"family", "outdoors"},
	})

	got, err := s.Retrieve(context.Background(), "عائلة", "general", 5, true)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	found := false
	for _, node := range got {
		if node.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("Retrieve(عائلة) = %d results, stored memory %s missing", len(got), id)
	}
}

func TestRetrieveRespectsMaxResultsAndOrdering(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		ts := base.AddDate(0, 0, i)
		s.now = func() time.Time { return ts }
		hint := 0.2 + float64(i)*0.1
		mustStore(t, s, StoreInput{
			Content:        fmt.Sprintf("ذكرى رقم %d عن العائلة", i),
			Tags:           []string{"family"},
			ImportanceHint: &hint,
		})
	}
	s.now = time.Now

	got, err := s.Retrieve(context.Background(), "العائلة", "general", 3, false)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Retrieve() returned %d results, want 3", len(got))
	}
	// Higher importance and newer timestamps both favor later inserts.
	for i := 1; i < len(got); i++ {
		if got[i].ImportanceScore > got[i-1].ImportanceScore {
			t.Fatalf("results not sorted by relevance: %v after %v", got[i].ImportanceScore, got[i-1].ImportanceScore)
		}
	}
}

func TestRetrieveUpdatesRetrievalStats(t *testing.T) {
	s := newTestStore(t)
	id := mustStore(t, s, StoreInput{Content: "ذكرى عن العائلة", Tags: []string{"family"}})

	if _, err := s.Retrieve(context.Background(), "العائلة", "general", 5, false); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	node, _ := s.Get(id)
	if node.RetrievalCount != 1 {
		t.Fatalf("RetrievalCount = %d, want 1", node.RetrievalCount)
	}

	history := s.ContextHistory()
	if len(history) != 1 || history[0].Query != "العائلة" {
		t.Fatalf("context history = %+v, want one record for the query", history)
	}
}

func TestContextHistoryBounded(t *testing.T) {
	s := newTestStore(t)
	mustStore(t, s, StoreInput{Content: "ذكرى"})
	for i := 0; i < 15; i++ {
		if _, err := s.Retrieve(context.Background(), fmt.Sprintf("استعلام %d", i), "general", 1, false); err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
	}
	if got := len(s.ContextHistory()); got != s.tuning.MaxContextHistory {
		t.Fatalf("context history length = %d, want %d", got, s.tuning.MaxContextHistory)
	}
}

func TestClusteringGroupsSimilarMemories(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		mustStore(t, s, StoreInput{
			Content:          fmt.Sprintf("غداء يوم الجمعة مع العائلة في البيت %d", i),
			Tags:             []string{"family"},
			EmotionalContext: EmotionPositive,
		})
	}

	clusters := s.Clusters()
	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(clusters))
	}
	if n := len(clusters[0].MemberIDs); n != 5 {
		t.Fatalf("cluster members = %d, want 5", n)
	}
	if clusters[0].Strength <= 0.5 {
		t.Fatalf("cluster strength = %v, want > 0.5", clusters[0].Strength)
	}
}

func TestUnrelatedMemoryFoundsNewCluster(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }
	mustStore(t, s, StoreInput{Content: "غداء مع العائلة", Tags: []string{"family"}, EmotionalContext: EmotionPositive})
	s.now = func() time.Time { return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC) }
	mustStore(t, s, StoreInput{Content: "طريقة تشغيل الغسالة", MemoryType: TypeProcedural, Tags: []string{"chores"}, EmotionalContext: EmotionNeutral})

	if got := len(s.Clusters()); got != 2 {
		t.Fatalf("clusters = %d, want 2", got)
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	s := newTestStore(t)
	id := mustStore(t, s, StoreInput{Content: "ذكرى", Tags: []string{"old"}, EmotionalContext: EmotionNeutral})

	importance := 1.7 // will be clamped
	newTags := []string{"new"}
	if err := s.Update(context.Background(), id, Update{Tags: &newTags, ImportanceScore: &importance}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	node, _ := s.Get(id)
	if len(node.Tags) != 1 || node.Tags[0] != "new" {
		t.Fatalf("tags = %v, want [new]", node.Tags)
	}
	if node.ImportanceScore != 1.0 {
		t.Fatalf("importance = %v, want clamped to 1.0", node.ImportanceScore)
	}
	if node.EmotionalContext != EmotionNeutral {
		t.Fatalf("emotional context changed unexpectedly: %v", node.EmotionalContext)
	}

	if err := s.Update(context.Background(), "mem_missing", Update{}); err == nil {
		t.Fatalf("Update() on unknown id expected error")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := newTestStore(t)
	mustStore(t, s, StoreInput{Content: "ذكرى أولى", Tags: []string{"family"}})
	mustStore(t, s, StoreInput{Content: "ذكرى ثانية", Tags: []string{"family"}})

	s.Clear(context.Background())
	if s.Count() != 0 {
		t.Fatalf("Count() = %d after Clear, want 0", s.Count())
	}
	if len(s.Clusters()) != 0 {
		t.Fatalf("clusters remain after Clear")
	}
}

func TestConcurrentStoreAndRetrieve(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.Store(context.Background(), StoreInput{
				Content: fmt.Sprintf("ذكرى متزامنة %d مع العائلة", i),
				Tags:    []string{"family"},
			})
			if err != nil {
				t.Errorf("Store() error = %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			got, err := s.Retrieve(context.Background(), "العائلة", "general", 3, false)
			if err != nil {
				t.Errorf("Retrieve() error = %v", err)
			}
			for _, node := range got {
				if node.ID == "" || node.Content == "" {
					t.Errorf("retrieved partially-constructed node: %+v", node)
				}
			}
		}()
	}
	wg.Wait()

	if s.Count() != 8 {
		t.Fatalf("Count() = %d, want 8", s.Count())
	}
}
