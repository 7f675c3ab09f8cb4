package memory

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestFallbackQueryContextMapping(t *testing.T) {
	tests := []struct {
		contextType string
		want        []Type
	}{
		{"personal", []Type{TypeEpisodic}},
		{"family", []Type{TypeEpisodic}},
		{"work", []Type{TypeProcedural, TypeSemantic}},
		{"health", []Type{TypeSemantic, TypeEpisodic}},
		{"general", []Type{TypeEpisodic, TypeSemantic, TypeProcedural}},
		{"anything-else", []Type{TypeEpisodic, TypeSemantic, TypeProcedural}},
	}

	for _, tt := range tests {
		qc := fallbackQueryContext("هل تتذكر العائلة", tt.contextType)
		if !reflect.DeepEqual(qc.MemoryTypes, tt.want) {
			t.Errorf("contextType %q: memory types = %v, want %v", tt.contextType, qc.MemoryTypes, tt.want)
		}
		if qc.EmotionalContext != EmotionNeutral || qc.TimeFrame != TimeFrameAny || qc.MediaPreference != MediaAny {
			t.Errorf("contextType %q: defaults not applied: %+v", tt.contextType, qc)
		}
	}
}

func TestQueryKeywordsDropShortTokens(t *testing.T) {
	got := queryKeywords("هل في من العائلة يوم")
	want := []string{"العائلة", "يوم"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("queryKeywords() = %v, want %v", got, want)
	}
}

func TestParseQueryAnalysisTables(t *testing.T) {
	qc := parseQueryAnalysis("ذكريات شخصية عائلية حديثة، الوسائط: صور، السياق العاطفي إيجابي", "حديقة الأزهر")
	if !reflect.DeepEqual(qc.MemoryTypes, []Type{TypeEpisodic}) {
		t.Fatalf("memory types = %v, want [episodic]", qc.MemoryTypes)
	}
	if qc.TimeFrame != TimeFrameRecent {
		t.Fatalf("time frame = %v, want recent", qc.TimeFrame)
	}
	if qc.MediaPreference != MediaImage {
		t.Fatalf("media preference = %v, want image", qc.MediaPreference)
	}
	if qc.EmotionalContext != EmotionPositive {
		t.Fatalf("emotional context = %v, want positive", qc.EmotionalContext)
	}
	if !reflect.DeepEqual(qc.Keywords, []string{"حديقة", "الأزهر"}) {
		t.Fatalf("keywords = %v, want from the original query", qc.Keywords)
	}
}

type countingService struct {
	calls atomic.Int32
	reply string
	err   error
}

func (c *countingService) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	c.calls.Add(1)
	return c.reply, c.err
}

func (c *countingService) GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error) {
	return c.GenerateText(ctx, text, "")
}

func TestQueryAnalyzerCachesResults(t *testing.T) {
	svc := &countingService{reply: "ذكريات شخصية"}
	a := NewQueryAnalyzer(svc, nil)

	first := a.Analyze(context.Background(), "العائلة", "general")
	second := a.Analyze(context.Background(), "العائلة", "general")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
	if calls := svc.calls.Load(); calls != 1 {
		t.Fatalf("service calls = %d, want 1 (second hit from cache)", calls)
	}
}

func TestQueryAnalyzerFallsBackOnServiceError(t *testing.T) {
	svc := &countingService{err: errors.New("down")}
	a := NewQueryAnalyzer(svc, nil)

	qc := a.Analyze(context.Background(), "العائلة والأطفال", "family")
	if !reflect.DeepEqual(qc.MemoryTypes, []Type{TypeEpisodic}) {
		t.Fatalf("fallback memory types = %v, want [episodic]", qc.MemoryTypes)
	}
	if len(qc.Keywords) != 2 {
		t.Fatalf("fallback keywords = %v, want 2 tokens", qc.Keywords)
	}
}
