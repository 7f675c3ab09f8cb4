package memory

import (
	"math"
	"testing"
)

func TestExtractImportanceScore(t *testing.T) {
	tests := []struct {
		name     string
		analysis string
		want     float64
	}{
		{"arabic label", "تحليل جيد. درجة أهمية: 0.85", 0.85},
		{"arabic total", "أهمية إجمالية: 0.4", 0.4},
		{"english label", "The memory matters. Importance: 0.7", 0.7},
		{"ten scale", "importance: 8", 0.8},
		{"ten scale max", "importance: 10", 1.0},
		{"clamped", "درجة أهمية: 1.4", 1.0},
		{"unit overshoot boundary", "score: 2", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractImportanceScore(tt.analysis)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("extractImportanceScore(%q) = %v, want %v", tt.analysis, got, tt.want)
			}
		})
	}
}

func TestExtractImportanceScoreKeywordFallback(t *testing.T) {
	// No numeric score present: base 0.5 plus keyword bumps.
	got := extractImportanceScore("هذه ذكرى مهم وفيها فرح كبير")
	want := 0.5 + 0.1 + 0.05
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("extractImportanceScore() = %v, want %v", got, want)
	}
}

func TestHeuristicImportance(t *testing.T) {
	long := make([]byte, 0, 220)
	for len(long) < 210 {
		long = append(long, "كلمة "...)
	}

	tests := []struct {
		name    string
		content string
		emotion Emotion
		want    float64
	}{
		{"neutral base", "نص عادي", EmotionNeutral, 0.5},
		{"positive", "نص عادي", EmotionPositive, 0.7},
		{"very positive", "نص عادي", EmotionVeryPositive, 0.8},
		{"negative smaller bump", "نص عادي", EmotionNegative, 0.6},
		{"very negative", "نص عادي", EmotionVeryNegative, 0.7},
		{"family keyword", "زيارة مع عائلة", EmotionNeutral, 0.55},
		{"two categories", "عائلة وعمل", EmotionNeutral, 0.6},
		{"long content", string(long), EmotionNeutral, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heuristicImportance(tt.content, tt.emotion)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("heuristicImportance(%q, %s) = %v, want %v", tt.content, tt.emotion, got, tt.want)
			}
			if got < 0.1 || got > 1.0 {
				t.Fatalf("heuristicImportance out of [0.1, 1.0]: %v", got)
			}
		})
	}
}
