package dialog

import (
	"strings"
	"testing"
	"time"
)

func TestTemplateResponseDeterministic(t *testing.T) {
	first := TemplateResponse(StateMemoryExercise, "neutral", 3)
	for i := 0; i < 3; i++ {
		if got := TemplateResponse(StateMemoryExercise, "neutral", 3); got != first {
			t.Fatalf("template selection not deterministic: %q vs %q", got, first)
		}
	}
}

func TestTemplateResponseCyclesVariants(t *testing.T) {
	a := TemplateResponse(StateGreeting, "neutral", 0)
	b := TemplateResponse(StateGreeting, "neutral", 1)
	if a == b {
		t.Fatalf("consecutive turn counts produced the same template: %q", a)
	}
}

func TestTemplateResponseTonePrefix(t *testing.T) {
	tests := []struct {
		tone   string
		prefix string
	}{
		{"negative", "أعلم أن الأمور قد تبدو صعبة أحياناً. "},
		{"anxious", "لا تقلق، كل شيء سيكون بخير. "},
		{"positive", "يسعدني أن أراك في حالة جيدة! "},
		{"neutral", ""},
	}
	for _, tc := range tests {
		got := TemplateResponse(StateEmotionalSupport, tc.tone, 0)
		if tc.prefix == "" {
			for _, p := range tonePrefixes {
				if strings.HasPrefix(got, p) {
					t.Fatalf("neutral tone got prefix %q", p)
				}
			}
			continue
		}
		if !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("tone %s: response %q missing prefix %q", tc.tone, got, tc.prefix)
		}
	}
}

func TestEveryStateHasTemplates(t *testing.T) {
	for _, state := range AllStates {
		got := TemplateResponse(state, "neutral", 0)
		if got == "" {
			t.Fatalf("state %s produced an empty response", state)
		}
	}
}

func TestTherapeuticSuggestions(t *testing.T) {
	tests := []struct {
		name string
		sig  InputSignals
		want int
	}{
		{"negative tone", InputSignals{EmotionalTone: "negative"}, 3},
		{"high load", InputSignals{EmotionalTone: "neutral", CognitiveLoad: 0.8}, 3},
		{"both", InputSignals{EmotionalTone: "negative", CognitiveLoad: 0.8}, 6},
		{"calm", InputSignals{EmotionalTone: "positive", CognitiveLoad: 0.2}, 0},
		{"load at threshold", InputSignals{EmotionalTone: "neutral", CognitiveLoad: 0.6}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TherapeuticSuggestions(tc.sig); len(got) != tc.want {
				t.Fatalf("suggestions = %d, want %d (%v)", len(got), tc.want, got)
			}
		})
	}
}

func TestGreetingTimeOfDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	if got := Greeting(morning); !strings.HasPrefix(got, "صباح الخير") {
		t.Fatalf("morning greeting = %q", got)
	}
	if got := Greeting(evening); !strings.HasPrefix(got, "مساء الخير") {
		t.Fatalf("evening greeting = %q", got)
	}
}
