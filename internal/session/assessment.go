package session

import "github.com/munes-ai/munes/internal/dialog"

// Scorer turns one analyzed turn into named assessment scores. Injectable so
// a clinical scoring model can replace the heuristic without touching the
// manager.
type Scorer interface {
	Score(sig dialog.InputSignals) map[string]float64
}

// HeuristicScorer derives scores directly from the turn's signals. It is
// deterministic: the same signals always yield the same scores.
type HeuristicScorer struct{}

func (HeuristicScorer) Score(sig dialog.InputSignals) map[string]float64 {
	positivity := 0.0
	if sig.EmotionalTone == "positive" {
		positivity = 1.0
	}
	return map[string]float64{
		"engagement_level":     sig.EngagementLevel,
		"cognitive_clarity":    1 - sig.CognitiveLoad,
		"emotional_positivity": positivity,
	}
}
