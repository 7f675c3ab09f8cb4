package memory

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/munes-ai/munes/internal/gemma"
)

// Importance scoring prefers the generation service's judgment and falls back
// to a deterministic heuristic. Either way the result lands in [0.1, 1.0].

var importancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`درجة أهمية[:\s]+([0-9]*\.?[0-9]+)`),
	regexp.MustCompile(`أهمية إجمالية[:\s]+([0-9]*\.?[0-9]+)`),
	regexp.MustCompile(`(?i)importance[:\s]+([0-9]*\.?[0-9]+)`),
	regexp.MustCompile(`(?i)score[:\s]+([0-9]*\.?[0-9]+)`),
}

var importanceWords = []string{
	"مهم", "هام", "أساسي", "ضروري", "حيوي", "أولوية",
	"important", "essential", "critical", "vital", "significant",
}

var emotionalWords = []string{
	"سعيد", "حزين", "فرح", "غضب", "خوف", "حب", "كره",
	"happy", "sad", "joy", "anger", "fear", "love", "emotional",
}

// Keyword categories that mark a memory as important to daily life.
var importantCategories = [][]string{
	{"عائلة", "أسرة", "زوج", "زوجة", "أطفال", "والدين", "family", "spouse", "children", "parents"},
	{"عمل", "وظيفة", "مهنة", "work", "job", "career"},
	{"صحة", "مرض", "دواء", "health", "medicine", "doctor"},
}

// analyzeImportance asks the service to rate the memory; any failure falls
// back to heuristicImportance.
func analyzeImportance(ctx context.Context, svc gemma.Service, in StoreInput) float64 {
	if svc == nil {
		return heuristicImportance(in.Content, in.EmotionalContext)
	}

	prompt := gemma.ImportancePrompt(in.Content, string(in.EmotionalContext), in.Media.ImagePath != "", in.Media.AudioPath != "")

	var analysis string
	var err error
	if in.Media.HasAny() {
		analysis, err = svc.GenerateMultimodal(ctx, prompt, in.Media.ImagePath, in.Media.AudioPath)
	} else {
		analysis, err = svc.GenerateText(ctx, prompt, "")
	}
	if err != nil || strings.TrimSpace(analysis) == "" {
		return heuristicImportance(in.Content, in.EmotionalContext)
	}
	return extractImportanceScore(analysis)
}

// extractImportanceScore pulls a numeric score out of free-form analysis
// text, accepting a 0-10 scale, and otherwise scores the analysis itself by
// importance and emotion keywords.
func extractImportanceScore(analysis string) float64 {
	lower := strings.ToLower(analysis)

	for _, pattern := range importancePatterns {
		m := pattern.FindStringSubmatch(analysis)
		if m == nil {
			continue
		}
		score, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		// Scores above 2 read as a 0-10 scale; values just over 1 are
		// unit-scale overshoot and only get clamped.
		if score > 2 {
			score /= 10
		}
		return clamp(score, 0, 1)
	}

	score := 0.5
	for _, word := range importanceWords {
		if strings.Contains(lower, word) {
			score += 0.1
		}
	}
	for _, word := range emotionalWords {
		if strings.Contains(lower, word) {
			score += 0.05
		}
	}
	return clamp(score, 0, 1)
}

// heuristicImportance is the deterministic fallback: a base score adjusted by
// emotional context, content length and important-keyword categories.
func heuristicImportance(content string, emotion Emotion) float64 {
	score := 0.5

	switch emotion {
	case EmotionVeryPositive:
		score += 0.3
	case EmotionPositive:
		score += 0.2
	case EmotionVeryNegative:
		score += 0.2
	case EmotionNegative:
		score += 0.1
	}

	if len(content) > 100 {
		score += 0.1
	}
	if len(content) > 200 {
		score += 0.1
	}

	lower := strings.ToLower(content)
	for _, category := range importantCategories {
		for _, word := range category {
			if strings.Contains(lower, word) {
				score += 0.05
				break
			}
		}
	}

	return clamp(score, 0.1, 1.0)
}
