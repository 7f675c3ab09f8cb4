package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/gemma"
)

// Suggestion pairs a memory with the reason it was proposed for the current
// conversational context.
type Suggestion struct {
	Memory Node    `json:"memory"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Suggestions proposes memories relevant to the current context: the service
// path extracts themes from an AI reply and matches them against stored
// memories; the fallback ranks by plain content similarity.
func (s *Store) Suggestions(ctx context.Context, current string, max int) []Suggestion {
	if max <= 0 {
		max = 3
	}

	if s.svc != nil {
		analysis, err := s.svc.GenerateText(ctx, gemma.SuggestionPrompt(current), "")
		if err == nil && strings.TrimSpace(analysis) != "" {
			return s.matchSuggestions(analysis, max)
		}
		if err != nil {
			s.logger.Debug("suggestion analysis fell back", zap.Error(err))
		}
	}
	return s.similaritySuggestions(current, max)
}

func (s *Store) matchSuggestions(analysis string, max int) []Suggestion {
	var keywords []string
	for _, line := range strings.Split(analysis, "\n") {
		for _, word := range strings.Fields(line) {
			word = strings.Trim(word, ".,!?:")
			if len([]rune(word)) > 2 {
				keywords = append(keywords, strings.ToLower(word))
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Suggestion
	for _, node := range s.nodes {
		score := 0.0
		contentLower := strings.ToLower(node.Content)
		for _, kw := range keywords {
			if strings.Contains(contentLower, kw) {
				score += 0.1
			}
		}
		for _, tag := range node.Tags {
			tagLower := strings.ToLower(tag)
			for _, kw := range keywords {
				if strings.Contains(tagLower, kw) {
					score += 0.2
					break
				}
			}
		}
		if score > 0.3 {
			out = append(out, Suggestion{
				Memory: copyNode(node),
				Score:  score,
				Reason: "matches analysis of current context",
			})
		}
	}

	sortSuggestions(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func (s *Store) similaritySuggestions(current string, max int) []Suggestion {
	contextWords := wordSet(current)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Suggestion
	for _, node := range s.nodes {
		memoryWords := wordSet(node.Content)
		if len(contextWords) == 0 && len(memoryWords) == 0 {
			continue
		}
		overlap := 0
		for w := range contextWords {
			if _, ok := memoryWords[w]; ok {
				overlap++
			}
		}
		larger := len(contextWords)
		if len(memoryWords) > larger {
			larger = len(memoryWords)
		}
		similarity := float64(overlap) / float64(larger)
		if similarity > 0.1 {
			out = append(out, Suggestion{
				Memory: copyNode(node),
				Score:  similarity,
				Reason: fmt.Sprintf("content similarity: %.2f", similarity),
			})
		}
	}

	sortSuggestions(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func sortSuggestions(s []Suggestion) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Memory.ID < s[j].Memory.ID
	})
}
