package memory

import (
	"strings"
	"time"
)

// relevanceScore ranks a candidate against a query context. The score is
// additive and deliberately not normalized to [0,1]: the ordering is the
// contract, not the magnitude.
func relevanceScore(node *Node, qc QueryContext, includeMultimodal bool, w RelevanceWeights, now time.Time) float64 {
	score := 0.0
	contentLower := strings.ToLower(node.Content)

	if len(qc.Keywords) > 0 {
		matches := 0
		for _, kw := range qc.Keywords {
			if strings.Contains(contentLower, strings.ToLower(kw)) {
				matches++
			}
		}
		score += float64(matches) / float64(len(qc.Keywords)) * w.Keyword
	}

	if len(node.Tags) > 0 {
		tagHits := 0
		for _, kw := range qc.Keywords {
			kwLower := strings.ToLower(kw)
			for _, tag := range node.Tags {
				if strings.Contains(strings.ToLower(tag), kwLower) {
					tagHits++
				}
			}
		}
		bonus := float64(tagHits) * w.TagStep
		if bonus > w.TagCap {
			bonus = w.TagCap
		}
		score += bonus
	}

	score += node.ImportanceScore * w.Importance

	ageDays := now.Sub(node.Timestamp).Hours() / 24
	recency := 1 - ageDays/365
	if recency < 0 {
		recency = 0
	}
	score += recency * w.Recency

	frequency := float64(node.RetrievalCount) / 10
	if frequency > 1 {
		frequency = 1
	}
	score += frequency * w.Frequency

	if includeMultimodal && node.Media.HasAny() {
		score += w.Multimodal
	}

	if qc.EmotionalContext == node.EmotionalContext {
		score += w.EmotionMatch
	}

	return score
}

// isCandidate filters by memory type and keyword presence: a node qualifies
// when its type is requested and either a keyword hits content or tags, or
// the query carried no keywords at all.
func isCandidate(node *Node, qc QueryContext) bool {
	typeOK := false
	for _, t := range qc.MemoryTypes {
		if node.MemoryType == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}

	if len(qc.Keywords) == 0 {
		return true
	}

	contentLower := strings.ToLower(node.Content)
	for _, kw := range qc.Keywords {
		kwLower := strings.ToLower(kw)
		if strings.Contains(contentLower, kwLower) {
			return true
		}
		for _, tag := range node.Tags {
			if strings.Contains(strings.ToLower(tag), kwLower) {
				return true
			}
		}
	}
	return false
}
