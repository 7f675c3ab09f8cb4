package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AssociationWeights tune the edge-strength terms computed at insertion.
type AssociationWeights struct {
	TagOverlap   float64 `yaml:"tag_overlap"`
	EmotionMatch float64 `yaml:"emotion_match"`
	WithinWeek   float64 `yaml:"within_week"`
	WithinMonth  float64 `yaml:"within_month"`
	WithinYear   float64 `yaml:"within_year"`
	WordOverlap  float64 `yaml:"word_overlap"`
}

// RelevanceWeights tune the additive retrieval score. The total deliberately
// exceeds 1: the score is a ranking signal, not a probability.
type RelevanceWeights struct {
	Keyword      float64 `yaml:"keyword"`
	TagStep      float64 `yaml:"tag_step"`
	TagCap       float64 `yaml:"tag_cap"`
	Importance   float64 `yaml:"importance"`
	Recency      float64 `yaml:"recency"`
	Frequency    float64 `yaml:"frequency"`
	Multimodal   float64 `yaml:"multimodal"`
	EmotionMatch float64 `yaml:"emotion_match"`
}

// Tuning collects the engine thresholds and weights. Defaults match the
// documented behavior; a YAML file can override them for clinical tuning.
type Tuning struct {
	Association          AssociationWeights `yaml:"association"`
	Relevance            RelevanceWeights   `yaml:"relevance"`
	EdgeThreshold        float64            `yaml:"edge_threshold"`
	ClusterJoinThreshold float64            `yaml:"cluster_join_threshold"`
	MaxContextHistory    int                `yaml:"max_context_history"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Association: AssociationWeights{
			TagOverlap:   0.3,
			EmotionMatch: 0.3,
			WithinWeek:   0.3,
			WithinMonth:  0.2,
			WithinYear:   0.1,
			WordOverlap:  0.3,
		},
		Relevance: RelevanceWeights{
			Keyword:      0.4,
			TagStep:      0.1,
			TagCap:       0.2,
			Importance:   0.3,
			Recency:      0.1,
			Frequency:    0.1,
			Multimodal:   0.1,
			EmotionMatch: 0.1,
		},
		EdgeThreshold:        0.3,
		ClusterJoinThreshold: 0.5,
		MaxContextHistory:    10,
	}
}

// LoadTuning reads a YAML tuning file over the defaults. An empty path
// returns the defaults unchanged.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	weights := map[string]float64{
		"association.tag_overlap":   t.Association.TagOverlap,
		"association.emotion_match": t.Association.EmotionMatch,
		"association.within_week":   t.Association.WithinWeek,
		"association.within_month":  t.Association.WithinMonth,
		"association.within_year":   t.Association.WithinYear,
		"association.word_overlap":  t.Association.WordOverlap,
		"relevance.keyword":         t.Relevance.Keyword,
		"relevance.tag_step":        t.Relevance.TagStep,
		"relevance.tag_cap":         t.Relevance.TagCap,
		"relevance.importance":      t.Relevance.Importance,
		"relevance.recency":         t.Relevance.Recency,
		"relevance.frequency":       t.Relevance.Frequency,
		"relevance.multimodal":      t.Relevance.Multimodal,
		"relevance.emotion_match":   t.Relevance.EmotionMatch,
		"edge_threshold":            t.EdgeThreshold,
		"cluster_join_threshold":    t.ClusterJoinThreshold,
	}
	for name, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("tuning %s = %v out of range [0,1]", name, w)
		}
	}
	if t.MaxContextHistory <= 0 {
		return fmt.Errorf("tuning max_context_history must be positive")
	}
	return nil
}
