package memory

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the memory database for reporting and the ops surface.
type Stats struct {
	TotalMemories     int             `json:"total_memories"`
	ByType            map[Type]int    `json:"memory_types"`
	ByEmotion         map[Emotion]int `json:"emotional_contexts"`
	Clusters          int             `json:"clusters"`
	Associations      int             `json:"associations"`
	ImportanceMean    float64         `json:"importance_mean"`
	ImportanceStdDev  float64         `json:"importance_stddev"`
	ImportanceMin     float64         `json:"importance_min"`
	ImportanceMax     float64         `json:"importance_max"`
	TotalRetrievals   int             `json:"total_retrievals"`
	MostRetrievedID   string          `json:"most_retrieved_id"`
	MostRetrievedHits int             `json:"most_retrieved_hits"`
}

// Stats computes distribution and retrieval statistics over the live store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		ByType:    make(map[Type]int),
		ByEmotion: make(map[Emotion]int),
		Clusters:  s.clusters.count(),
	}
	if len(s.nodes) == 0 {
		return st
	}

	st.TotalMemories = len(s.nodes)
	st.Associations = s.graph.EdgeCount()

	importances := make([]float64, 0, len(s.nodes))
	st.ImportanceMin = 1
	for _, node := range s.nodes {
		st.ByType[node.MemoryType]++
		st.ByEmotion[node.EmotionalContext]++
		importances = append(importances, node.ImportanceScore)
		if node.ImportanceScore < st.ImportanceMin {
			st.ImportanceMin = node.ImportanceScore
		}
		if node.ImportanceScore > st.ImportanceMax {
			st.ImportanceMax = node.ImportanceScore
		}
		st.TotalRetrievals += node.RetrievalCount
		if node.RetrievalCount > st.MostRetrievedHits {
			st.MostRetrievedHits = node.RetrievalCount
			st.MostRetrievedID = node.ID
		}
	}

	st.ImportanceMean = stat.Mean(importances, nil)
	if len(importances) > 1 {
		st.ImportanceStdDev = stat.StdDev(importances, nil)
	}
	return st
}
