package memory

import (
	"sort"
	"strings"
	"time"
)

type edgeKey struct {
	a, b string
}

func newEdgeKey(a, b string) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// Graph holds the undirected association edges between memories. Symmetry is
// structural: a single canonically-keyed record represents each unordered
// pair. Edges are created only at insertion time and never recomputed.
type Graph struct {
	edges map[edgeKey]float64
	adj   map[string]map[string]float64
}

func NewGraph() *Graph {
	return &Graph{
		edges: make(map[edgeKey]float64),
		adj:   make(map[string]map[string]float64),
	}
}

func (g *Graph) AddEdge(a, b string, strength float64) {
	if a == b {
		return
	}
	g.edges[newEdgeKey(a, b)] = strength
	if g.adj[a] == nil {
		g.adj[a] = make(map[string]float64)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[string]float64)
	}
	g.adj[a][b] = strength
	g.adj[b][a] = strength
}

// Strength returns the edge strength for the unordered pair, or 0.
func (g *Graph) Strength(a, b string) float64 {
	return g.edges[newEdgeKey(a, b)]
}

// Neighbor is one weighted association from a node.
type Neighbor struct {
	ID       string
	Strength float64
}

// Neighbors returns up to limit associated memories, strongest first.
// limit <= 0 means all.
func (g *Graph) Neighbors(id string, limit int) []Neighbor {
	adj := g.adj[id]
	if len(adj) == 0 {
		return nil
	}
	out := make([]Neighbor, 0, len(adj))
	for other, strength := range adj {
		out = append(out, Neighbor{ID: other, Strength: strength})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns all edges in canonical order, for persistence.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for k, s := range g.edges {
		out = append(out, Edge{A: k.a, B: k.b, Strength: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Clear drops every edge.
func (g *Graph) Clear() {
	g.edges = make(map[edgeKey]float64)
	g.adj = make(map[string]map[string]float64)
}

// associationStrength combines tag overlap, emotional-context match, temporal
// proximity and content word overlap into a single [0,1] strength.
func associationStrength(a, b *Node, w AssociationWeights) float64 {
	var strength float64

	if len(a.Tags) > 0 && len(b.Tags) > 0 {
		common := 0
		set := make(map[string]struct{}, len(a.Tags))
		for _, t := range a.Tags {
			set[strings.ToLower(t)] = struct{}{}
		}
		for _, t := range b.Tags {
			if _, ok := set[strings.ToLower(t)]; ok {
				common++
			}
		}
		larger := len(a.Tags)
		if len(b.Tags) > larger {
			larger = len(b.Tags)
		}
		strength += float64(common) / float64(larger) * w.TagOverlap
	}

	if a.EmotionalContext == b.EmotionalContext {
		strength += w.EmotionMatch
	}

	days := a.Timestamp.Sub(b.Timestamp)
	if days < 0 {
		days = -days
	}
	switch {
	case days < 7*24*time.Hour:
		strength += w.WithinWeek
	case days < 30*24*time.Hour:
		strength += w.WithinMonth
	case days < 365*24*time.Hour:
		strength += w.WithinYear
	}

	wordsA := wordSet(a.Content)
	wordsB := wordSet(b.Content)
	if len(wordsA) > 0 && len(wordsB) > 0 {
		common := 0
		for word := range wordsA {
			if _, ok := wordsB[word]; ok {
				common++
			}
		}
		larger := len(wordsA)
		if len(wordsB) > larger {
			larger = len(wordsB)
		}
		strength += float64(common) / float64(larger) * w.WordOverlap
	}

	return clamp(strength, 0, 1)
}

func wordSet(content string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(content))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
