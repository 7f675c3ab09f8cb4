package memory

import (
	"fmt"
	"strings"
	"time"
)

// clusterIndex maintains thematic clusters incrementally: each new node joins
// the best-fitting existing cluster when its mean association strength to the
// members exceeds the join threshold, otherwise it founds a singleton.
type clusterIndex struct {
	clusters map[string]*Cluster
	order    []string // creation order, for stable iteration and numbering
}

func newClusterIndex() *clusterIndex {
	return &clusterIndex{clusters: make(map[string]*Cluster)}
}

// place assigns the node to a cluster. nodes must contain every member of
// every cluster; strength computes pairwise association strength.
func (c *clusterIndex) place(node *Node, nodes map[string]*Node, joinThreshold float64, strength func(a, b *Node) float64, now time.Time) {
	var best *Cluster
	bestFit := 0.0

	for _, id := range c.order {
		cluster := c.clusters[id]
		fit := c.meanFit(node, cluster, nodes, strength)
		if fit > bestFit && fit > joinThreshold {
			bestFit = fit
			best = cluster
		}
	}

	if best != nil {
		best.MemberIDs = append(best.MemberIDs, node.ID)
		best.Strength = c.recalcStrength(best, nodes, strength)
		return
	}

	id := fmt.Sprintf("cluster_%d", len(c.clusters))
	cluster := &Cluster{
		ID:           id,
		Name:         clusterName(node),
		MemberIDs:    []string{node.ID},
		CentralTheme: centralTheme(node.Content),
		Created:      now,
		// A lone member is perfectly coherent with itself.
		Strength: 1.0,
	}
	c.clusters[id] = cluster
	c.order = append(c.order, id)
}

func (c *clusterIndex) meanFit(node *Node, cluster *Cluster, nodes map[string]*Node, strength func(a, b *Node) float64) float64 {
	if len(cluster.MemberIDs) == 0 {
		return 0
	}
	total := 0.0
	count := 0
	for _, memberID := range cluster.MemberIDs {
		member, ok := nodes[memberID]
		if !ok {
			continue
		}
		total += strength(node, member)
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// recalcStrength returns the mean pairwise association strength among the
// cluster's current members.
func (c *clusterIndex) recalcStrength(cluster *Cluster, nodes map[string]*Node, strength func(a, b *Node) float64) float64 {
	if len(cluster.MemberIDs) < 2 {
		return 1.0
	}
	total := 0.0
	pairs := 0
	for i := 0; i < len(cluster.MemberIDs); i++ {
		a, ok := nodes[cluster.MemberIDs[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(cluster.MemberIDs); j++ {
			b, ok := nodes[cluster.MemberIDs[j]]
			if !ok {
				continue
			}
			total += strength(a, b)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func (c *clusterIndex) all() []Cluster {
	out := make([]Cluster, 0, len(c.clusters))
	for _, id := range c.order {
		out = append(out, *c.clusters[id])
	}
	return out
}

func (c *clusterIndex) count() int { return len(c.clusters) }

func (c *clusterIndex) clear() {
	c.clusters = make(map[string]*Cluster)
	c.order = nil
}

func (c *clusterIndex) restore(clusters []Cluster) {
	c.clear()
	for i := range clusters {
		cl := clusters[i]
		c.clusters[cl.ID] = &cl
		c.order = append(c.order, cl.ID)
	}
}

// clusterName builds a short name from the founding node's first words, with
// a type suffix for non-episodic memories.
func clusterName(node *Node) string {
	words := strings.Fields(node.Content)
	if len(words) > 3 {
		words = words[:3]
	}
	name := strings.Join(words, " ")
	if node.MemoryType != TypeEpisodic {
		name += fmt.Sprintf(" (%s)", node.MemoryType)
	}
	return name
}

func centralTheme(content string) string {
	runes := []rune(content)
	if len(runes) <= 50 {
		return content
	}
	return string(runes[:50]) + "..."
}
