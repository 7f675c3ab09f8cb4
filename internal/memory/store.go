package memory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/gemma"
	"github.com/munes-ai/munes/internal/observability"
)

// Store owns the memory nodes, their association graph and the cluster index.
// One RWMutex serializes writes while retrievals run concurrently; a retrieval
// racing a store may observe a snapshot without the new memory, which is
// accepted. Persistence failures are logged and never fail the operation.
type Store struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	graph    *Graph
	clusters *clusterIndex
	history  []QueryRecord

	tuning    Tuning
	svc       gemma.Service
	analyzer  *QueryAnalyzer
	persister Persister
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// QueryRecord is one entry of the bounded retrieval-context history.
type QueryRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Query       string    `json:"query"`
	ContextType string    `json:"context_type"`
	RetrievedID []string  `json:"retrieved_ids"`
}

// Config wires the store's collaborators. Service and Persister may be nil;
// the store then runs heuristics-only and memory-only.
type Config struct {
	Tuning    Tuning
	Service   gemma.Service
	Persister Persister
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Tuning == (Tuning{}) {
		cfg.Tuning = DefaultTuning()
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Store{
		nodes:     make(map[string]*Node),
		graph:     NewGraph(),
		clusters:  newClusterIndex(),
		tuning:    cfg.Tuning,
		svc:       cfg.Service,
		analyzer:  NewQueryAnalyzer(cfg.Service, cfg.Logger),
		persister: cfg.Persister,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}

	if s.persister != nil {
		snap, err := s.persister.LoadAll(ctx)
		if err != nil {
			// The live store stays authoritative; start empty.
			s.logger.Warn("loading persisted memories failed", zap.Error(err))
		} else {
			s.restore(snap)
			s.logger.Info("loaded persisted memories",
				zap.Int("memories", len(snap.Memories)),
				zap.Int("edges", len(snap.Edges)),
				zap.Int("clusters", len(snap.Clusters)))
		}
	}
	s.metrics.SetMemoryCount(len(s.nodes))

	return s, nil
}

func (s *Store) restore(snap Snapshot) {
	for i := range snap.Memories {
		n := snap.Memories[i]
		s.nodes[n.ID] = &n
	}
	for _, e := range snap.Edges {
		s.graph.AddEdge(e.A, e.B, e.Strength)
	}
	s.clusters.restore(snap.Clusters)
}

// Store inserts a new memory: importance analysis, association edges against
// every existing node, and incremental cluster placement.
func (s *Store) Store(ctx context.Context, in StoreInput) (string, error) {
	if strings.TrimSpace(in.Content) == "" {
		return "", ErrEmptyContent
	}
	if in.MemoryType == "" {
		in.MemoryType = TypeEpisodic
	}
	if in.EmotionalContext == "" {
		in.EmotionalContext = EmotionNeutral
	}

	now := s.now()

	// Importance analysis may call the generation service, so it runs
	// before the write lock is taken.
	var importance float64
	if in.ImportanceHint != nil {
		importance = clamp(*in.ImportanceHint, 0.1, 1.0)
	} else {
		importance = analyzeImportance(ctx, s.svc, in)
	}

	node := &Node{
		ID:               memoryID(in.Content, now),
		Timestamp:        now,
		Content:          in.Content,
		MemoryType:       in.MemoryType,
		Tags:             append([]string(nil), in.Tags...),
		Media:            in.Media,
		EmotionalContext: in.EmotionalContext,
		ImportanceScore:  importance,
		RetrievalCount:   0,
		LastAccessed:     now,
		Metadata:         in.Metadata,
	}

	s.mu.Lock()
	for _, existing := range s.nodes {
		strength := associationStrength(node, existing, s.tuning.Association)
		if strength > s.tuning.EdgeThreshold {
			s.graph.AddEdge(node.ID, existing.ID, strength)
		}
	}
	s.nodes[node.ID] = node
	s.clusters.place(node, s.nodes, s.tuning.ClusterJoinThreshold, s.pairStrength, now)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.MemoryStored()
	s.metrics.SetMemoryCount(len(snap.Memories))
	s.persist(ctx, snap)

	s.logger.Debug("memory stored",
		zap.String("id", node.ID),
		zap.String("type", string(node.MemoryType)),
		zap.Float64("importance", importance))

	return node.ID, nil
}

func (s *Store) pairStrength(a, b *Node) float64 {
	return associationStrength(a, b, s.tuning.Association)
}

// Retrieve returns up to maxResults memories ranked by relevance, updating
// retrieval statistics on every returned node and recording the query in the
// bounded context history.
func (s *Store) Retrieve(ctx context.Context, query, contextType string, maxResults int, includeMultimodal bool) ([]Node, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	started := s.now()

	qc := s.analyzer.Analyze(ctx, query, contextType)

	type scored struct {
		id        string
		score     float64
		timestamp time.Time
	}

	s.mu.RLock()
	candidates := make([]scored, 0, len(s.nodes))
	for _, node := range s.nodes {
		if !isCandidate(node, qc) {
			continue
		}
		candidates = append(candidates, scored{
			id:        node.ID,
			score:     relevanceScore(node, qc, includeMultimodal, s.tuning.Relevance, started),
			timestamp: node.Timestamp,
		})
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].timestamp.After(candidates[j].timestamp)
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	now := s.now()
	out := make([]Node, 0, len(candidates))
	retrievedIDs := make([]string, 0, len(candidates))

	s.mu.Lock()
	for _, c := range candidates {
		node, ok := s.nodes[c.id]
		if !ok {
			continue
		}
		node.RetrievalCount++
		node.LastAccessed = now
		out = append(out, copyNode(node))
		retrievedIDs = append(retrievedIDs, node.ID)
	}
	s.history = append(s.history, QueryRecord{
		Timestamp:   now,
		Query:       query,
		ContextType: contextType,
		RetrievedID: retrievedIDs,
	})
	if len(s.history) > s.tuning.MaxContextHistory {
		s.history = s.history[len(s.history)-s.tuning.MaxContextHistory:]
	}
	s.mu.Unlock()

	s.metrics.ObserveRetrieval(s.now().Sub(started))
	return out, nil
}

// Update applies a typed update to a node. Nil fields are untouched.
func (s *Store) Update(ctx context.Context, id string, upd Update) error {
	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if upd.Tags != nil {
		node.Tags = append([]string(nil), (*upd.Tags)...)
	}
	if upd.EmotionalContext != nil {
		node.EmotionalContext = *upd.EmotionalContext
	}
	if upd.ImportanceScore != nil {
		node.ImportanceScore = clamp(*upd.ImportanceScore, 0, 1)
	}
	if upd.Media != nil {
		node.Media = *upd.Media
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	return nil
}

// Get returns a copy of one node.
func (s *Store) Get(id string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return Node{}, ErrNotFound
	}
	return copyNode(node), nil
}

// Clear is the explicit bulk clear of memories, edges and clusters.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.nodes = make(map[string]*Node)
	s.graph.Clear()
	s.clusters.clear()
	s.history = nil
	s.mu.Unlock()

	s.metrics.SetMemoryCount(0)
	s.persist(ctx, Snapshot{})
}

// Neighbors returns the strongest associations of a memory.
func (s *Store) Neighbors(id string, limit int) []Neighbor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Neighbors(id, limit)
}

// Clusters returns a copy of all clusters.
func (s *Store) Clusters() []Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusters.all()
}

// ContextHistory returns the recent retrieval queries, oldest first.
func (s *Store) ContextHistory() []QueryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]QueryRecord(nil), s.history...)
}

// Count returns the number of stored memories.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Close releases the persistence backend.
func (s *Store) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

func (s *Store) snapshotLocked() Snapshot {
	memories := make([]Node, 0, len(s.nodes))
	for _, node := range s.nodes {
		memories = append(memories, copyNode(node))
	}
	sort.Slice(memories, func(i, j int) bool { return memories[i].ID < memories[j].ID })
	return Snapshot{
		Memories: memories,
		Edges:    s.graph.Edges(),
		Clusters: s.clusters.all(),
	}
}

func (s *Store) persist(ctx context.Context, snap Snapshot) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveAll(ctx, snap); err != nil {
		s.metrics.PersistenceFailure()
		s.logger.Warn("persisting memory snapshot failed", zap.Error(err))
	}
}

func copyNode(n *Node) Node {
	c := *n
	c.Tags = append([]string(nil), n.Tags...)
	if n.Metadata != nil {
		c.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

func memoryID(content string, ts time.Time) string {
	sum := md5.Sum([]byte(content + ts.Format(time.RFC3339Nano)))
	return "mem_" + hex.EncodeToString(sum[:])[:12]
}
