package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPersister stores the memory snapshot in PostgreSQL. SaveAll rewrites
// the three tables inside one transaction so a loaded snapshot is always
// internally consistent.
type PostgresPersister struct {
	pool *pgxpool.Pool
}

func NewPostgresPersister(ctx context.Context, databaseURL string) (*PostgresPersister, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresPersister{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_nodes (
			id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			content TEXT NOT NULL,
			memory_type TEXT NOT NULL,
			tags JSONB NOT NULL DEFAULT '[]',
			image_path TEXT NOT NULL DEFAULT '',
			audio_path TEXT NOT NULL DEFAULT '',
			emotional_context TEXT NOT NULL,
			importance_score DOUBLE PRECISION NOT NULL,
			retrieval_count INTEGER NOT NULL DEFAULT 0,
			last_accessed TIMESTAMPTZ NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'
		);`,
		`CREATE TABLE IF NOT EXISTS memory_edges (
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			strength DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (a, b)
		);`,
		`CREATE TABLE IF NOT EXISTS memory_clusters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			member_ids JSONB NOT NULL DEFAULT '[]',
			central_theme TEXT NOT NULL,
			created TIMESTAMPTZ NOT NULL,
			strength DOUBLE PRECISION NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memory_nodes_ts ON memory_nodes (ts);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (p *PostgresPersister) SaveAll(ctx context.Context, snap Snapshot) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"memory_nodes", "memory_edges", "memory_clusters"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, n := range snap.Memories {
		tags, err := json.Marshal(n.Tags)
		if err != nil {
			return fmt.Errorf("encode tags for %s: %w", n.ID, err)
		}
		metadata, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", n.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO memory_nodes
			 (id, ts, content, memory_type, tags, image_path, audio_path,
			  emotional_context, importance_score, retrieval_count, last_accessed, metadata)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			n.ID, n.Timestamp, n.Content, string(n.MemoryType), tags,
			n.Media.ImagePath, n.Media.AudioPath, string(n.EmotionalContext),
			n.ImportanceScore, n.RetrievalCount, n.LastAccessed, metadata,
		)
		if err != nil {
			return fmt.Errorf("save memory %s: %w", n.ID, err)
		}
	}

	for _, e := range snap.Edges {
		if _, err := tx.Exec(ctx,
			`INSERT INTO memory_edges (a, b, strength) VALUES ($1,$2,$3)`,
			e.A, e.B, e.Strength,
		); err != nil {
			return fmt.Errorf("save edge %s-%s: %w", e.A, e.B, err)
		}
	}

	for _, c := range snap.Clusters {
		members, err := json.Marshal(c.MemberIDs)
		if err != nil {
			return fmt.Errorf("encode members for %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO memory_clusters (id, name, member_ids, central_theme, created, strength)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.Name, members, c.CentralTheme, c.Created, c.Strength,
		); err != nil {
			return fmt.Errorf("save cluster %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (p *PostgresPersister) LoadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := p.pool.Query(ctx,
		`SELECT id, ts, content, memory_type, tags, image_path, audio_path,
		        emotional_context, importance_score, retrieval_count, last_accessed, metadata
		 FROM memory_nodes ORDER BY ts`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n             Node
			memType       string
			emotion       string
			tags          []byte
			metadata      []byte
			ts, accessed  time.Time
			imageP, audio string
		)
		if err := rows.Scan(&n.ID, &ts, &n.Content, &memType, &tags, &imageP, &audio,
			&emotion, &n.ImportanceScore, &n.RetrievalCount, &accessed, &metadata); err != nil {
			return Snapshot{}, fmt.Errorf("scan memory row: %w", err)
		}
		n.Timestamp = ts
		n.LastAccessed = accessed
		n.MemoryType = Type(memType)
		n.EmotionalContext = Emotion(emotion)
		n.Media = Media{ImagePath: imageP, AudioPath: audio}
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return Snapshot{}, fmt.Errorf("decode tags for %s: %w", n.ID, err)
		}
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return Snapshot{}, fmt.Errorf("decode metadata for %s: %w", n.ID, err)
		}
		snap.Memories = append(snap.Memories, n)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate memory rows: %w", err)
	}

	edgeRows, err := p.pool.Query(ctx, `SELECT a, b, strength FROM memory_edges ORDER BY a, b`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e Edge
		if err := edgeRows.Scan(&e.A, &e.B, &e.Strength); err != nil {
			return Snapshot{}, fmt.Errorf("scan edge row: %w", err)
		}
		snap.Edges = append(snap.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate edge rows: %w", err)
	}

	clusterRows, err := p.pool.Query(ctx,
		`SELECT id, name, member_ids, central_theme, created, strength FROM memory_clusters ORDER BY id`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query clusters: %w", err)
	}
	defer clusterRows.Close()
	for clusterRows.Next() {
		var (
			c       Cluster
			members []byte
		)
		if err := clusterRows.Scan(&c.ID, &c.Name, &members, &c.CentralTheme, &c.Created, &c.Strength); err != nil {
			return Snapshot{}, fmt.Errorf("scan cluster row: %w", err)
		}
		if err := json.Unmarshal(members, &c.MemberIDs); err != nil {
			return Snapshot{}, fmt.Errorf("decode members for %s: %w", c.ID, err)
		}
		snap.Clusters = append(snap.Clusters, c)
	}
	if err := clusterRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate cluster rows: %w", err)
	}

	return snap, nil
}

func (p *PostgresPersister) Close() error {
	p.pool.Close()
	return nil
}
