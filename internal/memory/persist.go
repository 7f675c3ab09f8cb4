package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Persister stores and loads the full memory snapshot. The live store never
// depends on it for correctness: failures are logged by the caller and the
// in-memory state stays authoritative.
type Persister interface {
	LoadAll(ctx context.Context) (Snapshot, error)
	SaveAll(ctx context.Context, snap Snapshot) error
	Close() error
}

// NewPersister creates a postgres-backed persister when configured,
// otherwise a JSON file persister.
func NewPersister(ctx context.Context, databaseURL, filePath string) (Persister, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewFilePersister(filePath), nil
	}
	return NewPostgresPersister(ctx, databaseURL)
}

// FilePersister keeps the snapshot in a single UTF-8 JSON file with RFC 3339
// timestamps, written atomically via tmp+rename.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("data", "memories", "memory_database.json")
	}
	return &FilePersister{path: path}
}

func (p *FilePersister) LoadAll(_ context.Context) (Snapshot, error) {
	raw, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read memory file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse memory file: %w", err)
	}
	return snap, nil
}

func (p *FilePersister) SaveAll(_ context.Context, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory snapshot: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write memory file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

func (p *FilePersister) Close() error { return nil }
