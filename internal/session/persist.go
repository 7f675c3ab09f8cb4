package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persister stores completed sessions for later clinical review.
type Persister interface {
	Save(ctx context.Context, s *Session) error
}

// FilePersister writes one JSON document per session under a directory.
type FilePersister struct {
	dir string
}

func NewFilePersister(dir string) *FilePersister {
	if dir == "" {
		dir = filepath.Join("data", "conversations")
	}
	return &FilePersister{dir: dir}
}

func (p *FilePersister) Save(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	path := filepath.Join(p.dir, s.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", s.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit session %s: %w", s.ID, err)
	}
	return nil
}

// Load reads a previously saved session back, mainly for review tooling.
func (p *FilePersister) Load(id string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, id+".json"))
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}
