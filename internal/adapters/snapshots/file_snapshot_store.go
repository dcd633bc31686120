package snapshots

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
)

// FileSnapshotStore persists decision snapshots as JSON lines, one file
// per user under the configured directory. Appends are serialized with
// a mutex; the store is meant for single-process use.
type FileSnapshotStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileSnapshotStore creates the snapshot directory if needed.
func NewFileSnapshotStore(dir string) (providers.SnapshotStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSnapshotStore{dir: dir}, nil
}

// Append writes a snapshot to the user's stream.
func (s *FileSnapshotStore) Append(ctx context.Context, snapshot *entities.DecisionSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.userPath(snapshot.UserID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// List returns all snapshots recorded for a user, oldest first.
func (s *FileSnapshotStore) List(ctx context.Context, userID string) ([]*entities.DecisionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.userPath(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	var snapshots []*entities.DecisionSnapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var snapshot entities.DecisionSnapshot
		if err := json.Unmarshal([]byte(line), &snapshot); err != nil {
			// Skip torn writes rather than failing the whole read.
			continue
		}
		snapshots = append(snapshots, &snapshot)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return snapshots, nil
}

func (s *FileSnapshotStore) userPath(userID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
	return filepath.Join(s.dir, safe+".jsonl")
}
