package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/warehub/relay/pkg/models"
	"go.uber.org/zap"
)

// FileStore persists snapshots as a single JSON file, replaced atomically on
// every save. The durable file is always either the previous complete
// snapshot or the new complete snapshot, never a partial write.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed snapshot store at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Save serializes the snapshot to a staging file and renames it over the
// durable file.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open staging file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close staging file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

// Load reads the durable file if present. A missing or corrupt file is
// treated as no history: an empty snapshot with the counter at 1.
func (s *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptySnapshot(), nil
		}
		s.logger.Warn("Failed to read snapshot file, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return EmptySnapshot(), nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Snapshot file is corrupt, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return EmptySnapshot(), nil
	}
	if snap.NextID < 1 {
		snap.NextID = 1
	}
	if snap.Orders == nil {
		snap.Orders = []*models.Order{}
	}
	return &snap, nil
}
