package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

var snapshotKey = []byte("ledger:snapshot")

// BadgerStore persists snapshots in BadgerDB. Selected with
// storage.backend "badger"; the file store remains the default.
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewBadgerStore initializes a Badger-backed snapshot store at dir.
func NewBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

// Save stores the snapshot under a fixed key in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
}

// Load returns the stored snapshot, or an empty one when absent or corrupt.
func (s *BadgerStore) Load(ctx context.Context) (*Snapshot, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			data = append([]byte(nil), v...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return EmptySnapshot(), nil
	}
	if err != nil {
		s.logger.Warn("Failed to read snapshot from badger, starting empty", zap.Error(err))
		return EmptySnapshot(), nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Stored snapshot is corrupt, starting empty", zap.Error(err))
		return EmptySnapshot(), nil
	}
	if snap.NextID < 1 {
		snap.NextID = 1
	}
	return &snap, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
