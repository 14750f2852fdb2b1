package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warehub/relay/pkg/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	s := NewFileStore(path, zap.NewNop())

	snap := &Snapshot{
		Orders: []*models.Order{
			{ID: 1, Content: "10-20", Items: []int{10, 20}, Timestamp: time.Now().UTC().Truncate(time.Second)},
			{ID: 2, Content: "7", Items: []int{7}, Timestamp: time.Now().UTC().Truncate(time.Second)},
		},
		NextID: 3,
	}
	require.NoError(t, s.Save(context.Background(), snap))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.NextID)
	require.Len(t, loaded.Orders, 2)
	assert.Equal(t, int64(1), loaded.Orders[0].ID)
	assert.Equal(t, "10-20", loaded.Orders[0].Content)
	assert.Equal(t, []int{10, 20}, loaded.Orders[0].Items)
	assert.Equal(t, int64(2), loaded.Orders[1].ID)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	s := NewFileStore(path, zap.NewNop())

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Orders)
	assert.Equal(t, int64(1), snap.NextID)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := NewFileStore(path, zap.NewNop())

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Orders)
	assert.Equal(t, int64(1), snap.NextID)
}

func TestFileStoreSaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	s := NewFileStore(path, zap.NewNop())

	require.NoError(t, s.Save(context.Background(), &Snapshot{
		Orders: []*models.Order{{ID: 1, Content: "1"}},
		NextID: 2,
	}))
	require.NoError(t, s.Save(context.Background(), &Snapshot{NextID: 1}))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Orders)
	assert.Equal(t, int64(1), snap.NextID)

	// no staging file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, err := NewBadgerStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	empty, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)
	assert.Equal(t, int64(1), empty.NextID)

	require.NoError(t, s.Save(context.Background(), &Snapshot{
		Orders: []*models.Order{{ID: 5, Content: "75-12-43", Items: []int{75, 12, 43}}},
		NextID: 6,
	}))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, int64(5), snap.Orders[0].ID)
	assert.Equal(t, int64(6), snap.NextID)
}
