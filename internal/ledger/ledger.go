// Package ledger owns the ordered, durable collection of orders and the
// next-identifier counter. It has no knowledge of connections.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warehub/relay/internal/store"
	"github.com/warehub/relay/pkg/metrics"
	"github.com/warehub/relay/pkg/models"
)

// itemSeparator joins and splits order item lists in the content string.
const itemSeparator = "-"

var (
	// ErrOrderNotFound is returned by Delete when no order has the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrLedgerEmpty is returned by Latest when the ledger holds no orders.
	ErrLedgerEmpty = errors.New("ledger is empty")
)

// Ledger is the shared, single-writer order collection. Every mutation runs
// under the mutex and commits a full snapshot before returning, so a torn
// read is never observable and the durable file always holds a complete
// sequence.
type Ledger struct {
	mu           sync.Mutex
	orders       []*models.Order
	nextID       int64
	store        store.SnapshotStore
	logger       *zap.Logger
	defaultLimit int
}

// NewLedger creates a ledger backed by st, recovering any previous snapshot.
func NewLedger(st store.SnapshotStore, defaultLimit int, logger *zap.Logger) (*Ledger, error) {
	snap, err := st.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	l := &Ledger{
		orders:       snap.Orders,
		nextID:       snap.NextID,
		store:        st,
		logger:       logger,
		defaultLimit: defaultLimit,
	}
	if l.orders == nil {
		l.orders = []*models.Order{}
	}
	if l.nextID < 1 {
		l.nextID = 1
	}
	logger.Info("Ledger ready",
		zap.Int("orders", len(l.orders)),
		zap.Int64("next_id", l.nextID))
	return l, nil
}

// Create appends a new order and returns it. When content is supplied the
// item list is derived from it (content wins over an explicit item list);
// when only items are supplied the content is synthesized by joining them.
// Malformed tokens are dropped, never rejected. The returned error is
// non-nil only when the snapshot write failed; the in-memory append is
// retained either way.
func (l *Ledger) Create(ctx context.Context, content string, items []int, ts time.Time, origin string) (*models.Order, error) {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if content != "" {
		items = parseItems(content)
	} else if len(items) > 0 {
		content = joinItems(items)
	}
	if items == nil {
		items = []int{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	order := &models.Order{
		ID:        l.nextID,
		Content:   content,
		Items:     items,
		Timestamp: ts.UTC(),
		Origin:    origin,
	}
	l.orders = append(l.orders, order)
	l.nextID++
	metrics.OrdersCreated.Inc()

	return order, l.persistLocked(ctx)
}

// Delete removes the first order with the given id and returns it. The
// counter is not decremented; identifiers are never reused after a delete.
func (l *Ledger) Delete(ctx context.Context, id int64) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, order := range l.orders {
		if order.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			metrics.OrdersDeleted.Inc()
			return order, l.persistLocked(ctx)
		}
	}
	return nil, ErrOrderNotFound
}

// Clear empties the ledger and resets the counter to 1. Identifier reuse
// after a clear is deliberate, matching the dashboard's expectation that a
// fresh board starts over at order 1.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.orders = []*models.Order{}
	l.nextID = 1
	return l.persistLocked(ctx)
}

// List returns the most recent limit orders in arrival order. A non-positive
// limit falls back to the configured default.
func (l *Ledger) List(limit int) []*models.Order {
	if limit <= 0 {
		limit = l.defaultLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	start := len(l.orders) - limit
	if start < 0 {
		start = 0
	}
	out := make([]*models.Order, len(l.orders)-start)
	copy(out, l.orders[start:])
	return out
}

// Latest returns the last-arrived order.
func (l *Ledger) Latest() (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.orders) == 0 {
		return nil, ErrLedgerEmpty
	}
	return l.orders[len(l.orders)-1], nil
}

// Len returns the number of orders currently held.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

// persistLocked commits the current state. Callers must hold l.mu. A failed
// commit keeps the in-memory mutation and is reported to the caller as
// succeeded-but-not-durable.
func (l *Ledger) persistLocked(ctx context.Context) error {
	orders := make([]*models.Order, len(l.orders))
	copy(orders, l.orders)
	snap := &store.Snapshot{Orders: orders, NextID: l.nextID}

	if err := l.store.Save(ctx, snap); err != nil {
		metrics.SnapshotFailures.Inc()
		l.logger.Error("Failed to persist ledger snapshot", zap.Error(err))
		return fmt.Errorf("order applied but not persisted: %w", err)
	}
	return nil
}

// parseItems splits content on the separator and keeps the leading integer
// of each token, dropping blank and non-numeric tokens.
func parseItems(content string) []int {
	tokens := strings.Split(content, itemSeparator)
	items := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		i := 0
		for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			i++
		}
		if i == 0 {
			continue
		}
		n, err := strconv.Atoi(tok[:i])
		if err != nil {
			continue
		}
		items = append(items, n)
	}
	return items
}

// joinItems synthesizes a content string from an item list.
func joinItems(items []int) string {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, itemSeparator)
}
