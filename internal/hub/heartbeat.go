package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/warehub/relay/internal/ledger"
)

// Heartbeat periodically pushes a status snapshot (ledger size, connection
// counts) through the hub's broadcast-only path.
type Heartbeat struct {
	hub      *Hub
	ledger   *ledger.Ledger
	interval time.Duration
	logger   *zap.Logger
}

// NewHeartbeat creates a heartbeat task with the given tick interval.
func NewHeartbeat(h *Hub, led *ledger.Ledger, interval time.Duration, logger *zap.Logger) *Heartbeat {
	return &Heartbeat{hub: h, ledger: led, interval: interval, logger: logger}
}

// Run ticks until the context is cancelled. A failed tick is logged and
// never stops the loop.
func (hb *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(hb.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			hb.logger.Info("Heartbeat stopped")
			return
		case <-ticker.C:
			hb.tick()
		}
	}
}

func (hb *Heartbeat) tick() {
	defer func() {
		if r := recover(); r != nil {
			hb.logger.Error("Heartbeat tick panicked", zap.Any("panic", r))
		}
	}()

	hb.hub.Broadcast(&StatusUpdate{
		Type:        TypeStatusUpdate,
		OrdersCount: hb.ledger.Len(),
		Connections: hb.hub.Counts(),
		Timestamp:   wireTime(),
	})
}
