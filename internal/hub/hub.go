// Package hub composes the connection registry with the order ledger: it
// applies ledger mutations, fans the resulting events out to subscriber
// connections with best-effort delivery, and cleans up failed connections.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/warehub/relay/internal/config"
	"github.com/warehub/relay/internal/ledger"
	"github.com/warehub/relay/pkg/metrics"
)

// Hub manages all live connections and every broadcast path.
type Hub struct {
	registry *Registry
	ledger   *ledger.Ledger
	logger   *zap.Logger
	cfg      config.WSConfig
	upgrader websocket.Upgrader

	// applyMu serializes ledger mutations together with their fan-out, so
	// the sequence of events any single subscriber observes matches the
	// ledger mutation sequence.
	applyMu sync.Mutex
}

// NewHub creates a hub over the given ledger.
func NewHub(led *ledger.Ledger, cfg config.WSConfig, logger *zap.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		ledger:   led,
		logger:   logger,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and registers the peer under the given role
// and id. An empty id gets a generated one.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, clientType, clientID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	role := ParseRole(clientType)
	c := &Client{
		ID:          clientID,
		Role:        role,
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, h.cfg.SendBufferSize),
		connectedAt: time.Now().UTC(),
	}

	if prev := h.registry.Register(c); prev != nil {
		prev.close()
		metrics.WSConnections.WithLabelValues(string(prev.Role)).Dec()
		h.logger.Info("Displaced stale connection with same id",
			zap.String("client_id", prev.ID))
	}
	metrics.WSConnections.WithLabelValues(string(role)).Inc()
	h.logger.Info("Client connected",
		zap.String("client_id", clientID), zap.String("role", string(role)))

	h.Broadcast(&ConnectionUpdate{
		Type:       TypeConnectionUpdate,
		ClientType: string(role),
		ClientID:   clientID,
		Status:     "connected",
		Timestamp:  wireTime(),
	})

	go c.writePump()
	go c.readPump()
}

// Broadcast delivers an event to every subscriber, serialized with ledger
// mutations so per-subscriber ordering is preserved.
func (h *Hub) Broadcast(v interface{}) {
	h.applyMu.Lock()
	defer h.applyMu.Unlock()
	h.broadcastLocked(v)
}

// broadcastLocked fans the event out to the current subscriber snapshot.
// Delivery is best-effort and independent per connection: a failed send
// unregisters that connection and never affects the others. Callers must
// hold applyMu.
func (h *Hub) broadcastLocked(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode broadcast event", zap.Error(err))
		return
	}

	start := time.Now()
	for _, c := range h.registry.SnapshotByRole(RoleSubscriber) {
		if !c.enqueue(data) {
			h.logger.Warn("Dropping unresponsive subscriber",
				zap.String("client_id", c.ID))
			h.remove(c)
		}
	}
	metrics.BroadcastLatency.Observe(time.Since(start).Seconds())
}

// SendDirect delivers a payload to a single connection. Failure unregisters
// the connection and is never surfaced past this boundary.
func (h *Hub) SendDirect(c *Client, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode direct message", zap.Error(err))
		return
	}
	if !c.enqueue(data) {
		h.remove(c)
	}
}

// Counts reports live connection totals by role.
func (h *Hub) Counts() ConnectionCounts {
	return h.registry.Counts()
}

// remove takes the client out of the registry and releases its write pump.
// Safe to call more than once for the same client.
func (h *Hub) remove(c *Client) {
	if !h.registry.UnregisterClient(c) {
		return
	}
	c.close()
	metrics.WSConnections.WithLabelValues(string(c.Role)).Dec()
}

// disconnect handles a transport close: unregister, then tell subscribers.
func (h *Hub) disconnect(c *Client) {
	if !h.registry.UnregisterClient(c) {
		return
	}
	c.close()
	metrics.WSConnections.WithLabelValues(string(c.Role)).Dec()
	h.logger.Info("Client disconnected",
		zap.String("client_id", c.ID), zap.String("role", string(c.Role)))

	h.Broadcast(&ConnectionUpdate{
		Type:       TypeConnectionUpdate,
		ClientType: string(c.Role),
		ClientID:   c.ID,
		Status:     "disconnected",
		Timestamp:  wireTime(),
	})
}
