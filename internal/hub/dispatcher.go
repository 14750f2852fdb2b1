package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/warehub/relay/internal/ledger"
	"github.com/warehub/relay/pkg/metrics"
)

// handleMessage classifies one inbound frame and delegates to the matching
// ledger or broadcast operation. Unknown types are logged and ignored; a
// frame that fails to decode gets a typed error reply and the connection
// stays open.
func (h *Hub) handleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Warn("Discarding malformed frame",
			zap.String("client_id", c.ID), zap.Error(err))
		h.SendDirect(c, &ErrorMessage{
			Type:      TypeError,
			Message:   "invalid JSON message",
			Timestamp: wireTime(),
		})
		return
	}
	metrics.MessagesDispatched.WithLabelValues(string(env.Type)).Inc()

	switch env.Type {
	case TypeCreateOrder, TypeCustomMessage:
		h.handleCreateOrder(c, &env)
	case TypeGetOrders:
		h.handleGetOrders(c, &env)
	case TypeDeleteOrder:
		h.handleDeleteOrder(c, &env)
	case TypeClearOrders:
		h.handleClearOrders(c)
	case TypePing:
		h.SendDirect(c, &Pong{Type: TypePong, Timestamp: wireTime()})
	case TypeSubscribe:
		h.SendDirect(c, &Subscribed{
			Type:          TypeSubscribed,
			Subscriptions: []string{"orders", "player_updates"},
			Timestamp:     wireTime(),
		})
	case TypePlayerData:
		h.handlePlayerData(c, &env)
	default:
		h.logger.Info("Ignoring unrecognized message type",
			zap.String("type", string(env.Type)), zap.String("client_id", c.ID))
	}
}

func (h *Hub) handleCreateOrder(c *Client, env *Envelope) {
	h.applyMu.Lock()
	order, err := h.ledger.Create(context.Background(), env.Content, env.Items, env.parsedTimestamp(), c.ID)
	status := "ok"
	if err != nil {
		// The append is retained in memory; only durability failed.
		status = "accepted_not_durable"
		h.logger.Error("Order accepted but not durable",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
	h.broadcastLocked(&NewOrderEvent{
		Type:      TypeNewOrder,
		Order:     order,
		Timestamp: wireTime(),
	})
	h.applyMu.Unlock()

	h.SendDirect(c, &OrderConfirmation{
		Type:      TypeOrderConfirmation,
		OrderID:   order.ID,
		Status:    status,
		Timestamp: wireTime(),
	})
}

func (h *Hub) handleGetOrders(c *Client, env *Envelope) {
	h.SendDirect(c, &OrdersList{
		Type:      TypeOrdersList,
		Orders:    h.ledger.List(env.Limit),
		Total:     h.ledger.Len(),
		Timestamp: wireTime(),
	})
}

func (h *Hub) handleDeleteOrder(c *Client, env *Envelope) {
	if env.OrderID == nil {
		h.SendDirect(c, &ErrorMessage{
			Type:      TypeError,
			Message:   "order_id is required",
			Timestamp: wireTime(),
		})
		return
	}

	h.applyMu.Lock()
	_, err := h.ledger.Delete(context.Background(), *env.OrderID)
	if errors.Is(err, ledger.ErrOrderNotFound) {
		h.applyMu.Unlock()
		h.SendDirect(c, &ErrorMessage{
			Type:      TypeError,
			Message:   fmt.Sprintf("Order %d not found", *env.OrderID),
			Timestamp: wireTime(),
		})
		return
	}
	if err != nil {
		h.logger.Error("Order deleted but not durable",
			zap.Int64("order_id", *env.OrderID), zap.Error(err))
	}
	h.broadcastLocked(&OrderDeleted{
		Type:      TypeOrderDeleted,
		OrderID:   *env.OrderID,
		Timestamp: wireTime(),
	})
	h.applyMu.Unlock()
}

func (h *Hub) handleClearOrders(c *Client) {
	h.applyMu.Lock()
	if err := h.ledger.Clear(context.Background()); err != nil {
		h.logger.Error("Ledger cleared but not durable", zap.Error(err))
	}
	h.broadcastLocked(&OrdersCleared{
		Type:      TypeOrdersCleared,
		Timestamp: wireTime(),
	})
	h.applyMu.Unlock()
}

func (h *Hub) handlePlayerData(c *Client, env *Envelope) {
	h.Broadcast(&PlayerUpdate{
		Type:      TypePlayerUpdate,
		ClientID:  c.ID,
		Data:      env.Data,
		Timestamp: wireTime(),
	})
}
