package hub

import (
	"encoding/json"
	"time"

	"github.com/warehub/relay/pkg/models"
)

// MessageType is the wire discriminator carried by every frame.
type MessageType string

// Inbound message types
const (
	TypeCreateOrder   MessageType = "create_order"
	TypeCustomMessage MessageType = "custom_message"
	TypeGetOrders     MessageType = "get_orders"
	TypeDeleteOrder   MessageType = "delete_order"
	TypeClearOrders   MessageType = "clear_orders"
	TypePing          MessageType = "ping"
	TypeSubscribe     MessageType = "subscribe"
	TypePlayerData    MessageType = "player_data"
)

// Outbound message types
const (
	TypeNewOrder          MessageType = "new_order"
	TypeOrderConfirmation MessageType = "order_confirmation"
	TypeOrdersList        MessageType = "orders_list"
	TypeOrderDeleted      MessageType = "order_deleted"
	TypeOrdersCleared     MessageType = "orders_cleared"
	TypePong              MessageType = "pong"
	TypeSubscribed        MessageType = "subscribed"
	TypeStatusUpdate      MessageType = "status_update"
	TypeConnectionUpdate  MessageType = "connection_update"
	TypePlayerUpdate      MessageType = "player_update"
	TypeError             MessageType = "error"
)

// Envelope is the inbound frame, decoded once at the boundary. Unused fields
// stay zero for message types that do not carry them.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp string          `json:"timestamp"`
	Content   string          `json:"content"`
	Items     []int           `json:"items"`
	OrderID   *int64          `json:"order_id"`
	Limit     int             `json:"limit"`
	Data      json.RawMessage `json:"data"`
}

// parsedTimestamp returns the client-supplied timestamp, or the zero time
// when absent or malformed (the ledger then stamps the order itself).
func (e *Envelope) parsedTimestamp() time.Time {
	if e.Timestamp == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// NewOrderEvent announces a ledger append to subscribers.
type NewOrderEvent struct {
	Type      MessageType   `json:"type"`
	Order     *models.Order `json:"order"`
	Timestamp string        `json:"timestamp"`
}

// OrderConfirmation is the direct reply to the originator of a create.
type OrderConfirmation struct {
	Type      MessageType `json:"type"`
	OrderID   int64       `json:"order_id"`
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
}

// OrdersList is the direct reply to get_orders.
type OrdersList struct {
	Type      MessageType     `json:"type"`
	Orders    []*models.Order `json:"orders"`
	Total     int             `json:"total"`
	Timestamp string          `json:"timestamp"`
}

// OrderDeleted announces a ledger delete to subscribers.
type OrderDeleted struct {
	Type      MessageType `json:"type"`
	OrderID   int64       `json:"order_id"`
	Timestamp string      `json:"timestamp"`
}

// OrdersCleared announces a ledger clear to subscribers.
type OrdersCleared struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// Pong is the direct reply to ping.
type Pong struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// Subscribed is the direct reply to subscribe.
type Subscribed struct {
	Type          MessageType `json:"type"`
	Subscriptions []string    `json:"subscriptions"`
	Timestamp     string      `json:"timestamp"`
}

// ConnectionCounts partitions live connections by role.
type ConnectionCounts struct {
	Total         int `json:"total"`
	UEClients     int `json:"ue_clients"`
	SvelteClients int `json:"svelte_clients"`
}

// StatusUpdate is the periodic heartbeat event.
type StatusUpdate struct {
	Type        MessageType      `json:"type"`
	OrdersCount int              `json:"orders_count"`
	Connections ConnectionCounts `json:"connections"`
	Timestamp   string           `json:"timestamp"`
}

// ConnectionUpdate announces a peer connecting or disconnecting.
type ConnectionUpdate struct {
	Type       MessageType `json:"type"`
	ClientType string      `json:"client_type"`
	ClientID   string      `json:"client_id"`
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
}

// PlayerUpdate relays producer telemetry frames to subscribers.
type PlayerUpdate struct {
	Type      MessageType     `json:"type"`
	ClientID  string          `json:"client_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// ErrorMessage is the typed error reply; the connection stays open.
type ErrorMessage struct {
	Type      MessageType `json:"type"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
}

// wireTime formats timestamps the way every frame carries them.
func wireTime() string {
	return time.Now().UTC().Format(time.RFC3339)
}
