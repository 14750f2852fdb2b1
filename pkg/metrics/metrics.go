package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WSConnections tracks live WebSocket connections by role (ue/svelte)
var WSConnections = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "relay_ws_connections",
		Help: "Current number of live WebSocket connections by role",
	},
	[]string{"role"},
)

// OrdersCreated counts orders appended to the ledger
var OrdersCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "relay_orders_created_total",
		Help: "Total number of orders appended to the ledger",
	},
)

// OrdersDeleted counts orders removed from the ledger by id
var OrdersDeleted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "relay_orders_deleted_total",
		Help: "Total number of orders deleted from the ledger",
	},
)

// BroadcastLatency records fan-out latency per event
var BroadcastLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "relay_broadcast_latency_seconds",
		Help:    "Latency in seconds to fan an event out to all subscribers",
		Buckets: prometheus.DefBuckets,
	},
)

// Snapshot and dispatch metrics
var (
	SnapshotFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_snapshot_failures_total",
			Help: "Total number of failed ledger snapshot writes",
		},
	)

	MessagesDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_dispatched_total",
			Help: "Total number of inbound WebSocket messages by type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(WSConnections, OrdersCreated, OrdersDeleted)
	prometheus.MustRegister(BroadcastLatency, SnapshotFailures, MessagesDispatched)
}
