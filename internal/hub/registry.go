package hub

import (
	"sync"
)

// Role classifies a connection as an order/telemetry producer (the
// simulation client) or a broadcast subscriber (a dashboard client).
type Role string

const (
	RoleProducer   Role = "ue"
	RoleSubscriber Role = "svelte"
)

// ParseRole maps a client_type path segment onto a role. Anything that is
// not the producer tag is treated as a subscriber.
func ParseRole(clientType string) Role {
	if clientType == string(RoleProducer) {
		return RoleProducer
	}
	return RoleSubscriber
}

// Registry tracks live connections keyed by connection id, with a secondary
// view partitioned by role for fan-out. Membership reflects exactly the set
// of currently accepted connections.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	byRole  map[Role]map[string]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		byRole: map[Role]map[string]*Client{
			RoleProducer:   make(map[string]*Client),
			RoleSubscriber: make(map[string]*Client),
		},
	}
}

// Register inserts the client into both views. If another live client holds
// the same id it is displaced and returned so the caller can close it.
func (r *Registry) Register(c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.clients[c.ID]
	if prev != nil {
		delete(r.byRole[prev.Role], prev.ID)
	}
	r.clients[c.ID] = c
	r.byRole[c.Role][c.ID] = c
	return prev
}

// Unregister removes the client with the given id from all views and
// returns it. Removal is idempotent: a second call returns nil.
func (r *Registry) Unregister(id string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return nil
	}
	delete(r.clients, id)
	delete(r.byRole[c.Role], id)
	return c
}

// UnregisterClient removes exactly this client, leaving any newer
// connection that reused the id untouched. Returns false when the client is
// no longer registered.
func (r *Registry) UnregisterClient(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clients[c.ID] != c {
		return false
	}
	delete(r.clients, c.ID)
	delete(r.byRole[c.Role], c.ID)
	return true
}

// SnapshotByRole returns a copy of the current membership for a role, safe
// to iterate while clients unregister concurrently.
func (r *Registry) SnapshotByRole(role Role) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.byRole[role]))
	for _, c := range r.byRole[role] {
		out = append(out, c)
	}
	return out
}

// Counts returns the live connection totals by role.
func (r *Registry) Counts() ConnectionCounts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return ConnectionCounts{
		Total:         len(r.clients),
		UEClients:     len(r.byRole[RoleProducer]),
		SvelteClients: len(r.byRole[RoleSubscriber]),
	}
}
