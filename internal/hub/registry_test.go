package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegisteredClient(id string, role Role) *Client {
	return &Client{ID: id, Role: role, send: make(chan []byte, 1)}
}

func TestRegistryRegisterAndCounts(t *testing.T) {
	r := NewRegistry()
	r.Register(newRegisteredClient("a", RoleProducer))
	r.Register(newRegisteredClient("b", RoleSubscriber))
	r.Register(newRegisteredClient("c", RoleSubscriber))

	counts := r.Counts()
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 1, counts.UEClients)
	assert.Equal(t, 2, counts.SvelteClients)
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := newRegisteredClient("a", RoleSubscriber)
	r.Register(c)

	assert.Same(t, c, r.Unregister("a"))
	assert.Nil(t, r.Unregister("a"), "double-disconnect is not an error")
	assert.Equal(t, 0, r.Counts().Total)
}

func TestRegistryDisplacesSameID(t *testing.T) {
	r := NewRegistry()
	old := newRegisteredClient("a", RoleSubscriber)
	r.Register(old)

	replacement := newRegisteredClient("a", RoleSubscriber)
	displaced := r.Register(replacement)
	assert.Same(t, old, displaced)
	assert.Equal(t, 1, r.Counts().Total)

	// removing the old handle must not evict the replacement
	assert.False(t, r.UnregisterClient(old))
	assert.Equal(t, 1, r.Counts().Total)
	assert.True(t, r.UnregisterClient(replacement))
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Register(newRegisteredClient("a", RoleSubscriber))
	r.Register(newRegisteredClient("b", RoleSubscriber))

	snap := r.SnapshotByRole(RoleSubscriber)
	require.Len(t, snap, 2)

	r.Unregister("a")
	assert.Len(t, snap, 2, "snapshot is unaffected by later unregistration")
	assert.Len(t, r.SnapshotByRole(RoleSubscriber), 1)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleProducer, ParseRole("ue"))
	assert.Equal(t, RoleSubscriber, ParseRole("svelte"))
	assert.Equal(t, RoleSubscriber, ParseRole("anything-else"))
}
