package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryOnlineLifecycle(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.IsOnline("alice"))

	r.SetOnline("alice")
	assert.True(t, r.IsOnline("alice"))

	r.SetOffline("alice")
	assert.False(t, r.IsOnline("alice"))
}

func TestRegistryEnterRoomReplacesPrevious(t *testing.T) {
	r := NewRegistry()

	r.EnterRoom("alice", "room-1")
	assert.True(t, r.IsViewing("alice", "room-1"))
	assert.True(t, r.IsOnline("alice"))

	r.EnterRoom("alice", "room-2")
	assert.False(t, r.IsViewing("alice", "room-1"))
	assert.True(t, r.IsViewing("alice", "room-2"))

	roomID, ok := r.CurrentRoom("alice")
	assert.True(t, ok)
	assert.Equal(t, "room-2", roomID)
}

func TestRegistryLeaveRoomKeepsOnline(t *testing.T) {
	r := NewRegistry()

	r.EnterRoom("alice", "room-1")
	r.LeaveRoom("alice")

	assert.True(t, r.IsOnline("alice"))
	_, ok := r.CurrentRoom("alice")
	assert.False(t, ok)
}

func TestRegistryOfflineClearsRoom(t *testing.T) {
	r := NewRegistry()

	r.EnterRoom("alice", "room-1")
	r.SetOffline("alice")

	assert.False(t, r.IsOnline("alice"))
	assert.False(t, r.IsViewing("alice", "room-1"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", n)
			r.SetOnline(user)
			r.EnterRoom(user, "room-1")
			r.IsViewing(user, "room-1")
			r.LeaveRoom(user)
			r.SetOffline(user)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.False(t, r.IsOnline(fmt.Sprintf("user-%d", i)))
	}
}

func TestNegotiationRegistryPresence(t *testing.T) {
	r := NewNegotiationRegistry()

	assert.False(t, r.BothPresent("room-1", "owner", "buyer"))

	r.Enter("room-1", "owner")
	assert.True(t, r.IsPresent("room-1", "owner"))
	assert.False(t, r.BothPresent("room-1", "owner", "buyer"))

	r.Enter("room-1", "buyer")
	assert.True(t, r.BothPresent("room-1", "owner", "buyer"))

	r.Leave("room-1", "buyer")
	assert.False(t, r.BothPresent("room-1", "owner", "buyer"))
}

func TestNegotiationRegistrySingleRoomPerUser(t *testing.T) {
	r := NewNegotiationRegistry()

	r.Enter("room-1", "owner")
	r.Enter("room-2", "owner")

	assert.False(t, r.IsPresent("room-1", "owner"))
	assert.True(t, r.IsPresent("room-2", "owner"))
}

func TestNegotiationRegistryOfflineSweep(t *testing.T) {
	r := NewNegotiationRegistry()

	r.Enter("room-1", "owner")
	r.Enter("room-1", "buyer")
	r.SetOffline("owner")

	assert.False(t, r.IsPresent("room-1", "owner"))
	assert.True(t, r.IsPresent("room-1", "buyer"))
}

func TestNegotiationRegistryPrunesEmptyRooms(t *testing.T) {
	r := NewNegotiationRegistry()

	r.Enter("room-1", "owner")
	r.Leave("room-1", "owner")

	r.mu.RLock()
	_, exists := r.rooms["room-1"]
	r.mu.RUnlock()
	assert.False(t, exists)
}

func TestNegotiationRegistryConcurrentAccess(t *testing.T) {
	r := NewNegotiationRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", n)
			room := fmt.Sprintf("room-%d", n%5)
			r.Enter(room, user)
			r.IsPresent(room, user)
			r.SetOffline(user)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		room := fmt.Sprintf("room-%d", i)
		r.mu.RLock()
		_, exists := r.rooms[room]
		r.mu.RUnlock()
		assert.False(t, exists)
	}
}
