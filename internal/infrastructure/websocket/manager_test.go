package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures event callbacks without touching any usecase.
// denyAll simulates a coordinator refusing membership on enter.
type recordingHandler struct {
	denyAll     bool
	connects    []string
	disconnects []string
	enterRooms  [][2]string
	leaveRooms  []string
	enterNegs   [][2]string
	leaveNegs   [][2]string
}

func (h *recordingHandler) OnConnect(userID string)    { h.connects = append(h.connects, userID) }
func (h *recordingHandler) OnDisconnect(userID string) { h.disconnects = append(h.disconnects, userID) }
func (h *recordingHandler) OnEnterRoom(userID, roomID string) error {
	if h.denyAll {
		return errAccessDenied
	}
	h.enterRooms = append(h.enterRooms, [2]string{userID, roomID})
	return nil
}
func (h *recordingHandler) OnLeaveRoom(userID string) { h.leaveRooms = append(h.leaveRooms, userID) }
func (h *recordingHandler) OnEnterNegotiation(userID, roomID string) error {
	if h.denyAll {
		return errAccessDenied
	}
	h.enterNegs = append(h.enterNegs, [2]string{userID, roomID})
	return nil
}
func (h *recordingHandler) OnLeaveNegotiation(userID, roomID string) {
	h.leaveNegs = append(h.leaveNegs, [2]string{userID, roomID})
}

var errAccessDenied = errors.New("not a participant")

func newTestClient(userID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, buffer),
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.Send:
		return payload
	default:
		t.Fatalf("expected a payload for %s", c.UserID)
		return nil
	}
}

func TestRegisterSubscribesUserTopics(t *testing.T) {
	m := NewManager()
	handler := &recordingHandler{}
	m.SetEventHandler(handler)

	alice := newTestClient("alice", 4)
	m.RegisterClient(alice)

	assert.Equal(t, []string{"alice"}, handler.connects)

	// The user-scoped channels are live immediately after registration.
	require.NoError(t, m.Publish(ChatListTopic("alice"), []byte("list")))
	require.NoError(t, m.Publish(NegotiationErrorTopic("alice"), []byte("err")))
	require.NoError(t, m.Publish(NegotiationPresenceTopic("alice"), []byte("presence")))

	assert.Equal(t, []byte("list"), receive(t, alice))
	assert.Equal(t, []byte("err"), receive(t, alice))
	assert.Equal(t, []byte("presence"), receive(t, alice))
}

func TestPublishReachesOnlySubscribers(t *testing.T) {
	m := NewManager()

	alice := newTestClient("alice", 4)
	bob := newTestClient("bob", 4)
	m.RegisterClient(alice)
	m.RegisterClient(bob)

	m.Subscribe(ChatRoomTopic("room-1"), "alice")

	require.NoError(t, m.Publish(ChatRoomTopic("room-1"), []byte("hello")))

	assert.Equal(t, []byte("hello"), receive(t, alice))
	select {
	case payload := <-bob.Send:
		t.Fatalf("bob should not have received %q", payload)
	default:
	}
}

func TestPublishToEmptyTopicSucceeds(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Publish(ChatRoomTopic("nobody-here"), []byte("hello")))
}

func TestPublishDropsSaturatedClient(t *testing.T) {
	m := NewManager()

	alice := newTestClient("alice", 1)
	m.RegisterClient(alice)
	m.Subscribe(ChatRoomTopic("room-1"), "alice")

	require.NoError(t, m.Publish(ChatRoomTopic("room-1"), []byte("one")))

	// The buffer is full now; the next publish drops the client and reports
	// the failure to the caller.
	err := m.Publish(ChatRoomTopic("room-1"), []byte("two"))
	require.Error(t, err)

	// The dropped client is fully unregistered.
	require.NoError(t, m.Publish(ChatListTopic("alice"), []byte("list")))
	_, open := <-alice.Send
	assert.True(t, open) // the buffered "one" is still there
	_, open = <-alice.Send
	assert.False(t, open) // then the channel is closed
}

func TestUnsubscribePrunesTopic(t *testing.T) {
	m := NewManager()

	alice := newTestClient("alice", 4)
	m.RegisterClient(alice)

	m.Subscribe(ChatRoomTopic("room-1"), "alice")
	m.Unsubscribe(ChatRoomTopic("room-1"), "alice")

	m.mu.RLock()
	_, exists := m.topics[ChatRoomTopic("room-1")]
	m.mu.RUnlock()
	assert.False(t, exists)
}

func TestReconnectReplacesClient(t *testing.T) {
	m := NewManager()

	first := newTestClient("alice", 4)
	second := newTestClient("alice", 4)
	m.RegisterClient(first)
	m.RegisterClient(second)

	// The stale connection's channel is closed.
	_, open := <-first.Send
	assert.False(t, open)

	require.NoError(t, m.Publish(ChatListTopic("alice"), []byte("list")))
	assert.Equal(t, []byte("list"), receive(t, second))
}

func TestFrameDispatch(t *testing.T) {
	m := NewManager()
	handler := &recordingHandler{}
	m.SetEventHandler(handler)

	alice := newTestClient("alice", 4)
	m.RegisterClient(alice)

	m.HandleClientFrame(alice, []byte(`{"type":"join_room","room_id":"room-1"}`))
	assert.Equal(t, [][2]string{{"alice", "room-1"}}, handler.enterRooms)

	require.NoError(t, m.Publish(ChatRoomTopic("room-1"), []byte("hi")))
	assert.Equal(t, []byte("hi"), receive(t, alice))

	m.HandleClientFrame(alice, []byte(`{"type":"leave_room","room_id":"room-1"}`))
	assert.Equal(t, []string{"alice"}, handler.leaveRooms)

	m.HandleClientFrame(alice, []byte(`{"type":"join_negotiation","room_id":"neg-1"}`))
	assert.Equal(t, [][2]string{{"alice", "neg-1"}}, handler.enterNegs)

	m.HandleClientFrame(alice, []byte(`{"type":"leave_negotiation","room_id":"neg-1"}`))
	assert.Equal(t, [][2]string{{"alice", "neg-1"}}, handler.leaveNegs)
}

func TestRefusedJoinDoesNotSubscribe(t *testing.T) {
	m := NewManager()
	m.SetEventHandler(&recordingHandler{denyAll: true})

	eve := newTestClient("eve", 4)
	m.RegisterClient(eve)

	m.HandleClientFrame(eve, []byte(`{"type":"join_room","room_id":"someone-elses-room"}`))

	// The refusal reaches the client as an error frame.
	var reply map[string]string
	require.NoError(t, json.Unmarshal(receive(t, eve), &reply))
	assert.Equal(t, "error", reply["type"])

	// No subscription was left behind: room traffic never reaches eve.
	require.NoError(t, m.Publish(ChatRoomTopic("someone-elses-room"), []byte("private message")))
	select {
	case payload := <-eve.Send:
		t.Fatalf("refused client received %q", payload)
	default:
	}
}

func TestRefusedNegotiationJoinDoesNotSubscribe(t *testing.T) {
	m := NewManager()
	m.SetEventHandler(&recordingHandler{denyAll: true})

	eve := newTestClient("eve", 4)
	m.RegisterClient(eve)

	m.HandleClientFrame(eve, []byte(`{"type":"join_negotiation","room_id":"neg-1"}`))

	var reply map[string]string
	require.NoError(t, json.Unmarshal(receive(t, eve), &reply))
	assert.Equal(t, "error", reply["type"])

	require.NoError(t, m.Publish(NegotiationRoomTopic("neg-1"), []byte("terms draft")))
	select {
	case payload := <-eve.Send:
		t.Fatalf("refused client received %q", payload)
	default:
	}
}

func TestConcurrentPublishAgainstSaturatedClients(t *testing.T) {
	m := NewManager()

	// Saturated one-slot buffers force the drop path while publishers and
	// reconnects race; sends happen under the read lock and closes under
	// the write lock, so none of this may panic.
	for i := 0; i < 8; i++ {
		user := fmt.Sprintf("user-%d", i)
		client := newTestClient(user, 1)
		m.RegisterClient(client)
		m.Subscribe(ChatRoomTopic("room-1"), user)
		client.Send <- []byte("filler")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m.Publish(ChatRoomTopic("room-1"), []byte("payload"))
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", n)
			for j := 0; j < 50; j++ {
				replacement := newTestClient(user, 1)
				m.RegisterClient(replacement)
				m.Subscribe(ChatRoomTopic("room-1"), user)
			}
		}(i)
	}
	wg.Wait()
}

func TestFramePing(t *testing.T) {
	m := NewManager()

	alice := newTestClient("alice", 4)
	m.RegisterClient(alice)

	m.HandleClientFrame(alice, []byte(`{"type":"ping"}`))

	var reply map[string]string
	require.NoError(t, json.Unmarshal(receive(t, alice), &reply))
	assert.Equal(t, FrameTypePong, reply["type"])
	assert.NotEmpty(t, reply["timestamp"])
}

func TestFrameErrors(t *testing.T) {
	m := NewManager()

	alice := newTestClient("alice", 4)
	m.RegisterClient(alice)

	m.HandleClientFrame(alice, []byte(`not json`))
	var reply map[string]string
	require.NoError(t, json.Unmarshal(receive(t, alice), &reply))
	assert.Equal(t, "error", reply["type"])

	m.HandleClientFrame(alice, []byte(`{"type":"join_room"}`))
	require.NoError(t, json.Unmarshal(receive(t, alice), &reply))
	assert.Equal(t, "error", reply["type"])

	m.HandleClientFrame(alice, []byte(`{"type":"mystery"}`))
	require.NoError(t, json.Unmarshal(receive(t, alice), &reply))
	assert.Equal(t, "error", reply["type"])
}
