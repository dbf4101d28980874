package presence

import "sync"

// NegotiationRegistry tracks which users are present in each negotiation
// room. It is a separate namespace from the general chat registry: being
// online on the platform says nothing about negotiation presence. Room sets
// are created on first entry and removed once empty, so rooms that are
// never revisited do not accumulate.
type NegotiationRegistry struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]struct{} // roomID -> set of userID
	userRoom map[string]string              // userID -> roomID, for O(1) offline sweep
}

func NewNegotiationRegistry() *NegotiationRegistry {
	return &NegotiationRegistry{
		rooms:    make(map[string]map[string]struct{}),
		userRoom: make(map[string]string),
	}
}

// Enter records the user as present in the negotiation room. A user is
// present in at most one negotiation room; entering another replaces the
// previous entry.
func (r *NegotiationRegistry) Enter(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.userRoom[userID]; ok && prev != roomID {
		r.removeLocked(prev, userID)
	}

	set, ok := r.rooms[roomID]
	if !ok {
		set = make(map[string]struct{})
		r.rooms[roomID] = set
	}
	set[userID] = struct{}{}
	r.userRoom[userID] = roomID
}

// Leave removes the user from the negotiation room.
func (r *NegotiationRegistry) Leave(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(roomID, userID)
	if r.userRoom[userID] == roomID {
		delete(r.userRoom, userID)
	}
}

// SetOffline removes the user from whichever negotiation room they are in.
func (r *NegotiationRegistry) SetOffline(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if roomID, ok := r.userRoom[userID]; ok {
		r.removeLocked(roomID, userID)
		delete(r.userRoom, userID)
	}
}

// IsPresent reports whether the user is present in the room.
func (r *NegotiationRegistry) IsPresent(roomID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][userID]
	return ok
}

// BothPresent reports whether both participants are present in the room.
// A message may only be sent to a negotiation room while this holds.
func (r *NegotiationRegistry) BothPresent(roomID, ownerID, buyerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	_, ownerIn := set[ownerID]
	_, buyerIn := set[buyerID]
	return ownerIn && buyerIn
}

// removeLocked deletes the membership and prunes the room set when empty.
func (r *NegotiationRegistry) removeLocked(roomID, userID string) {
	set, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(r.rooms, roomID)
	}
}
