package presence

import "sync"

// Registry is the process-wide table of online users and the single chat
// room each user is actively viewing. State is volatile and rebuilt empty
// on restart. Each user's entries are only ever written by that user's own
// connection, so last-write-wins semantics are enough; the locks protect
// the containers, not a protocol.
type Registry struct {
	mu          sync.RWMutex
	online      map[string]struct{}
	currentRoom map[string]string // userID -> chatRoomID
}

func NewRegistry() *Registry {
	return &Registry{
		online:      make(map[string]struct{}),
		currentRoom: make(map[string]string),
	}
}

// SetOnline marks the user as connected to the platform.
func (r *Registry) SetOnline(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID] = struct{}{}
}

// SetOffline clears both the online flag and the current-room mapping.
func (r *Registry) SetOffline(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.online, userID)
	delete(r.currentRoom, userID)
}

// EnterRoom records the room a user is actively viewing. Entering a new
// room silently replaces the previous mapping, and marks the user online.
func (r *Registry) EnterRoom(userID, chatRoomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID] = struct{}{}
	r.currentRoom[userID] = chatRoomID
}

// LeaveRoom clears the current-room mapping only; the user stays online.
func (r *Registry) LeaveRoom(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.currentRoom, userID)
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.online[userID]
	return ok
}

// CurrentRoom returns the room the user is viewing, if any.
func (r *Registry) CurrentRoom(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.currentRoom[userID]
	return roomID, ok
}

// IsViewing reports whether the user currently has chatRoomID open.
func (r *Registry) IsViewing(userID, chatRoomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentRoom[userID] == chatRoomID
}
