package entity

import "time"

// ChatRoom is the general conversation between a property owner and a
// prospective buyer about one home. At most one room exists per
// (owner, buyer, home) triple.
type ChatRoom struct {
	ID            string         `json:"id" firestore:"id"`
	OwnerID       string         `json:"owner_id" firestore:"ownerId"`
	BuyerID       string         `json:"buyer_id" firestore:"buyerId"`
	HomeID        string         `json:"home_id" firestore:"homeId"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCount   map[string]int `json:"unread_count" firestore:"unreadCount"` // userID -> unread count
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// IsParticipant reports whether userID is one of the room's two parties.
func (r *ChatRoom) IsParticipant(userID string) bool {
	return userID == r.OwnerID || userID == r.BuyerID
}

// Counterpart returns the other participant of the room.
func (r *ChatRoom) Counterpart(userID string) string {
	if userID == r.OwnerID {
		return r.BuyerID
	}
	return r.OwnerID
}
