package entity

import "time"

// NegotiationRoom is the dedicated conversation for drafting contract
// special terms between the same two parties as a chat room. StartPoint and
// EndPoint bound the message window exported as the special-terms
// transcript; both empty is the rest state.
type NegotiationRoom struct {
	ID          string    `json:"id" firestore:"id"`
	OwnerID     string    `json:"owner_id" firestore:"ownerId"`
	BuyerID     string    `json:"buyer_id" firestore:"buyerId"`
	HomeID      string    `json:"home_id" firestore:"homeId"`
	StartPoint  string    `json:"start_point,omitempty" firestore:"startPoint,omitempty"` // RFC3339Nano, "" when unset
	EndPoint    string    `json:"end_point,omitempty" firestore:"endPoint,omitempty"`
	LastMessage string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (r *NegotiationRoom) IsParticipant(userID string) bool {
	return userID == r.OwnerID || userID == r.BuyerID
}

func (r *NegotiationRoom) Counterpart(userID string) string {
	if userID == r.OwnerID {
		return r.BuyerID
	}
	return r.OwnerID
}

// NegotiationMessage carries both ordinary negotiation chat and the two
// synthetic control notices emitted by the end-request protocol.
type NegotiationMessage struct {
	ID         string `json:"id" firestore:"id"`
	RoomID     string `json:"room_id" firestore:"roomId"`
	SenderID   string `json:"sender_id" firestore:"senderId"`
	ReceiverID string `json:"receiver_id" firestore:"receiverId"`
	Content    string `json:"content" firestore:"content"`
	SendTime   string `json:"send_time" firestore:"sendTime"` // RFC3339Nano, string-comparable
}
