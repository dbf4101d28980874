package entity

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

// ChatMessage is immutable once written. Read is computed at persist time:
// it is true when the receiver was viewing the room at the moment of the
// write, so no second round trip is needed for the receipt.
type ChatMessage struct {
	ID         string `json:"id" firestore:"id"`
	ChatRoomID string `json:"chat_room_id" firestore:"chatRoomId"`
	SenderID   string `json:"sender_id" firestore:"senderId"`
	ReceiverID string `json:"receiver_id" firestore:"receiverId"`
	Type       string `json:"type" firestore:"type"` // "text", "file"
	Content    string `json:"content" firestore:"content"`
	FileURL    string `json:"file_url,omitempty" firestore:"fileUrl,omitempty"`
	SendTime   string `json:"send_time" firestore:"sendTime"` // RFC3339Nano, string-comparable
	Read       bool   `json:"read" firestore:"read"`
}
