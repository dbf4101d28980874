package websocket

// Topic naming convention. Clients expecting these channels depend on the
// exact names, so they are built here and nowhere else.
const (
	chatRoomTopicPrefix            = "chat.room."
	chatListTopicPrefix            = "chat.list."
	negotiationRoomTopicPrefix     = "negotiation.room."
	negotiationErrorTopicPrefix    = "negotiation.error."
	negotiationPresenceTopicPrefix = "negotiation.presence."
)

// ChatRoomTopic is the per-room broadcast channel carrying raw chat messages.
func ChatRoomTopic(roomID string) string { return chatRoomTopicPrefix + roomID }

// ChatListTopic is the per-user room-list update channel. The two
// participants of a room get separate events because their unread counts
// generally differ after the same message.
func ChatListTopic(userID string) string { return chatListTopicPrefix + userID }

// NegotiationRoomTopic is the per-negotiation-room broadcast channel.
func NegotiationRoomTopic(roomID string) string { return negotiationRoomTopicPrefix + roomID }

// NegotiationErrorTopic is the per-user direct error channel, used when a
// negotiation send is refused because a party is absent.
func NegotiationErrorTopic(userID string) string { return negotiationErrorTopicPrefix + userID }

// NegotiationPresenceTopic is the per-user channel carrying the
// counterpart's enter/leave status for negotiation rooms.
func NegotiationPresenceTopic(userID string) string { return negotiationPresenceTopicPrefix + userID }

// Control frame types accepted from clients.
const (
	FrameTypePing             = "ping"
	FrameTypePong             = "pong"
	FrameTypeJoinRoom         = "join_room"
	FrameTypeLeaveRoom        = "leave_room"
	FrameTypeJoinNegotiation  = "join_negotiation"
	FrameTypeLeaveNegotiation = "leave_negotiation"
)

// Frame is the envelope for client control messages.
type Frame struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
}

// EventHandler receives client lifecycle and room transitions. The API
// layer implements it on top of the coordinators; the manager itself never
// touches application state. The enter callbacks gate the join: a non-nil
// error means membership was refused and the manager must not subscribe the
// client to the room topic.
type EventHandler interface {
	OnConnect(userID string)
	OnDisconnect(userID string)
	OnEnterRoom(userID, chatRoomID string) error
	OnLeaveRoom(userID string)
	OnEnterNegotiation(userID, negotiationRoomID string) error
	OnLeaveNegotiation(userID, negotiationRoomID string)
}
