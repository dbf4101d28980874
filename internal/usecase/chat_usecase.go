package usecase

import (
	"context"
	"encoding/json"
	"time"

	"rentline/internal/domain/entity"
	"rentline/internal/domain/repository"
	"rentline/internal/infrastructure/presence"
	"rentline/internal/infrastructure/ratelimit"
	ws "rentline/internal/infrastructure/websocket"
	"rentline/pkg/errors"
	"rentline/pkg/logger"
)

// filePreview replaces the content preview for file messages in room-list
// updates.
const filePreview = "[file]"

// ChatUseCase orchestrates message intake, persistence, unread accounting,
// and fan-out for general chat between a property owner and a buyer.
type ChatUseCase struct {
	roomRepo    repository.ChatRoomRepository
	messageRepo repository.MessageRepository
	presence    *presence.Registry
	broadcaster Broadcaster
	filter      ContentFilter
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	roomRepo repository.ChatRoomRepository,
	messageRepo repository.MessageRepository,
	registry *presence.Registry,
	broadcaster Broadcaster,
	filter ContentFilter,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		presence:    registry,
		broadcaster: broadcaster,
		filter:      filter,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ChatRoomID string
	Type       string // "text", "file"
	Content    string
	FileURL    string
}

// chatListUpdate is the per-user room-list event. The two participants get
// separate events because their unread counts differ after the same message.
type chatListUpdate struct {
	Type          string `json:"type"`
	ChatRoomID    string `json:"chat_room_id"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_at"`
	UnreadCount   int    `json:"unread_count"`
}

type newMessageEvent struct {
	Type    string              `json:"type"`
	Message *entity.ChatMessage `json:"message"`
}

// CreateRoom opens the chat room for an (owner, buyer, home) triple,
// returning the existing room if one already exists.
func (uc *ChatUseCase) CreateRoom(ctx context.Context, ownerID, buyerID, homeID string) (*entity.ChatRoom, error) {
	if ownerID == buyerID {
		logger.Warn("CreateRoom: user %s attempted a self chat", ownerID)
		return nil, errors.SelfChatNotAllowed()
	}

	allowed, _ := uc.rateLimiter.Allow(buyerID, ratelimit.ActionCreateRoom)
	if !allowed {
		return nil, errors.TooManyRequests("Too many rooms created, please wait")
	}

	existing, err := uc.roomRepo.FindByParticipantsAndHome(ctx, ownerID, buyerID, homeID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		logger.Error("CreateRoom Error: lookup for existing room failed: %v", err)
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	room := &entity.ChatRoom{
		OwnerID:       ownerID,
		BuyerID:       buyerID,
		HomeID:        homeID,
		UnreadCount:   map[string]int{ownerID: 0, buyerID: 0},
		LastMessageAt: time.Now(),
	}
	if err := uc.roomRepo.Create(ctx, room); err != nil {
		logger.Error("CreateRoom Error: failed to create room: %v", err)
		return nil, err
	}

	return room, nil
}

// SendMessage persists one chat message and fans it out: a room-level
// broadcast carrying the raw message plus one room-list update per
// participant. Persistence failure aborts before any publish; a publish
// failure after persistence is reported as DELIVERY_FAILED, with the
// message durably stored.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.ChatMessage, error) {
	allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage)
	if !allowed {
		logger.Warn("SendMessage Rate Limited: user %s must wait %v", senderID, wait)
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	switch input.Type {
	case entity.MessageTypeText:
		if uc.filter.ContainsBadWord(input.Content) {
			logger.Warn("SendMessage: content rejected for user %s in room %s", senderID, input.ChatRoomID)
			return nil, errors.ContentRejected("message contains blocked content")
		}
	case entity.MessageTypeFile:
		if input.FileURL == "" {
			return nil, errors.BadRequest("file messages require a file URL", nil)
		}
	default:
		return nil, errors.BadRequest("unsupported message type", nil)
	}

	room, err := uc.roomRepo.GetByID(ctx, input.ChatRoomID)
	if err != nil {
		logger.Error("SendMessage Error: room %s not found: %v", input.ChatRoomID, err)
		return nil, errors.RoomNotFound(input.ChatRoomID)
	}
	if !room.IsParticipant(senderID) {
		logger.Warn("SendMessage: user %s is not a participant of room %s", senderID, room.ID)
		return nil, errors.AccessDenied("user is not a participant in this chat room")
	}

	receiverID := room.Counterpart(senderID)
	receiverPresent := uc.presence.IsViewing(receiverID, room.ID)

	now := time.Now().UTC()
	message := &entity.ChatMessage{
		ChatRoomID: room.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       input.Type,
		Content:    input.Content,
		FileURL:    input.FileURL,
		SendTime:   now.Format(time.RFC3339Nano),
		// Messages written while the receiver is viewing the room are read
		// at write time; no second round trip for the receipt.
		Read: receiverPresent,
	}

	if err := uc.messageRepo.CreateChatMessage(ctx, message); err != nil {
		logger.Error("SendMessage Error: failed to persist message for room %s: %v", room.ID, err)
		return nil, err
	}

	preview := input.Content
	if input.Type == entity.MessageTypeFile {
		preview = filePreview
	}
	// From here on the message is durably stored; any failure to announce
	// it is reported uniformly as DELIVERY_FAILED.
	if err := uc.roomRepo.UpdateLastMessage(ctx, room.ID, preview, now); err != nil {
		logger.Error("SendMessage Error: failed to update room %s metadata: %v", room.ID, err)
		return nil, errors.DeliveryFailed("message stored but room metadata update failed", err)
	}

	if err := uc.fanOut(ctx, room, message, preview, now); err != nil {
		return nil, err
	}

	return message, nil
}

// fanOut publishes the room broadcast and the two per-user list updates.
// Unread counts are recomputed per participant against the store, so the
// count observes the message that triggered it.
func (uc *ChatUseCase) fanOut(ctx context.Context, room *entity.ChatRoom, message *entity.ChatMessage, preview string, at time.Time) error {
	raw, err := json.Marshal(newMessageEvent{Type: "new_message", Message: message})
	if err != nil {
		return errors.Internal("Failed to encode message event", err)
	}
	if err := uc.broadcaster.Publish(ws.ChatRoomTopic(room.ID), raw); err != nil {
		logger.Error("SendMessage Error: room broadcast failed for %s: %v", room.ID, err)
		return errors.DeliveryFailed("message stored but room broadcast failed", err)
	}

	for _, userID := range []string{room.OwnerID, room.BuyerID} {
		count, err := uc.messageRepo.CountUnread(ctx, room.ID, userID)
		if err != nil {
			logger.Error("SendMessage Error: unread count for user %s failed: %v", userID, err)
			return errors.DeliveryFailed("message stored but unread accounting failed", err)
		}
		if err := uc.roomRepo.UpdateUnreadCount(ctx, room.ID, userID, count); err != nil {
			logger.Error("SendMessage Error: unread update for user %s failed: %v", userID, err)
			return errors.DeliveryFailed("message stored but unread accounting failed", err)
		}
		if err := uc.publishListUpdate(room.ID, userID, preview, at, count); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ChatUseCase) publishListUpdate(roomID, userID, preview string, at time.Time, count int) error {
	payload, err := json.Marshal(chatListUpdate{
		Type:          "chat_list_update",
		ChatRoomID:    roomID,
		LastMessage:   preview,
		LastMessageAt: at.Format(time.RFC3339Nano),
		UnreadCount:   count,
	})
	if err != nil {
		return errors.Internal("Failed to encode list update", err)
	}
	if err := uc.broadcaster.Publish(ws.ChatListTopic(userID), payload); err != nil {
		logger.Error("SendMessage Error: list update for user %s failed: %v", userID, err)
		return errors.DeliveryFailed("message stored but list update failed", err)
	}
	return nil
}

// MarkRoomRead flips all of the user's unread messages in the room and
// publishes the refreshed count to that user's room list.
func (uc *ChatUseCase) MarkRoomRead(ctx context.Context, roomID, userID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		logger.Error("MarkRoomRead Error: room %s not found: %v", roomID, err)
		return errors.RoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return errors.AccessDenied("user is not a participant in this chat room")
	}

	if err := uc.messageRepo.MarkRead(ctx, roomID, userID); err != nil {
		logger.Error("MarkRoomRead Error: failed to mark room %s read for %s: %v", roomID, userID, err)
		return err
	}

	count, err := uc.messageRepo.CountUnread(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if err := uc.roomRepo.UpdateUnreadCount(ctx, roomID, userID, count); err != nil {
		return err
	}

	return uc.publishListUpdate(roomID, userID, room.LastMessage, room.LastMessageAt, count)
}

// EnterRoom records the room the user is viewing and clears their unread
// backlog for it. Membership is checked before any presence state changes,
// so a denied enter leaves no trace.
func (uc *ChatUseCase) EnterRoom(ctx context.Context, userID, roomID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return errors.RoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return errors.AccessDenied("user is not a participant in this chat room")
	}

	uc.presence.EnterRoom(userID, roomID)
	return uc.MarkRoomRead(ctx, roomID, userID)
}

// LeaveRoom clears the current-room mapping only; the user stays online.
func (uc *ChatUseCase) LeaveRoom(userID string) {
	uc.presence.LeaveRoom(userID)
}

func (uc *ChatUseCase) SetOnline(userID string) {
	uc.presence.SetOnline(userID)
}

func (uc *ChatUseCase) SetOffline(userID string) {
	uc.presence.SetOffline(userID)
}

// ListRooms returns the user's chat rooms, most recently active first.
func (uc *ChatUseCase) ListRooms(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	rooms, total, err := uc.roomRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		logger.Error("ListRooms Error: failed to list rooms for user %s: %v", userID, err)
		return nil, 0, err
	}
	return rooms, total, nil
}

// ListMessages returns messages for a room the user participates in.
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, roomID string, limit, offset int) ([]*entity.ChatMessage, int64, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, 0, errors.RoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return nil, 0, errors.AccessDenied("user is not a participant in this chat room")
	}
	return uc.messageRepo.ListByRoom(ctx, roomID, limit, offset)
}

// GetRoom returns one room the user participates in.
func (uc *ChatUseCase) GetRoom(ctx context.Context, userID, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, errors.RoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return nil, errors.AccessDenied("user is not a participant in this chat room")
	}
	return room, nil
}
