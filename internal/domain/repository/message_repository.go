package repository

import (
	"context"

	"rentline/internal/domain/entity"
)

// MessageRepository is the append-only, queryable-by-time message store.
// It holds two collections: general chat messages and negotiation messages.
type MessageRepository interface {
	CreateChatMessage(ctx context.Context, message *entity.ChatMessage) error
	ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.ChatMessage, int64, error)
	// CountUnread counts messages addressed to userID that are still unread.
	// The count must observe any message persisted before the call.
	CountUnread(ctx context.Context, roomID, userID string) (int, error)
	// MarkRead flips every unread message addressed to userID in the room.
	MarkRead(ctx context.Context, roomID, userID string) error

	CreateNegotiationMessage(ctx context.Context, message *entity.NegotiationMessage) error
	ListNegotiationByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.NegotiationMessage, int64, error)
	// ListNegotiationByTimeRange returns messages with from <= sendTime <= to
	// in ascending send-time order.
	ListNegotiationByTimeRange(ctx context.Context, roomID, from, to string) ([]*entity.NegotiationMessage, error)
}
