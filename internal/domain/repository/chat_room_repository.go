package repository

import (
	"context"
	"time"

	"rentline/internal/domain/entity"
)

// ChatRoomRepository is the metadata store for general chat rooms
// (the room directory).
type ChatRoomRepository interface {
	Create(ctx context.Context, room *entity.ChatRoom) error
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	FindByParticipantsAndHome(ctx context.Context, ownerID, buyerID, homeID string) (*entity.ChatRoom, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error)
	UpdateLastMessage(ctx context.Context, roomID, preview string, at time.Time) error
	UpdateUnreadCount(ctx context.Context, roomID, userID string, count int) error
}
