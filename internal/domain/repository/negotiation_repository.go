package repository

import (
	"context"

	"rentline/internal/domain/entity"
)

// NegotiationRoomRepository stores negotiation room metadata, including the
// start/end points bounding the exportable message window.
type NegotiationRoomRepository interface {
	Create(ctx context.Context, room *entity.NegotiationRoom) error
	GetByID(ctx context.Context, id string) (*entity.NegotiationRoom, error)
	FindByParticipantsAndHome(ctx context.Context, ownerID, buyerID, homeID string) (*entity.NegotiationRoom, error)
	SetStartPoint(ctx context.Context, roomID, at string) error
	SetEndPoint(ctx context.Context, roomID, at string) error
	// ClearPoints resets both points to the rest state after an export.
	ClearPoints(ctx context.Context, roomID string) error
	UpdateLastMessage(ctx context.Context, roomID, preview string) error
}
