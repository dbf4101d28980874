package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentline/internal/domain/entity"
	"rentline/internal/domain/repository"
	"rentline/pkg/errors"
)

const negotiationRoomCollection = "negotiationRooms"

type firestoreNegotiationRepository struct {
	client *firestore.Client
}

func NewFirestoreNegotiationRepository(client *firestore.Client) repository.NegotiationRoomRepository {
	return &firestoreNegotiationRepository{
		client: client,
	}
}

func (r *firestoreNegotiationRepository) Create(ctx context.Context, room *entity.NegotiationRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.client.Collection(negotiationRoomCollection).Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create negotiation room", err)
	}

	return nil
}

func (r *firestoreNegotiationRepository) GetByID(ctx context.Context, id string) (*entity.NegotiationRoom, error) {
	doc, err := r.client.Collection(negotiationRoomCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Negotiation room", nil)
		}
		return nil, errors.Internal("Failed to get negotiation room", err)
	}

	var room entity.NegotiationRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse negotiation room data", err)
	}

	return &room, nil
}

func (r *firestoreNegotiationRepository) FindByParticipantsAndHome(ctx context.Context, ownerID, buyerID, homeID string) (*entity.NegotiationRoom, error) {
	query := r.client.Collection(negotiationRoomCollection).
		Where("ownerId", "==", ownerID).
		Where("buyerId", "==", buyerID).
		Where("homeId", "==", homeID).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Negotiation room", nil)
		}
		return nil, errors.Internal("Failed to query negotiation room", err)
	}

	var room entity.NegotiationRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse negotiation room data", err)
	}

	return &room, nil
}

func (r *firestoreNegotiationRepository) SetStartPoint(ctx context.Context, roomID, at string) error {
	_, err := r.client.Collection(negotiationRoomCollection).Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "startPoint", Value: at},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to set start point", err)
	}
	return nil
}

func (r *firestoreNegotiationRepository) SetEndPoint(ctx context.Context, roomID, at string) error {
	_, err := r.client.Collection(negotiationRoomCollection).Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "endPoint", Value: at},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to set end point", err)
	}
	return nil
}

func (r *firestoreNegotiationRepository) ClearPoints(ctx context.Context, roomID string) error {
	_, err := r.client.Collection(negotiationRoomCollection).Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "startPoint", Value: ""},
		{Path: "endPoint", Value: ""},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to clear negotiation points", err)
	}
	return nil
}

func (r *firestoreNegotiationRepository) UpdateLastMessage(ctx context.Context, roomID, preview string) error {
	_, err := r.client.Collection(negotiationRoomCollection).Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: preview},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update negotiation room preview", err)
	}
	return nil
}
