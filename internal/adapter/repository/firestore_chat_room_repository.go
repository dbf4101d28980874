package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentline/internal/domain/entity"
	"rentline/internal/domain/repository"
	"rentline/pkg/errors"
	"rentline/pkg/logger"
)

const chatRoomCollection = "chatRooms"

type firestoreChatRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRoomRepository(client *firestore.Client) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{
		client: client,
	}
}

func (r *firestoreChatRoomRepository) Create(ctx context.Context, room *entity.ChatRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.client.Collection(chatRoomCollection).Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create chat room", err)
	}

	return nil
}

func (r *firestoreChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection(chatRoomCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", nil)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRoomRepository) FindByParticipantsAndHome(ctx context.Context, ownerID, buyerID, homeID string) (*entity.ChatRoom, error) {
	query := r.client.Collection(chatRoomCollection).
		Where("ownerId", "==", ownerID).
		Where("buyerId", "==", buyerID).
		Where("homeId", "==", homeID).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Chat room", nil)
		}
		return nil, errors.Internal("Failed to query chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRoomRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	// A user can be either side of a room; Firestore has no OR query here,
	// so run both sides and merge.
	var rooms []*entity.ChatRoom
	for _, field := range []string{"ownerId", "buyerId"} {
		docs, err := r.client.Collection(chatRoomCollection).Where(field, "==", userID).Documents(ctx).GetAll()
		if err != nil {
			logger.Error("Firestore error while fetching chat rooms for user %s: %v", userID, err)
			return nil, 0, errors.Internal("Failed to fetch chat rooms", err)
		}
		for _, doc := range docs {
			var room entity.ChatRoom
			if err := doc.DataTo(&room); err != nil {
				logger.Warn("Skipping malformed chat room document %s: %v", doc.Ref.ID, err)
				continue
			}
			rooms = append(rooms, &room)
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt)
	})

	total := int64(len(rooms))

	start := offset
	if start > len(rooms) {
		start = len(rooms)
	}
	end := len(rooms)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return rooms[start:end], total, nil
}

func (r *firestoreChatRoomRepository) UpdateLastMessage(ctx context.Context, roomID, preview string, at time.Time) error {
	_, err := r.client.Collection(chatRoomCollection).Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: preview},
		{Path: "lastMessageAt", Value: at},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update chat room metadata", err)
	}
	return nil
}

func (r *firestoreChatRoomRepository) UpdateUnreadCount(ctx context.Context, roomID, userID string, count int) error {
	_, err := r.client.Collection(chatRoomCollection).Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "unreadCount." + userID, Value: count},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update unread count", err)
	}
	return nil
}
