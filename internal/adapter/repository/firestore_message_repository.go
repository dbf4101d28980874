package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"rentline/internal/domain/entity"
	"rentline/internal/domain/repository"
	"rentline/pkg/errors"
	"rentline/pkg/logger"
)

const (
	chatMessageCollection        = "chatMessages"
	negotiationMessageCollection = "negotiationMessages"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) CreateChatMessage(ctx context.Context, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	_, err := r.client.Collection(chatMessageCollection).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create chat message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.ChatMessage, int64, error) {
	query := r.client.Collection(chatMessageCollection).
		Where("chatRoomId", "==", roomID).
		OrderBy("sendTime", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while counting messages for room %s: %v", roomID, err)
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.ChatMessage

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for room %s: %v", roomID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, roomID, userID string) (int, error) {
	docs, err := r.client.Collection(chatMessageCollection).
		Where("chatRoomId", "==", roomID).
		Where("receiverId", "==", userID).
		Where("read", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return len(docs), nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, roomID, userID string) error {
	docs, err := r.client.Collection(chatMessageCollection).
		Where("chatRoomId", "==", roomID).
		Where("receiverId", "==", userID).
		Where("read", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to query unread messages", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return errors.Internal("Failed to mark message read", err)
		}
	}
	return nil
}

func (r *firestoreMessageRepository) CreateNegotiationMessage(ctx context.Context, message *entity.NegotiationMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	_, err := r.client.Collection(negotiationMessageCollection).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create negotiation message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListNegotiationByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.NegotiationMessage, int64, error) {
	query := r.client.Collection(negotiationMessageCollection).
		Where("roomId", "==", roomID).
		OrderBy("sendTime", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count negotiation messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.NegotiationMessage

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate negotiation messages", err)
		}

		var message entity.NegotiationMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse negotiation message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreMessageRepository) ListNegotiationByTimeRange(ctx context.Context, roomID, from, to string) ([]*entity.NegotiationMessage, error) {
	// SendTime is RFC3339Nano, so lexicographic order is time order and the
	// range filter works on the string field directly.
	iter := r.client.Collection(negotiationMessageCollection).
		Where("roomId", "==", roomID).
		Where("sendTime", ">=", from).
		Where("sendTime", "<=", to).
		OrderBy("sendTime", firestore.Asc).
		Documents(ctx)

	var messages []*entity.NegotiationMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query negotiation window", err)
		}

		var message entity.NegotiationMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse negotiation message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, nil
}
