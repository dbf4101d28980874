package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"rentline/internal/domain/entity"
	"rentline/internal/domain/repository"
	"rentline/internal/infrastructure/presence"
	"rentline/internal/infrastructure/ratelimit"
	ws "rentline/internal/infrastructure/websocket"
	"rentline/pkg/errors"
	"rentline/pkg/logger"
)

// Synthetic control notices appended to the negotiation stream by the
// end-request protocol. The exporter excludes messages whose content
// exactly matches either string, so these must never change without a
// matching client update.
const (
	NoticeEndRequested = "The owner has requested to finalize the special terms."
	NoticeEndRejected  = "The finalize request was declined."
)

// Transcript roles, resolved by comparing a message's sender against the
// room's owner and buyer.
const (
	roleOwner = "owner"
	roleBuyer = "buyer"
)

// NegotiationUseCase runs the contract special-terms protocol: presence-gated
// messaging, the start/end negotiation state machine, and the windowed
// transcript export. The ledger guards the single pending end request per
// room across processes.
type NegotiationUseCase struct {
	roomRepo    repository.NegotiationRoomRepository
	messageRepo repository.MessageRepository
	ledger      repository.NegotiationLedger
	presence    *presence.NegotiationRegistry
	broadcaster Broadcaster
	rateLimiter *ratelimit.RateLimiter
}

func NewNegotiationUseCase(
	roomRepo repository.NegotiationRoomRepository,
	messageRepo repository.MessageRepository,
	ledger repository.NegotiationLedger,
	registry *presence.NegotiationRegistry,
	broadcaster Broadcaster,
) *NegotiationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &NegotiationUseCase{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		ledger:      ledger,
		presence:    registry,
		broadcaster: broadcaster,
		rateLimiter: rateLimiter,
	}
}

type negotiationMessageEvent struct {
	Type    string                     `json:"type"`
	Message *entity.NegotiationMessage `json:"message"`
}

type negotiationErrorEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Error  string `json:"error"`
}

type negotiationPresenceEvent struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id"`
	UserID  string `json:"user_id"`
	Present bool   `json:"present"`
}

// CreateRoom opens the negotiation room for an (owner, buyer, home) triple,
// reusing the existing one if present.
func (uc *NegotiationUseCase) CreateRoom(ctx context.Context, ownerID, buyerID, homeID string) (*entity.NegotiationRoom, error) {
	if ownerID == buyerID {
		return nil, errors.SelfChatNotAllowed()
	}

	existing, err := uc.roomRepo.FindByParticipantsAndHome(ctx, ownerID, buyerID, homeID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		logger.Error("Negotiation CreateRoom Error: lookup failed: %v", err)
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	room := &entity.NegotiationRoom{
		OwnerID: ownerID,
		BuyerID: buyerID,
		HomeID:  homeID,
	}
	if err := uc.roomRepo.Create(ctx, room); err != nil {
		logger.Error("Negotiation CreateRoom Error: create failed: %v", err)
		return nil, err
	}
	return room, nil
}

// CanSend reports whether both participants are currently present in the
// negotiation room. It is a check, not a wait.
func (uc *NegotiationUseCase) CanSend(ctx context.Context, roomID string) (bool, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return false, errors.NegotiationRoomNotFound(roomID)
	}
	return uc.presence.BothPresent(room.ID, room.OwnerID, room.BuyerID), nil
}

// SendMessage persists and broadcasts one negotiation message. Unlike
// general chat, the send is refused outright when either party is absent;
// the sender is notified on their direct error channel.
func (uc *NegotiationUseCase) SendMessage(ctx context.Context, senderID, roomID, content string) (*entity.NegotiationMessage, error) {
	allowed, _ := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendNegotiation)
	if !allowed {
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		logger.Error("Negotiation SendMessage Error: room %s not found: %v", roomID, err)
		return nil, errors.NegotiationRoomNotFound(roomID)
	}
	if !room.IsParticipant(senderID) {
		return nil, errors.AccessDenied("user is not a participant in this negotiation room")
	}

	if !uc.presence.BothPresent(room.ID, room.OwnerID, room.BuyerID) {
		uc.publishError(senderID, room.ID, "both participants must be present to send")
		return nil, errors.AccessDenied("both participants must be present to send")
	}

	message, err := uc.appendAndBroadcast(ctx, room, senderID, content)
	if err != nil {
		return nil, err
	}
	return message, nil
}

// Enter marks the user present in the negotiation room and tells the
// counterpart.
func (uc *NegotiationUseCase) Enter(ctx context.Context, userID, roomID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return errors.NegotiationRoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return errors.AccessDenied("user is not a participant in this negotiation room")
	}

	uc.presence.Enter(room.ID, userID)
	uc.publishPresence(room.Counterpart(userID), room.ID, userID, true)
	return nil
}

// Leave removes the user from the negotiation room and tells the
// counterpart.
func (uc *NegotiationUseCase) Leave(ctx context.Context, userID, roomID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return errors.NegotiationRoomNotFound(roomID)
	}

	uc.presence.Leave(room.ID, userID)
	uc.publishPresence(room.Counterpart(userID), room.ID, userID, false)
	return nil
}

// SetOffline removes the user from whichever negotiation room they were in.
func (uc *NegotiationUseCase) SetOffline(userID string) {
	uc.presence.SetOffline(userID)
}

// SetStartPoint arms the export window. Always allowed for a participant;
// a repeat call overwrites the prior start point.
func (uc *NegotiationUseCase) SetStartPoint(ctx context.Context, roomID, userID string) (string, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return "", errors.NegotiationRoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return "", errors.AccessDenied("user is not a participant in this negotiation room")
	}

	at := time.Now().UTC().Format(time.RFC3339Nano)
	if err := uc.roomRepo.SetStartPoint(ctx, room.ID, at); err != nil {
		logger.Error("SetStartPoint Error: room %s: %v", room.ID, err)
		return "", err
	}
	return at, nil
}

// RequestEndPointExport records the owner's pending end request. The ledger
// conditional-set is the duplicate-request guard: a second request while
// one is pending fails with DUPLICATE_END_REQUEST.
func (uc *NegotiationUseCase) RequestEndPointExport(ctx context.Context, roomID, callerID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return errors.NegotiationRoomNotFound(roomID)
	}
	if callerID != room.OwnerID {
		return errors.AccessDenied("only the owner may request the export")
	}

	acquired, err := uc.ledger.TryAcquire(ctx, room.ID, room.OwnerID)
	if err != nil {
		logger.Error("RequestEndPointExport Error: ledger acquire for room %s: %v", room.ID, err)
		return err
	}
	if !acquired {
		return errors.DuplicateEndRequest(room.ID)
	}

	if _, err := uc.appendAndBroadcast(ctx, room, room.OwnerID, NoticeEndRequested); err != nil {
		return err
	}
	return nil
}

// RejectEndPointExport clears the pending request. Only the buyer may
// reject; the ledger entry is deleted unconditionally, so a stale entry is
// also cleared by this path.
func (uc *NegotiationUseCase) RejectEndPointExport(ctx context.Context, roomID, callerID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return errors.NegotiationRoomNotFound(roomID)
	}
	if callerID != room.BuyerID {
		return errors.AccessDenied("only the buyer may reject the export")
	}

	if err := uc.ledger.Release(ctx, room.ID); err != nil {
		logger.Error("RejectEndPointExport Error: ledger release for room %s: %v", room.ID, err)
		return err
	}

	if _, err := uc.appendAndBroadcast(ctx, room, room.BuyerID, NoticeEndRejected); err != nil {
		return err
	}
	return nil
}

// SetEndPointAndExport accepts the pending end request, closes the window
// at now, and returns the formatted special-terms transcript. On success
// the room returns to its rest state: both points cleared, ledger entry
// gone. Every precondition is checked before any mutation.
func (uc *NegotiationUseCase) SetEndPointAndExport(ctx context.Context, roomID, callerID string) (string, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return "", errors.NegotiationRoomNotFound(roomID)
	}
	if callerID != room.BuyerID {
		return "", errors.AccessDenied("only the buyer may accept the export")
	}

	requester, pending, err := uc.ledger.Get(ctx, room.ID)
	if err != nil {
		logger.Error("SetEndPointAndExport Error: ledger read for room %s: %v", room.ID, err)
		return "", err
	}
	if !pending {
		return "", errors.EndRequestNotFound(room.ID)
	}
	if requester != room.OwnerID {
		// Stale or cross-room ledger hit; refuse rather than export a
		// window someone else requested.
		return "", errors.EndRequestInvalid(room.ID)
	}
	if room.StartPoint == "" {
		return "", errors.StartPointNotSet(room.ID)
	}

	endPoint := time.Now().UTC().Format(time.RFC3339Nano)
	if err := uc.roomRepo.SetEndPoint(ctx, room.ID, endPoint); err != nil {
		logger.Error("SetEndPointAndExport Error: set end point for room %s: %v", room.ID, err)
		return "", err
	}

	messages, err := uc.messageRepo.ListNegotiationByTimeRange(ctx, room.ID, room.StartPoint, endPoint)
	if err != nil {
		logger.Error("SetEndPointAndExport Error: window query for room %s: %v", room.ID, err)
		return "", err
	}
	transcript := uc.formatTranscript(room, messages)

	// Ledger cleanup and the return to rest state are part of this
	// operation, not a separate compensating step. A crash between the
	// export mutation and Release leaves an orphaned entry that the next
	// duplicate-request check treats as stale data.
	if err := uc.ledger.Release(ctx, room.ID); err != nil {
		logger.Error("SetEndPointAndExport Error: ledger release for room %s: %v", room.ID, err)
		return "", err
	}
	if err := uc.roomRepo.ClearPoints(ctx, room.ID); err != nil {
		logger.Error("SetEndPointAndExport Error: clear points for room %s: %v", room.ID, err)
		return "", err
	}

	return transcript, nil
}

// formatTranscript renders the window as "<role>: <content>" lines in
// ascending send-time order, dropping the two synthetic control notices.
func (uc *NegotiationUseCase) formatTranscript(room *entity.NegotiationRoom, messages []*entity.NegotiationMessage) string {
	var lines []string
	for _, msg := range messages {
		if msg.Content == NoticeEndRequested || msg.Content == NoticeEndRejected {
			continue
		}
		role := roleBuyer
		if msg.SenderID == room.OwnerID {
			role = roleOwner
		}
		lines = append(lines, role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// appendAndBroadcast persists one negotiation message, refreshes the room
// preview, and broadcasts it to the room topic.
func (uc *NegotiationUseCase) appendAndBroadcast(ctx context.Context, room *entity.NegotiationRoom, senderID, content string) (*entity.NegotiationMessage, error) {
	message := &entity.NegotiationMessage{
		RoomID:     room.ID,
		SenderID:   senderID,
		ReceiverID: room.Counterpart(senderID),
		Content:    content,
		SendTime:   time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := uc.messageRepo.CreateNegotiationMessage(ctx, message); err != nil {
		logger.Error("Negotiation append Error: persist for room %s: %v", room.ID, err)
		return nil, err
	}
	if err := uc.roomRepo.UpdateLastMessage(ctx, room.ID, content); err != nil {
		logger.Error("Negotiation append Error: preview update for room %s: %v", room.ID, err)
		return nil, errors.DeliveryFailed("message stored but room preview update failed", err)
	}

	payload, err := json.Marshal(negotiationMessageEvent{Type: "negotiation_message", Message: message})
	if err != nil {
		return nil, errors.Internal("Failed to encode negotiation event", err)
	}
	if err := uc.broadcaster.Publish(ws.NegotiationRoomTopic(room.ID), payload); err != nil {
		logger.Error("Negotiation append Error: broadcast for room %s: %v", room.ID, err)
		return nil, errors.DeliveryFailed("message stored but broadcast failed", err)
	}
	return message, nil
}

func (uc *NegotiationUseCase) publishError(userID, roomID, message string) {
	payload, err := json.Marshal(negotiationErrorEvent{Type: "negotiation_error", RoomID: roomID, Error: message})
	if err != nil {
		return
	}
	if err := uc.broadcaster.Publish(ws.NegotiationErrorTopic(userID), payload); err != nil {
		logger.Warn("Negotiation error event for user %s not delivered: %v", userID, err)
	}
}

func (uc *NegotiationUseCase) publishPresence(toUserID, roomID, userID string, present bool) {
	payload, err := json.Marshal(negotiationPresenceEvent{
		Type:    "negotiation_presence",
		RoomID:  roomID,
		UserID:  userID,
		Present: present,
	})
	if err != nil {
		return
	}
	if err := uc.broadcaster.Publish(ws.NegotiationPresenceTopic(toUserID), payload); err != nil {
		logger.Warn("Negotiation presence event for user %s not delivered: %v", toUserID, err)
	}
}

// ListMessages returns negotiation messages for a room the user
// participates in.
func (uc *NegotiationUseCase) ListMessages(ctx context.Context, userID, roomID string, limit, offset int) ([]*entity.NegotiationMessage, int64, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, 0, errors.NegotiationRoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return nil, 0, errors.AccessDenied("user is not a participant in this negotiation room")
	}
	return uc.messageRepo.ListNegotiationByRoom(ctx, roomID, limit, offset)
}

// GetRoom returns one negotiation room the user participates in.
func (uc *NegotiationUseCase) GetRoom(ctx context.Context, userID, roomID string) (*entity.NegotiationRoom, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, errors.NegotiationRoomNotFound(roomID)
	}
	if !room.IsParticipant(userID) {
		return nil, errors.AccessDenied("user is not a participant in this negotiation room")
	}
	return room, nil
}
