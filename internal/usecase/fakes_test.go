package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"rentline/internal/domain/entity"
	"rentline/pkg/errors"
)

// In-memory stand-ins for the Firestore repositories and the websocket
// manager, with the same observable semantics the coordinators rely on.

type fakeChatRoomRepo struct {
	mu             sync.Mutex
	rooms          map[string]*entity.ChatRoom
	seq            int
	failPreviewUpd bool
}

func newFakeChatRoomRepo() *fakeChatRoomRepo {
	return &fakeChatRoomRepo{rooms: make(map[string]*entity.ChatRoom)}
}

func (r *fakeChatRoomRepo) Create(ctx context.Context, room *entity.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID == "" {
		r.seq++
		room.ID = fmt.Sprintf("room-%d", r.seq)
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeChatRoomRepo) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	return room, nil
}

func (r *fakeChatRoomRepo) FindByParticipantsAndHome(ctx context.Context, ownerID, buyerID, homeID string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.OwnerID == ownerID && room.BuyerID == buyerID && room.HomeID == homeID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *fakeChatRoomRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rooms []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.IsParticipant(userID) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt)
	})
	return rooms, int64(len(rooms)), nil
}

func (r *fakeChatRoomRepo) UpdateLastMessage(ctx context.Context, roomID, preview string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPreviewUpd {
		return errors.Internal("firestore unavailable", nil)
	}
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}
	room.LastMessage = preview
	room.LastMessageAt = at
	return nil
}

func (r *fakeChatRoomRepo) UpdateUnreadCount(ctx context.Context, roomID, userID string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}
	if room.UnreadCount == nil {
		room.UnreadCount = make(map[string]int)
	}
	room.UnreadCount[userID] = count
	return nil
}

type fakeNegotiationRepo struct {
	mu             sync.Mutex
	rooms          map[string]*entity.NegotiationRoom
	seq            int
	failPreviewUpd bool
}

func newFakeNegotiationRepo() *fakeNegotiationRepo {
	return &fakeNegotiationRepo{rooms: make(map[string]*entity.NegotiationRoom)}
}

func (r *fakeNegotiationRepo) Create(ctx context.Context, room *entity.NegotiationRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID == "" {
		r.seq++
		room.ID = fmt.Sprintf("neg-%d", r.seq)
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeNegotiationRepo) GetByID(ctx context.Context, id string) (*entity.NegotiationRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Negotiation room", nil)
	}
	return room, nil
}

func (r *fakeNegotiationRepo) FindByParticipantsAndHome(ctx context.Context, ownerID, buyerID, homeID string) (*entity.NegotiationRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.OwnerID == ownerID && room.BuyerID == buyerID && room.HomeID == homeID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Negotiation room", nil)
}

func (r *fakeNegotiationRepo) SetStartPoint(ctx context.Context, roomID, at string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Negotiation room", nil)
	}
	room.StartPoint = at
	return nil
}

func (r *fakeNegotiationRepo) SetEndPoint(ctx context.Context, roomID, at string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Negotiation room", nil)
	}
	room.EndPoint = at
	return nil
}

func (r *fakeNegotiationRepo) ClearPoints(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Negotiation room", nil)
	}
	room.StartPoint = ""
	room.EndPoint = ""
	return nil
}

func (r *fakeNegotiationRepo) UpdateLastMessage(ctx context.Context, roomID, preview string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPreviewUpd {
		return errors.Internal("firestore unavailable", nil)
	}
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Negotiation room", nil)
	}
	room.LastMessage = preview
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	chatMsgs []*entity.ChatMessage
	negMsgs  []*entity.NegotiationMessage
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) CreateChatMessage(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	stored := *message
	r.chatMsgs = append(r.chatMsgs, &stored)
	return nil
}

func (r *fakeMessageRepo) ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.ChatMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.chatMsgs {
		if m.ChatRoomID == roomID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SendTime > out[j].SendTime })
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, roomID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.chatMsgs {
		if m.ChatRoomID == roomID && m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, roomID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.chatMsgs {
		if m.ChatRoomID == roomID && m.ReceiverID == userID {
			m.Read = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) CreateNegotiationMessage(ctx context.Context, message *entity.NegotiationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("nmsg-%d", r.seq)
	}
	stored := *message
	r.negMsgs = append(r.negMsgs, &stored)
	return nil
}

func (r *fakeMessageRepo) ListNegotiationByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.NegotiationMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.NegotiationMessage
	for _, m := range r.negMsgs {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SendTime > out[j].SendTime })
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) ListNegotiationByTimeRange(ctx context.Context, roomID, from, to string) ([]*entity.NegotiationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.NegotiationMessage
	for _, m := range r.negMsgs {
		if m.RoomID == roomID && m.SendTime >= from && m.SendTime <= to {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SendTime < out[j].SendTime })
	return out, nil
}

// fakeBroadcaster records every publish and can be told to fail a topic.
type fakeBroadcaster struct {
	mu         sync.Mutex
	published  map[string][][]byte
	failTopics map[string]bool
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{
		published:  make(map[string][][]byte),
		failTopics: make(map[string]bool),
	}
}

func (b *fakeBroadcaster) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failTopics[topic] {
		return errors.Internal("subscriber buffer full", nil)
	}
	b.published[topic] = append(b.published[topic], payload)
	return nil
}

func (b *fakeBroadcaster) failTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failTopics[topic] = true
}

func (b *fakeBroadcaster) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[topic])
}

func (b *fakeBroadcaster) last(topic string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.published[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// stubFilter blocks messages containing any configured fragment.
type stubFilter struct {
	blocked []string
}

func (f *stubFilter) ContainsBadWord(text string) bool {
	for _, b := range f.blocked {
		if b != "" && strings.Contains(strings.ToLower(text), b) {
			return true
		}
	}
	return false
}
