package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rentline/pkg/logger"
)

// Manager owns all live connections and the topic subscription table. It is
// the publish/subscribe primitive the coordinators fan out through: one
// Publish call delivers a payload to every connection subscribed to the
// topic. A connection whose send buffer is full is dropped, and the failure
// is returned synchronously to the publisher.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client             // userID -> connection
	topics  map[string]map[string]struct{} // topic -> set of userID
	handler EventHandler
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		topics:  make(map[string]map[string]struct{}),
	}
}

// SetEventHandler wires the API-layer handler for client transitions. Must
// be called before any client connects.
func (m *Manager) SetEventHandler(h EventHandler) {
	m.handler = h
}

// RegisterClient adds a connection and subscribes it to the user-scoped
// topics. A second connection for the same user replaces the first.
func (m *Manager) RegisterClient(client *Client) {
	m.mu.Lock()
	if old, ok := m.clients[client.UserID]; ok {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	m.subscribeLocked(ChatListTopic(client.UserID), client.UserID)
	m.subscribeLocked(NegotiationErrorTopic(client.UserID), client.UserID)
	m.subscribeLocked(NegotiationPresenceTopic(client.UserID), client.UserID)
	m.mu.Unlock()

	logger.Info("websocket: client registered: %s", client.UserID)
	if m.handler != nil {
		m.handler.OnConnect(client.UserID)
	}
}

// UnregisterClient removes the connection and all its subscriptions.
func (m *Manager) UnregisterClient(client *Client) {
	m.mu.Lock()
	current, ok := m.clients[client.UserID]
	if ok && current == client {
		delete(m.clients, client.UserID)
		m.dropSubscriptionsLocked(client.UserID)
		close(client.Send)
	}
	m.mu.Unlock()

	if ok && current == client {
		logger.Info("websocket: client unregistered: %s", client.UserID)
		if m.handler != nil {
			m.handler.OnDisconnect(client.UserID)
		}
	}
}

// Subscribe adds the user to a topic. No-op if the user has no connection.
func (m *Manager) Subscribe(topic, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[userID]; !ok {
		return
	}
	m.subscribeLocked(topic, userID)
}

// Unsubscribe removes the user from a topic, pruning the topic when empty.
func (m *Manager) Unsubscribe(topic, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.topics[topic]
	if !ok {
		return
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(m.topics, topic)
	}
}

// Publish delivers payload to every connection subscribed to topic. A topic
// with no subscribers is not an error. A subscriber whose send buffer is
// full is dropped and reported in the returned error.
//
// Channel sends happen under the read lock. Send is only ever closed under
// the write lock (register replacing a stale connection, or unregister), so
// a concurrent close cannot race a send here.
func (m *Manager) Publish(topic string, payload []byte) error {
	m.mu.RLock()
	var dropped []*Client
	for userID := range m.topics[topic] {
		client, ok := m.clients[userID]
		if !ok {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			dropped = append(dropped, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range dropped {
		logger.Warn("websocket: send buffer full, dropping client %s", client.UserID)
		m.UnregisterClient(client)
	}

	if len(dropped) > 0 {
		return fmt.Errorf("websocket: publish to %s failed for %d subscriber(s)", topic, len(dropped))
	}
	return nil
}

// PublishJSON marshals v and publishes it to topic.
func (m *Manager) PublishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("websocket: marshal payload for %s: %w", topic, err)
	}
	return m.Publish(topic, payload)
}

// HandleClientFrame processes one inbound control frame from a client.
func (m *Manager) HandleClientFrame(client *Client, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Warn("websocket: invalid frame from %s: %v", client.UserID, err)
		m.sendError(client, "invalid frame format")
		return
	}

	switch frame.Type {
	case FrameTypePing:
		m.sendToClient(client, map[string]string{
			"type":      FrameTypePong,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})

	case FrameTypeJoinRoom:
		if frame.RoomID == "" {
			m.sendError(client, "missing room_id")
			return
		}
		// Membership is checked before the subscription exists; a refused
		// join must not leave a live subscription behind.
		if m.handler != nil {
			if err := m.handler.OnEnterRoom(client.UserID, frame.RoomID); err != nil {
				logger.Warn("websocket: join room %s refused for %s: %v", frame.RoomID, client.UserID, err)
				m.sendError(client, "cannot join this room")
				return
			}
		}
		m.Subscribe(ChatRoomTopic(frame.RoomID), client.UserID)

	case FrameTypeLeaveRoom:
		if frame.RoomID != "" {
			m.Unsubscribe(ChatRoomTopic(frame.RoomID), client.UserID)
		}
		if m.handler != nil {
			m.handler.OnLeaveRoom(client.UserID)
		}

	case FrameTypeJoinNegotiation:
		if frame.RoomID == "" {
			m.sendError(client, "missing room_id")
			return
		}
		if m.handler != nil {
			if err := m.handler.OnEnterNegotiation(client.UserID, frame.RoomID); err != nil {
				logger.Warn("websocket: join negotiation %s refused for %s: %v", frame.RoomID, client.UserID, err)
				m.sendError(client, "cannot join this negotiation")
				return
			}
		}
		m.Subscribe(NegotiationRoomTopic(frame.RoomID), client.UserID)

	case FrameTypeLeaveNegotiation:
		if frame.RoomID == "" {
			m.sendError(client, "missing room_id")
			return
		}
		m.Unsubscribe(NegotiationRoomTopic(frame.RoomID), client.UserID)
		if m.handler != nil {
			m.handler.OnLeaveNegotiation(client.UserID, frame.RoomID)
		}

	default:
		logger.Warn("websocket: unknown frame type %q from %s", frame.Type, client.UserID)
		m.sendError(client, "unknown frame type")
	}
}

func (m *Manager) sendToClient(client *Client, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Error("websocket: marshal for client %s: %v", client.UserID, err)
		return
	}

	// Same locking discipline as Publish: send under the read lock, and
	// only to a client that is still the registered connection.
	delivered := true
	m.mu.RLock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		select {
		case client.Send <- payload:
		default:
			delivered = false
		}
	}
	m.mu.RUnlock()

	if !delivered {
		m.UnregisterClient(client)
	}
}

func (m *Manager) sendError(client *Client, message string) {
	m.sendToClient(client, map[string]string{
		"type":  "error",
		"error": message,
	})
}

func (m *Manager) subscribeLocked(topic, userID string) {
	set, ok := m.topics[topic]
	if !ok {
		set = make(map[string]struct{})
		m.topics[topic] = set
	}
	set[userID] = struct{}{}
}

func (m *Manager) dropSubscriptionsLocked(userID string) {
	for topic, set := range m.topics {
		delete(set, userID)
		if len(set) == 0 {
			delete(m.topics, topic)
		}
	}
}
