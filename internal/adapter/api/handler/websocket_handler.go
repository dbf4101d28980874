package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "rentline/internal/infrastructure/websocket"
	"rentline/internal/usecase"
	"rentline/pkg/errors"
	"rentline/pkg/logger"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	sendBufferSize int
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, sendBufferSize int) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		sendBufferSize: sendBufferSize,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, h.sendBufferSize),
	}

	h.wsManager.RegisterClient(client)

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}

// PresenceEvents bridges connection lifecycle and room transitions from the
// websocket manager into the coordinators. Frame handling runs on the
// connection's read goroutine, so calls here must not block on the client.
type PresenceEvents struct {
	chatUseCase        *usecase.ChatUseCase
	negotiationUseCase *usecase.NegotiationUseCase
}

func NewPresenceEvents(chatUseCase *usecase.ChatUseCase, negotiationUseCase *usecase.NegotiationUseCase) *PresenceEvents {
	return &PresenceEvents{
		chatUseCase:        chatUseCase,
		negotiationUseCase: negotiationUseCase,
	}
}

func (p *PresenceEvents) OnConnect(userID string) {
	p.chatUseCase.SetOnline(userID)
}

func (p *PresenceEvents) OnDisconnect(userID string) {
	p.chatUseCase.SetOffline(userID)
	p.negotiationUseCase.SetOffline(userID)
}

// OnEnterRoom gates the join: a denial here keeps the manager from
// subscribing the client to the room topic.
func (p *PresenceEvents) OnEnterRoom(userID, chatRoomID string) error {
	return p.chatUseCase.EnterRoom(context.Background(), userID, chatRoomID)
}

func (p *PresenceEvents) OnLeaveRoom(userID string) {
	p.chatUseCase.LeaveRoom(userID)
}

func (p *PresenceEvents) OnEnterNegotiation(userID, negotiationRoomID string) error {
	return p.negotiationUseCase.Enter(context.Background(), userID, negotiationRoomID)
}

func (p *PresenceEvents) OnLeaveNegotiation(userID, negotiationRoomID string) {
	if err := p.negotiationUseCase.Leave(context.Background(), userID, negotiationRoomID); err != nil {
		logger.Warn("presence: leave negotiation %s for %s: %v", negotiationRoomID, userID, err)
	}
}
