package handler

import (
	"github.com/labstack/echo/v4"

	"rentline/internal/usecase"
	"rentline/pkg/response"
	"rentline/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createRoomRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	HomeID  string `json:"home_id" validate:"required"`
}

type sendMessageRequest struct {
	Type    string `json:"type" validate:"required,oneof=text file"`
	Content string `json:"content" validate:"max=4000"`
	FileURL string `json:"file_url,omitempty" validate:"omitempty,url"`
}

// CreateRoom opens (or returns) the chat room between the caller and the
// owner of a home listing. The caller is always the buyer side.
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buyerID := c.Get("uid").(string)

	room, err := h.chatUseCase.CreateRoom(c.Request().Context(), req.OwnerID, buyerID, req.HomeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

// ListRooms returns the caller's chat rooms, most recently active first.
func (h *ChatHandler) ListRooms(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetListParams(c)

	rooms, total, err := h.chatUseCase.ListRooms(c.Request().Context(), userID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, rooms, total, params.Limit, params.Offset)
}

// GetRoom returns one chat room the caller participates in.
func (h *ChatHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	room, err := h.chatUseCase.GetRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

// SendMessage sends one message into a chat room over the REST surface.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ChatRoomID: c.Param("id"),
		Type:       req.Type,
		Content:    req.Content,
		FileURL:    req.FileURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// ListMessages returns messages for a room, newest first.
func (h *ChatHandler) ListMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")
	params := utils.GetListParams(c)

	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, roomID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, params.Limit, params.Offset)
}

// MarkRead clears the caller's unread backlog in a room.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	if err := h.chatUseCase.MarkRoomRead(c.Request().Context(), roomID, userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}
